// Package rollnumber computes per-year student roll numbers: a four digit
// year followed by a sequence padded to three digits, e.g. 2024007.
package rollnumber

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const prefixLen = 4

// Year returns the roll number prefix for t.
func Year(t time.Time) string {
	return fmt.Sprintf("%04d", t.Year())
}

// Format joins a year prefix and a sequence number. Sequences above 999 keep
// growing past three digits.
func Format(year string, seq int) string {
	return fmt.Sprintf("%s%03d", year, seq)
}

// Sequence extracts the number following the year prefix of roll.
func Sequence(roll string) (int, error) {
	if len(roll) <= prefixLen {
		return 0, errors.Errorf("roll number %q has no sequence", roll)
	}
	seq, err := strconv.Atoi(roll[prefixLen:])
	if err != nil {
		return 0, errors.Wrapf(err, "roll number %q", roll)
	}
	return seq, nil
}

// Next returns the roll number following last within year. An empty last
// means no student holds a roll number for year yet.
func Next(year, last string) (string, error) {
	if last == "" {
		return Format(year, 1), nil
	}
	seq, err := Sequence(last)
	if err != nil {
		return "", err
	}
	return Format(year, seq+1), nil
}
