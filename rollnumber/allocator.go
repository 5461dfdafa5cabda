package rollnumber

import (
	"context"
	"fmt"
)

// Strategy names accepted by the roll_number.strategy setting.
const (
	StrategyScan    = "scan"
	StrategyCounter = "counter"
	StrategyRedis   = "redis"
)

// Finder looks up the highest roll number starting with year, or "" when
// the year has none.
type Finder interface {
	LastRollNumber(ctx context.Context, year string) (string, error)
}

// Counter is an atomic per-key sequence.
type Counter interface {
	// Increment raises the counter for key to at least floor, adds one and
	// returns the new value in a single atomic step.
	Increment(ctx context.Context, key string, floor int) (int, error)
	// Current returns the counter value for key, zero when unset.
	Current(ctx context.Context, key string) (int, error)
}

// Allocator produces roll numbers. Peek never reserves anything; Allocate
// returns the number the next inserted student should carry.
type Allocator interface {
	Peek(ctx context.Context, year string) (string, error)
	Allocate(ctx context.Context, year string) (string, error)
}

// Scan derives the next roll number from the highest one stored. Two
// concurrent Allocate calls for the same year can return the same value.
type Scan struct {
	finder Finder
}

func NewScan(finder Finder) *Scan {
	return &Scan{finder: finder}
}

func (s *Scan) Peek(ctx context.Context, year string) (string, error) {
	last, err := s.finder.LastRollNumber(ctx, year)
	if err != nil {
		return "", err
	}
	return Next(year, last)
}

func (s *Scan) Allocate(ctx context.Context, year string) (string, error) {
	return s.Peek(ctx, year)
}

// Counted hands out numbers from an atomic counter seeded with the highest
// stored roll number, so it continues an existing sequence.
type Counted struct {
	finder  Finder
	counter Counter
}

func NewCounted(finder Finder, counter Counter) *Counted {
	return &Counted{finder: finder, counter: counter}
}

// Key is the counter key for year.
func Key(year string) string {
	return "rollNumber:" + year
}

func (c *Counted) floor(ctx context.Context, year string) (int, error) {
	last, err := c.finder.LastRollNumber(ctx, year)
	if err != nil || last == "" {
		return 0, err
	}
	return Sequence(last)
}

func (c *Counted) Peek(ctx context.Context, year string) (string, error) {
	floor, err := c.floor(ctx, year)
	if err != nil {
		return "", err
	}
	current, err := c.counter.Current(ctx, Key(year))
	if err != nil {
		return "", err
	}
	if current < floor {
		current = floor
	}
	return Format(year, current+1), nil
}

func (c *Counted) Allocate(ctx context.Context, year string) (string, error) {
	floor, err := c.floor(ctx, year)
	if err != nil {
		return "", err
	}
	seq, err := c.counter.Increment(ctx, Key(year), floor)
	if err != nil {
		return "", err
	}
	return Format(year, seq), nil
}

// New picks the allocator for strategy. counter may be nil for StrategyScan.
func New(strategy string, finder Finder, counter Counter) (Allocator, error) {
	switch strategy {
	case "", StrategyScan:
		return NewScan(finder), nil
	case StrategyCounter, StrategyRedis:
		if counter == nil {
			return nil, fmt.Errorf("roll number strategy %q needs a counter", strategy)
		}
		return NewCounted(finder, counter), nil
	default:
		return nil, fmt.Errorf("unknown roll number strategy %q", strategy)
	}
}
