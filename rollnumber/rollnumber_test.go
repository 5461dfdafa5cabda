package rollnumber

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		year string
		last string
		want string
	}{
		{"first of year", "2024", "", "2024001"},
		{"single digit", "2024", "2024007", "2024008"},
		{"carry into tens", "2024", "2024009", "2024010"},
		{"two digits", "2025", "2025041", "2025042"},
		{"last padded", "2024", "2024998", "2024999"},
		{"past three digits", "2024", "2024999", "20241000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.year, tt.last)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNextEverySequence(t *testing.T) {
	for n := 1; n < 999; n++ {
		got, err := Next("2030", Format("2030", n))
		require.NoError(t, err)
		require.Equal(t, Format("2030", n+1), got)
		require.Len(t, got, 7)
	}
}

func TestNextMalformed(t *testing.T) {
	_, err := Next("2024", "2024")
	require.Error(t, err)
	_, err = Next("2024", "2024abc")
	require.Error(t, err)
}

func TestYear(t *testing.T) {
	require.Equal(t, "2026", Year(time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)))
}

type fakeFinder struct {
	last string
	err  error
}

func (f *fakeFinder) LastRollNumber(context.Context, string) (string, error) {
	return f.last, f.err
}

type fakeCounter struct {
	mu     sync.Mutex
	values map[string]int
}

func (c *fakeCounter) Increment(_ context.Context, key string, floor int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]int{}
	}
	if c.values[key] < floor {
		c.values[key] = floor
	}
	c.values[key]++
	return c.values[key], nil
}

func (c *fakeCounter) Current(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func TestScanPeekAndAllocateAgree(t *testing.T) {
	scan := NewScan(&fakeFinder{last: "2024012"})
	peek, err := scan.Peek(context.Background(), "2024")
	require.NoError(t, err)
	got, err := scan.Allocate(context.Background(), "2024")
	require.NoError(t, err)
	require.Equal(t, "2024013", peek)
	require.Equal(t, peek, got)
}

func TestScanPropagatesFinderError(t *testing.T) {
	_, err := NewScan(&fakeFinder{err: errors.New("down")}).Allocate(context.Background(), "2024")
	require.EqualError(t, err, "down")
}

func TestCountedContinuesExistingSequence(t *testing.T) {
	finder := &fakeFinder{last: "2024005"}
	counted := NewCounted(finder, &fakeCounter{})

	peek, err := counted.Peek(context.Background(), "2024")
	require.NoError(t, err)
	require.Equal(t, "2024006", peek)

	first, err := counted.Allocate(context.Background(), "2024")
	require.NoError(t, err)
	second, err := counted.Allocate(context.Background(), "2024")
	require.NoError(t, err)
	require.Equal(t, "2024006", first)
	require.Equal(t, "2024007", second)

	peek, err = counted.Peek(context.Background(), "2024")
	require.NoError(t, err)
	require.Equal(t, "2024008", peek)
}

func TestCountedNeverRepeats(t *testing.T) {
	counted := NewCounted(&fakeFinder{}, &fakeCounter{})
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			roll, err := counted.Allocate(context.Background(), "2024")
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[roll], roll)
			seen[roll] = true
		}()
	}
	wg.Wait()
	require.Len(t, seen, 50)
}

func TestNewStrategy(t *testing.T) {
	a, err := New("", &fakeFinder{}, nil)
	require.NoError(t, err)
	require.IsType(t, &Scan{}, a)

	a, err = New(StrategyRedis, &fakeFinder{}, &fakeCounter{})
	require.NoError(t, err)
	require.IsType(t, &Counted{}, a)

	_, err = New(StrategyCounter, &fakeFinder{}, nil)
	require.Error(t, err)
	_, err = New("random", &fakeFinder{}, nil)
	require.Error(t, err)
}
