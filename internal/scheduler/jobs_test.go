package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunEveryFiresOnInterval(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	RunEvery(ctx, 10*time.Millisecond, func(context.Context, time.Time) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil, "test-job")

	if calls < 2 {
		t.Errorf("got %d calls in 35ms at 10ms interval, want at least 2", calls)
	}
}

func TestNextDailyOccurrenceRollsToTomorrow(t *testing.T) {
	now := time.Date(2026, 3, 5, 3, 0, 0, 0, time.UTC)
	next := nextDailyOccurrence(now, 2, 0)
	want := time.Date(2026, 3, 6, 2, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextDailyOccurrenceLaterToday(t *testing.T) {
	now := time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC)
	next := nextDailyOccurrence(now, 2, 0)
	want := time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}
