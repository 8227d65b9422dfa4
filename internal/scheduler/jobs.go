package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// JobFunc is a single auxiliary job invocation.
type JobFunc func(ctx context.Context, now time.Time) error

// RunEvery fires fn on a fixed interval until ctx is cancelled. Unlike the
// core tick, auxiliary jobs carry no reentrancy lock or backoff: they are
// peripheral bookkeeping (spec §4.G) and a failed run simply logs and waits
// for the next tick of its own ticker.
func RunEvery(ctx context.Context, interval time.Duration, fn JobFunc, logger *slog.Logger, name string) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := fn(ctx, now); err != nil {
				logger.Error("scheduler: job failed", "job", name, "error", err)
			}
		}
	}
}

// RunDailyAt fires fn once per day at the given local hour:minute until ctx
// is cancelled. Used for the 02:00 cleanup job (spec §4.G), whose body is
// a no-op: no rows are aged out of NotificationLog or anywhere else.
func RunDailyAt(ctx context.Context, hour, minute int, fn JobFunc, logger *slog.Logger, name string) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		now := time.Now()
		next := nextDailyOccurrence(now, hour, minute)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			if err := fn(ctx, fired); err != nil {
				logger.Error("scheduler: job failed", "job", name, "error", err)
			}
		}
	}
}

func nextDailyOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
