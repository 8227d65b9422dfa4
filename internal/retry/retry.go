// Package retry implements the bounded exponential-backoff loop shared by
// every outbound webhook call in courtwatch: push.WebhookPusher and
// broadcast.WebhookBroadcaster both post JSON to an external HTTP endpoint
// and both need the same give-up-after-N-attempts behavior.
package retry

import (
	"context"
	"time"
)

// Attempt performs one try and reports whether it succeeded.
type Attempt func(attempt int) error

// WithBackoff calls attempt up to maxRetries+1 times total, waiting
// 2^(n-1) seconds before the n-th retry. It returns nil on the first
// success, the last error if every attempt failed, or ctx.Err() if the
// context is cancelled while waiting between attempts.
func WithBackoff(ctx context.Context, maxRetries int, attempt Attempt) error {
	var lastErr error
	for n := 0; n <= maxRetries; n++ {
		if n > 0 {
			backoff := time.Duration(1<<uint(n-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := attempt(n); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
