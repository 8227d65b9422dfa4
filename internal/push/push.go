// Package push sends device notifications for emitted watchlist alerts.
// Every send, successful or not, is expected to be logged by the caller
// into NotificationLog (spec §6 — "every send is logged").
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/courtwatch/internal/retry"
)

// Message is the payload the four alert shapes reduce to before dispatch.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Pusher sends a push Message to a device. Implementations must treat a
// returned error as a delivery failure worth recording with success:false;
// they must never mutate caller-owned watchlist state.
type Pusher interface {
	Send(ctx context.Context, msg Message) error
}

// NopPusher discards every message. Useful when no push-gateway credentials
// are configured (spec §6's configuration is optional).
type NopPusher struct{}

func (NopPusher) Send(context.Context, Message) error { return nil }

// WebhookPusher posts each message as JSON to a configured URL with retry
// and exponential backoff, the same pattern the DOM watcher's webhook sink
// uses for its own batches.
type WebhookPusher struct {
	url        string
	client     *http.Client
	maxRetries int
	log        *slog.Logger
}

type WebhookOption func(*WebhookPusher)

func WithMaxRetries(n int) WebhookOption { return func(w *WebhookPusher) { w.maxRetries = n } }
func WithLogger(l *slog.Logger) WebhookOption {
	return func(w *WebhookPusher) { w.log = l }
}

func NewWebhookPusher(url string, opts ...WebhookOption) *WebhookPusher {
	w := &WebhookPusher{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *WebhookPusher) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("push: marshal message: %w", err)
	}

	err = retry.WithBackoff(ctx, w.maxRetries, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("push: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			w.log.Warn("push: request failed", "attempt", attempt+1, "error", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		w.log.Warn("push: bad status", "attempt", attempt+1, "status", resp.StatusCode)
		return fmt.Errorf("push: status %d", resp.StatusCode)
	})
	if err != nil {
		return fmt.Errorf("push: all retries exhausted: %w", err)
	}
	return nil
}
