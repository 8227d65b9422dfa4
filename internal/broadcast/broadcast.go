// Package broadcast fans a tick's changed courts out to connected
// real-time clients. Called only when a tick produced a non-empty changed
// set (spec §6).
package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/courtwatch/court"
	"github.com/hazyhaar/courtwatch/internal/retry"
)

// Event is the payload pushed to the real-time transport.
type Event struct {
	Type      string        `json:"type"`
	Courts    []court.Court `json:"courts"`
	ScrapedAt int64         `json:"scrapedAt"`
}

// EventCourtDelta is the only event type the core emits.
const EventCourtDelta = "COURT_DELTA"

// Broadcaster fans an Event out to connected clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, evt Event) error
}

// NopBroadcaster discards every event.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, Event) error { return nil }

// WebhookBroadcaster posts each event as JSON with retry and exponential
// backoff, grounded on the same webhook sink pattern push.WebhookPusher
// uses.
type WebhookBroadcaster struct {
	url        string
	client     *http.Client
	maxRetries int
	log        *slog.Logger
}

type WebhookOption func(*WebhookBroadcaster)

func WithMaxRetries(n int) WebhookOption { return func(b *WebhookBroadcaster) { b.maxRetries = n } }
func WithLogger(l *slog.Logger) WebhookOption {
	return func(b *WebhookBroadcaster) { b.log = l }
}

func NewWebhookBroadcaster(url string, opts ...WebhookOption) *WebhookBroadcaster {
	b := &WebhookBroadcaster{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *WebhookBroadcaster) Broadcast(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("broadcast: marshal event: %w", err)
	}

	err = retry.WithBackoff(ctx, b.maxRetries, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("broadcast: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := b.client.Do(req)
		if err != nil {
			b.log.Warn("broadcast: request failed", "attempt", attempt+1, "error", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		b.log.Warn("broadcast: bad status", "attempt", attempt+1, "status", resp.StatusCode)
		return fmt.Errorf("broadcast: status %d", resp.StatusCode)
	})
	if err != nil {
		return fmt.Errorf("broadcast: all retries exhausted: %w", err)
	}
	return nil
}
