package broadcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/courtwatch/court"
)

func TestNopBroadcasterAlwaysSucceeds(t *testing.T) {
	if err := (NopBroadcaster{}).Broadcast(context.Background(), Event{}); err != nil {
		t.Fatalf("NopBroadcaster should never error: %v", err)
	}
}

func TestWebhookBroadcasterSendsEvent(t *testing.T) {
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b := NewWebhookBroadcaster(srv.URL)
	evt := Event{Type: EventCourtDelta, Courts: []court.Court{{CourtCode: "5"}}, ScrapedAt: 100}
	if err := b.Broadcast(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	if gotType != "application/json" {
		t.Errorf("content-type: got %q", gotType)
	}
}

func TestWebhookBroadcasterExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewWebhookBroadcaster(srv.URL, WithMaxRetries(1))
	if err := b.Broadcast(context.Background(), Event{}); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
}
