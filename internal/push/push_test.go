package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNopPusherAlwaysSucceeds(t *testing.T) {
	if err := (NopPusher{}).Send(context.Background(), Message{}); err != nil {
		t.Fatalf("NopPusher should never error: %v", err)
	}
}

func TestWebhookPusherRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPusher(srv.URL, WithMaxRetries(5))
	if err := p.Send(context.Background(), Message{Token: "t1", Title: "hi"}); err != nil {
		t.Fatalf("should eventually succeed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("got %d calls, want 3", calls)
	}
}

func TestWebhookPusherExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWebhookPusher(srv.URL, WithMaxRetries(1))
	if err := p.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
}
