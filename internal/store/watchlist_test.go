package store

import (
	"context"
	"testing"
)

func TestInsertWatchlistIfAbsentSkipsDuplicate(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	w1 := &Watchlist{ID: "w1", DeviceID: "d1", CaseNumber: "A/1", Active: true, CreatedAt: 1, UpdatedAt: 1}
	if err := s.InsertWatchlistIfAbsent(ctx, w1); err != nil {
		t.Fatal(err)
	}
	w2 := &Watchlist{ID: "w2", DeviceID: "d1", CaseNumber: "A/1", Active: true, CreatedAt: 2, UpdatedAt: 2}
	if err := s.InsertWatchlistIfAbsent(ctx, w2); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListActiveWatchlists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatalf("got %d active watchlists, want 1 (second insert should be ignored)", len(active))
	}
	if active[0].ID != "w1" {
		t.Errorf("got id %s, want w1 (first insert should win)", active[0].ID)
	}
}
