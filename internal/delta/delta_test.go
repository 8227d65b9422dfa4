package delta

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/courtwatch/court"
	"github.com/hazyhaar/courtwatch/internal/parse"
	"github.com/hazyhaar/courtwatch/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.ApplySchema(db); err != nil {
		t.Fatal(err)
	}
	s := store.NewStore(db)
	return New(s, nil), s
}

func TestApplyFirstTickWritesEveryCourt(t *testing.T) {
	e, s := newTestEngine(t)
	courts := []court.Court{{CourtCode: "5", JudgeName: "J. A"}}
	cards := []parse.CardHTML{{CourtCode: "5", InnerHTML: "<div>x</div>", CaseInfo: "SCA/1/2024", GSrNo: "7"}}

	res, err := e.Apply(context.Background(), 100, courts, cards)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Visible) != 1 || len(res.Changed) != 1 {
		t.Fatalf("got visible=%d changed=%d, want 1/1", len(res.Visible), len(res.Changed))
	}

	row, err := s.GetCurrentCourt(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.ChangedAt != 100 {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestApplyTouchesCheckedAtForUnchangedCard(t *testing.T) {
	e, s := newTestEngine(t)
	courts := []court.Court{{CourtCode: "5", JudgeName: "J. A"}}
	cards := []parse.CardHTML{{CourtCode: "5", InnerHTML: "<div>x</div>", CaseInfo: "SCA/1/2024", GSrNo: "7"}}

	if _, err := e.Apply(context.Background(), 100, courts, cards); err != nil {
		t.Fatal(err)
	}
	res, err := e.Apply(context.Background(), 200, courts, cards)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changed) != 0 {
		t.Fatalf("unchanged card should not be reported changed: got %d", len(res.Changed))
	}

	row, err := s.GetCurrentCourt(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row.CheckedAt != 200 {
		t.Errorf("checkedAt should advance even on an unchanged tick: got %d, want 200", row.CheckedAt)
	}
	if row.ChangedAt != 100 {
		t.Errorf("changedAt should not move for an unchanged card: got %d, want 100", row.ChangedAt)
	}
}

func TestApplyMarksAbsentCourtsMissing(t *testing.T) {
	e, s := newTestEngine(t)
	courts := []court.Court{{CourtCode: "5"}}
	cards := []parse.CardHTML{{CourtCode: "5", InnerHTML: "<div>x</div>"}}

	if _, err := e.Apply(context.Background(), 100, courts, cards); err != nil {
		t.Fatal(err)
	}
	// Court 5 absent on tick 2.
	if _, err := e.Apply(context.Background(), 200, nil, nil); err != nil {
		t.Fatal(err)
	}

	row, err := s.GetCurrentCourt(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row.MissingCount != 1 {
		t.Fatalf("missingCount: got %d, want 1", row.MissingCount)
	}
}

func TestApplyReappearanceForcesFreshWrite(t *testing.T) {
	e, s := newTestEngine(t)
	courts := []court.Court{{CourtCode: "5"}}
	cards := []parse.CardHTML{{CourtCode: "5", InnerHTML: "<div>x</div>"}}

	if _, err := e.Apply(context.Background(), 100, courts, cards); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply(context.Background(), 200, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply(context.Background(), 300, courts, cards); err != nil {
		t.Fatal(err)
	}

	row, err := s.GetCurrentCourt(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	// Reappearing with identical data is not a content change: changedAt
	// stays put even though missing/visibility state resets.
	if row.ChangedAt != 100 {
		t.Errorf("changedAt should not move for an identical reappearance: got %d, want 100", row.ChangedAt)
	}
	if row.MissingCount != 0 || !row.IsVisible {
		t.Errorf("reappearance should reset missing/visibility: %+v", row)
	}
}
