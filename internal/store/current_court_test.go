package store

import (
	"testing"

	"github.com/hazyhaar/courtwatch/court"
)

func TestUpsertObservationSetsChangedAtOnlyWhenHashDiffers(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)
	c := court.Court{CourtCode: "5", JudgeName: "J. A"}

	if err := s.UpsertObservation(ctx(), "5", c, "hash1", 100); err != nil {
		t.Fatal(err)
	}
	row, err := s.GetCurrentCourt(ctx(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row.ChangedAt != 100 || row.CheckedAt != 100 {
		t.Fatalf("got changedAt=%d checkedAt=%d, want both 100", row.ChangedAt, row.CheckedAt)
	}

	// Same hash next tick: checkedAt advances, changedAt does not.
	if err := s.UpsertObservation(ctx(), "5", c, "hash1", 200); err != nil {
		t.Fatal(err)
	}
	row, err = s.GetCurrentCourt(ctx(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row.CheckedAt != 200 {
		t.Errorf("checkedAt: got %d, want 200", row.CheckedAt)
	}
	if row.ChangedAt != 100 {
		t.Errorf("changedAt should not advance on unchanged hash: got %d, want 100", row.ChangedAt)
	}

	// Different hash: changedAt advances.
	if err := s.UpsertObservation(ctx(), "5", c, "hash2", 300); err != nil {
		t.Fatal(err)
	}
	row, err = s.GetCurrentCourt(ctx(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if row.ChangedAt != 300 {
		t.Errorf("changedAt should advance on changed hash: got %d, want 300", row.ChangedAt)
	}
}

func TestUpsertObservationResetsMissingAndVisibility(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)
	c := court.Court{CourtCode: "5"}

	if err := s.UpsertObservation(ctx(), "5", c, "h", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkMissing(ctx(), "5"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkMissing(ctx(), "5"); err != nil {
		t.Fatal(err)
	}
	row, _ := s.GetCurrentCourt(ctx(), "5")
	if row.MissingCount != 2 {
		t.Fatalf("missingCount: got %d, want 2", row.MissingCount)
	}

	if err := s.UpsertObservation(ctx(), "5", c, "h", 2); err != nil {
		t.Fatal(err)
	}
	row, _ = s.GetCurrentCourt(ctx(), "5")
	if row.MissingCount != 0 || !row.IsVisible {
		t.Errorf("observation should reset missingCount and visibility: got %d/%v", row.MissingCount, row.IsVisible)
	}
}

func TestVisibilityHysteresis(t *testing.T) {
	// spec §8 invariant 6: invisible only after 3 consecutive absent ticks.
	db := openTestDB(t)
	s := NewStore(db)
	if err := s.UpsertObservation(ctx(), "5", court.Court{CourtCode: "5"}, "h", 1); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 2; i++ {
		if err := s.MarkMissing(ctx(), "5"); err != nil {
			t.Fatal(err)
		}
		row, _ := s.GetCurrentCourt(ctx(), "5")
		if !row.IsVisible {
			t.Fatalf("after %d misses, should still be visible", i)
		}
	}

	if err := s.MarkMissing(ctx(), "5"); err != nil {
		t.Fatal(err)
	}
	row, _ := s.GetCurrentCourt(ctx(), "5")
	if row.IsVisible {
		t.Error("after 3 misses, should be invisible")
	}
}

func TestListCourtCodesAndVisibleCourts(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)
	s.UpsertObservation(ctx(), "1", court.Court{CourtCode: "1"}, "h1", 1)
	s.UpsertObservation(ctx(), "2", court.Court{CourtCode: "2"}, "h2", 1)

	codes, err := s.ListCourtCodes(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 {
		t.Fatalf("got %d codes, want 2", len(codes))
	}

	visible, err := s.ListVisibleCourts(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 2 {
		t.Fatalf("got %d visible courts, want 2", len(visible))
	}
}
