package store

import "testing"

func TestUpsertCaseStatisticsCreateAndUpdate(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)

	cs := &CaseStatistics{
		CaseNumber:       "SCA/1/2024",
		FirstSeen:        100,
		LastSeen:         100,
		TotalAppearances: 1,
		Courts:           []string{"5"},
		Judges:           []string{"J. A"},
		StatusHistory:    []StatusHistoryEntry{{Status: "IN_SESSION", Timestamp: 100, CourtNumber: "5"}},
		WatchCount:       1,
	}
	if err := s.UpsertCaseStatistics(ctx(), cs); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetCaseStatistics(ctx(), "SCA/1/2024")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TotalAppearances != 1 || len(got.Courts) != 1 {
		t.Fatalf("unexpected: %+v", got)
	}

	cs.LastSeen = 200
	cs.TotalAppearances = 2
	cs.Courts = addUnique(cs.Courts, "7")
	if err := s.UpsertCaseStatistics(ctx(), cs); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetCaseStatistics(ctx(), "SCA/1/2024")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalAppearances != 2 || len(got.Courts) != 2 || got.FirstSeen != 100 {
		t.Fatalf("update should preserve firstSeen and extend courts: %+v", got)
	}
}

func TestGetCaseStatisticsMissing(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)
	got, err := s.GetCaseStatistics(ctx(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("want nil for missing case, got %+v", got)
	}
}

func TestUpsertCaseStatisticsTrimsStatusHistory(t *testing.T) {
	db := openTestDB(t)
	s := NewStore(db)

	history := make([]StatusHistoryEntry, MaxStatusHistory+10)
	for i := range history {
		history[i] = StatusHistoryEntry{Status: "FAR", Timestamp: int64(i)}
	}
	cs := &CaseStatistics{CaseNumber: "X", FirstSeen: 1, LastSeen: 1, StatusHistory: history}
	if err := s.UpsertCaseStatistics(ctx(), cs); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetCaseStatistics(ctx(), "X")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.StatusHistory) != MaxStatusHistory {
		t.Fatalf("got %d entries, want %d (bounded tail)", len(got.StatusHistory), MaxStatusHistory)
	}
	if got.StatusHistory[0].Timestamp != 10 {
		t.Errorf("should keep the newest tail: got first timestamp %d, want 10", got.StatusHistory[0].Timestamp)
	}
}
