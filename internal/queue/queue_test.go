package queue

import (
	"testing"

	"github.com/hazyhaar/courtwatch/court"
)

func intp(v int) *int { return &v }

func TestBuildGroupsByCourtNumber(t *testing.T) {
	courts := []court.Court{
		{CourtCode: "5", CourtNumber: "3", CaseStatus: court.InSession, CaseNumber: "A"},
		{CourtCode: "6", CourtNumber: "3", CaseStatus: court.Recess, QueuePosition: intp(3), CaseNumber: "B"},
		{CourtCode: "7", CourtNumber: "3", CaseStatus: court.Recess, QueuePosition: intp(1), CaseNumber: "C"},
		{CourtCode: "8", CourtNumber: "3", CaseStatus: court.SittingOver, CaseNumber: "D"},
		{CourtCode: "9", CourtNumber: "4", CaseStatus: court.Recess, QueuePosition: intp(5), CaseNumber: "E"},
		{CourtCode: "10", CourtNumber: "", CaseNumber: "F"},
	}

	groups := Build(courts)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (empty courtNumber dropped)", len(groups))
	}

	g3 := groups[0]
	if g3.CourtNumber != "3" {
		t.Fatalf("expected first group to be court 3, got %s", g3.CourtNumber)
	}
	if g3.Current == nil || g3.Current.CaseNumber != "A" {
		t.Fatalf("current case: got %+v, want A", g3.Current)
	}
	if len(g3.Pending) != 2 || g3.Pending[0].CaseNumber != "C" || g3.Pending[1].CaseNumber != "B" {
		t.Fatalf("pending should be ordered by queue position, got %+v", g3.Pending)
	}

	g4 := groups[1]
	if g4.Current != nil {
		t.Errorf("court 4 has no in-session case, want nil current")
	}
	if len(g4.Pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(g4.Pending))
	}
}

func TestBuildExcludesCourtsWithoutQueuePosition(t *testing.T) {
	// spec §4.D: pending is restricted to queuePosition != ∅.
	courts := []court.Court{
		{CourtCode: "1", CourtNumber: "1", CaseStatus: court.Recess, QueuePosition: nil, CaseNumber: "NoPos"},
		{CourtCode: "2", CourtNumber: "1", CaseStatus: court.Recess, QueuePosition: intp(2), CaseNumber: "Pos2"},
	}
	groups := Build(courts)
	if len(groups) != 1 || len(groups[0].Pending) != 1 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[0].Pending[0].CaseNumber != "Pos2" {
		t.Errorf("only the positioned case should be pending: got %+v", groups[0].Pending)
	}
}
