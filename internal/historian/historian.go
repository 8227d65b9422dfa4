// Package historian appends CaseHistory events and maintains CaseStatistics
// aggregates, both idempotently: a process-local state map filters
// no-op ticks before anything reaches the database, and the database's own
// uniqueness index is the backstop against a duplicated tick replay.
package historian

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/courtwatch/court"
	"github.com/hazyhaar/courtwatch/internal/store"
)

// courtState is the subset of a Court the Historian watches for change.
type courtState struct {
	caseNumber string
	status     court.CaseStatus
	position   *int
}

func (a courtState) equal(b courtState) bool {
	if a.caseNumber != b.caseNumber || a.status != b.status {
		return false
	}
	if (a.position == nil) != (b.position == nil) {
		return false
	}
	return a.position == nil || *a.position == *b.position
}

// Historian is the append-only recorder keyed per courtNumber.
type Historian struct {
	store *store.Store
	log   *slog.Logger

	lastCourtState map[string]courtState
	idFor          func(courtNumber string, scrapedAtMillis int64) string
}

// New builds a Historian. idFor generates the id for a history row; the
// caller supplies it so Historian stays free of randomness (the
// orchestrator wires in idgen, which returns a fresh id on every call).
func New(s *store.Store, log *slog.Logger, idFor func(courtNumber string, scrapedAtMillis int64) string) *Historian {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Historian{store: s, log: log, lastCourtState: make(map[string]courtState), idFor: idFor}
}

// Record appends CaseHistory for every court whose watched fields changed
// since the last tick, and upserts CaseStatistics for every court observed
// this tick (spec §4.F).
func (h *Historian) Record(ctx context.Context, nowMillis int64, scrapedAtMillis int64, courts []court.Court) error {
	var batch []store.CaseHistoryEntry

	for _, c := range courts {
		if c.CourtNumber == "" {
			continue
		}
		state := courtState{caseNumber: c.CaseNumber, status: c.CaseStatus, position: c.QueuePosition}
		prior, ok := h.lastCourtState[c.CourtNumber]
		if ok && prior.equal(state) {
			continue
		}
		h.lastCourtState[c.CourtNumber] = state

		if c.CaseNumber == "" {
			continue // nothing to attribute the history row to
		}
		batch = append(batch, store.CaseHistoryEntry{
			ID:          h.idFor(c.CourtNumber, scrapedAtMillis),
			CaseNumber:  c.CaseNumber,
			Status:      string(c.CaseStatus),
			Position:    c.QueuePosition,
			CourtNumber: c.CourtNumber,
			ScrapedAt:   scrapedAtMillis,
		})
	}

	if err := h.store.InsertCaseHistoryBatch(ctx, batch); err != nil {
		return fmt.Errorf("historian: insert history batch: %w", err)
	}

	for _, c := range courts {
		if c.CaseNumber == "" {
			continue
		}
		if err := h.upsertStatistics(ctx, nowMillis, c); err != nil {
			h.log.Error("upsert case statistics", "caseNumber", c.CaseNumber, "error", err)
		}
	}
	return nil
}

func (h *Historian) upsertStatistics(ctx context.Context, nowMillis int64, c court.Court) error {
	cs, err := h.store.GetCaseStatistics(ctx, c.CaseNumber)
	if err != nil {
		return err
	}
	if cs == nil {
		cs = &store.CaseStatistics{CaseNumber: c.CaseNumber, FirstSeen: nowMillis}
	}
	cs.LastSeen = nowMillis
	cs.TotalAppearances++
	if c.CourtNumber != "" {
		cs.Courts = addUnique(cs.Courts, c.CourtNumber)
	}
	if c.JudgeName != "" {
		cs.Judges = addUnique(cs.Judges, c.JudgeName)
	}
	cs.StatusHistory = append(cs.StatusHistory, store.StatusHistoryEntry{
		Status:        string(c.CaseStatus),
		Timestamp:     nowMillis,
		CourtNumber:   c.CourtNumber,
		QueuePosition: c.QueuePosition,
	})

	watchCount, err := h.store.CountActiveWatchlists(ctx, c.CaseNumber)
	if err != nil {
		return err
	}
	cs.WatchCount = watchCount

	return h.store.UpsertCaseStatistics(ctx, cs)
}

func addUnique(set []string, v string) []string {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}
