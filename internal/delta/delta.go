// Package delta implements the two-layer change detector that sits between
// the board parser and durable storage: a cheap in-memory per-card HTML hash
// that short-circuits the expensive canonical-hash/full-row upsert for
// unchanged cards, and a canonical full-object hash that decides whether a
// real, durable change happened. checkedAt still advances on the cheap path
// every tick a card is observed — only the canonical hash and full row are
// skipped. The in-memory layer is grounded on the teacher's mutation
// deduper (observer/dedup.go): a small keyed map of recently seen
// signatures, pruned and replaced on each tick rather than persisted.
package delta

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/courtwatch/court"
	"github.com/hazyhaar/courtwatch/internal/parse"
	"github.com/hazyhaar/courtwatch/internal/store"
)

// signature is the cheap per-tick fingerprint of a card: if none of these
// three fields moved since the last tick, the card is presumed unchanged
// and only gets a lightweight checkedAt touch rather than the full
// canonical-hash/upsert path.
type signature struct {
	htmlHash string
	caseInfo string
	srNo     string
}

// Engine is the DeltaEngine: an in-memory signature cache backed by a
// durable store for the canonical per-court view.
type Engine struct {
	store *store.Store
	log   *slog.Logger

	lastSignature map[string]signature
}

// New builds an Engine. log may be nil, in which case a disabled logger is
// used (matches the teacher's nil-logger convention throughout domwatch).
func New(s *store.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: s, log: log, lastSignature: make(map[string]signature)}
}

// Result is one tick's outcome: every currently visible court (for
// Historian, QueueBuilder and WatchlistProcessor) and the subset whose
// canonical hash actually changed (for the COURT_DELTA broadcast).
type Result struct {
	Visible []court.Court
	Changed []court.Court
}

// Apply folds one tick's parsed courts and cards into the signature cache
// and durable store, marking previously-seen-now-absent courts missing
// (spec §4.C, §8 invariant 6).
func (e *Engine) Apply(ctx context.Context, nowMillis int64, courts []court.Court, cards []parse.CardHTML) (Result, error) {
	cardByCode := make(map[string]parse.CardHTML, len(cards))
	for _, c := range cards {
		cardByCode[c.CourtCode] = c
	}

	seen := make(map[string]bool, len(courts))
	var changed []court.Court

	for _, c := range courts {
		seen[c.CourtCode] = true
		card := cardByCode[c.CourtCode]
		sig := signature{
			htmlHash: court.HashHTML([]byte(card.InnerHTML)),
			caseInfo: card.CaseInfo,
			srNo:     card.GSrNo,
		}

		if prior, ok := e.lastSignature[c.CourtCode]; ok && prior == sig {
			// Unchanged since last tick: skip the expensive canonical
			// hash/upsert, but checkedAt/missingCount/isVisible still
			// advance through the lighter touch.
			if err := e.store.TouchCheckedAt(ctx, c.CourtCode, nowMillis); err != nil {
				return Result{}, fmt.Errorf("delta: touch checked_at %s: %w", c.CourtCode, err)
			}
			continue
		}
		e.lastSignature[c.CourtCode] = sig

		dataHash, err := court.DataHash(c)
		if err != nil {
			return Result{}, fmt.Errorf("delta: hash court %s: %w", c.CourtCode, err)
		}
		if err := e.store.UpsertObservation(ctx, c.CourtCode, c, dataHash, nowMillis); err != nil {
			return Result{}, fmt.Errorf("delta: upsert %s: %w", c.CourtCode, err)
		}

		row, err := e.store.GetCurrentCourt(ctx, c.CourtCode)
		if err != nil {
			return Result{}, fmt.Errorf("delta: reload %s: %w", c.CourtCode, err)
		}
		if row != nil && row.ChangedAt == nowMillis {
			changed = append(changed, c)
		}
	}

	knownCodes, err := e.store.ListCourtCodes(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("delta: list known courts: %w", err)
	}
	for _, code := range knownCodes {
		if seen[code] {
			continue
		}
		if err := e.store.MarkMissing(ctx, code); err != nil {
			e.log.Error("mark court missing", "courtCode", code, "error", err)
			continue
		}
		delete(e.lastSignature, code) // force a fresh durable write once it reappears
	}

	visible, err := e.store.ListVisibleCourts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("delta: list visible: %w", err)
	}
	return Result{Visible: visible, Changed: changed}, nil
}
