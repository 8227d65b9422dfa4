// Package watchlist implements the per-case state machine that decides
// when a watching device earns a push alert: position tracking against the
// rebuilt pending queue, completion-by-absence with hysteresis, and a fixed
// cooldown that throttles both oscillation and retries.
package watchlist

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/courtwatch/court"
	"github.com/hazyhaar/courtwatch/internal/queue"
	"github.com/hazyhaar/courtwatch/internal/store"
)

// State is a watchlist's classification of how close its case is.
type State string

const (
	StateFar       State = "FAR"
	StateNear      State = "NEAR"
	StateVeryNear  State = "VERY_NEAR"
	StateNext      State = "NEXT"
	StateInSession State = "IN_SESSION"
	StateCompleted State = "COMPLETED"
)

// AlertType is one of the four push shapes the external gateway recognizes.
type AlertType string

const (
	AlertEarlyWarning AlertType = "early_warning"
	AlertApproaching  AlertType = "approaching"
	AlertInSession    AlertType = "in_session"
	AlertCompleted    AlertType = "completed"
)

// MissCompletedThreshold is how many consecutive absent ticks mark a
// watched case completed (spec §8 invariant 5: hysteresis of 2).
const MissCompletedThreshold = 2

// CooldownMillis is the minimum gap between two alerts on one watchlist.
const CooldownMillis = 5 * 60 * 1000

// Alert is one emitted push event, ready for the Pusher.
type Alert struct {
	Watchlist   *store.Watchlist
	Type        AlertType
	CourtNumber string
	JudgeName   string
	Position    *int
	Velocity    int
	StreamURL   string
}

// Processor runs the WatchlistProcessor pass once per tick.
type Processor struct {
	store *store.Store
	log   *slog.Logger
}

func New(s *store.Store, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{store: s, log: log}
}

// Process evaluates every active watchlist against this tick's courts and
// rebuilt queues, persisting state changes and returning emitted alerts.
// Each entry is isolated: a failure processing one is logged and swallowed
// so the rest of the batch still runs (spec §4.E, §7).
func (p *Processor) Process(ctx context.Context, nowMillis int64, courts []court.Court, groups []queue.Group) []Alert {
	active, err := p.store.ListActiveWatchlists(ctx)
	if err != nil {
		p.log.Error("list active watchlists", "error", err)
		return nil
	}

	byCase := make(map[string]court.Court, len(courts))
	for _, c := range courts {
		if c.CaseNumber != "" {
			byCase[c.CaseNumber] = c
		}
	}
	positionByCase, pendingGroupByCase := indexQueues(groups)

	var alerts []Alert
	for _, w := range active {
		alert, err := p.processOne(ctx, nowMillis, w, byCase, positionByCase, pendingGroupByCase)
		if err != nil {
			p.log.Error("process watchlist", "watchlistId", w.ID, "caseNumber", w.CaseNumber, "error", err)
			continue
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	return alerts
}

func indexQueues(groups []queue.Group) (map[string]int, map[string]string) {
	position := make(map[string]int)
	courtOf := make(map[string]string)
	for _, g := range groups {
		for i, c := range g.Pending {
			position[c.CaseNumber] = i + 1
			courtOf[c.CaseNumber] = g.CourtNumber
		}
	}
	return position, courtOf
}

func (p *Processor) processOne(
	ctx context.Context,
	nowMillis int64,
	w *store.Watchlist,
	byCase map[string]court.Court,
	positionByCase map[string]int,
	courtOfPending map[string]string,
) (*Alert, error) {
	c, found := byCase[w.CaseNumber]
	if !found {
		return p.handleAbsent(ctx, nowMillis, w)
	}
	return p.handleFound(ctx, nowMillis, w, c, positionByCase, courtOfPending)
}

func (p *Processor) handleAbsent(ctx context.Context, nowMillis int64, w *store.Watchlist) (*Alert, error) {
	w.MissCount++

	var alert *Alert
	if w.MissCount >= MissCompletedThreshold &&
		State(w.LastSeenStatus) != StateCompleted &&
		w.Settings.Completed &&
		cooldownPassed(w.LastNotificationAt, nowMillis) {
		alert = &Alert{Watchlist: w, Type: AlertCompleted, CourtNumber: w.LastSeenCourt}
		w.LastSeenStatus = string(StateCompleted)
		stamp := nowMillis
		w.LastNotificationAt = &stamp
	}
	w.UpdatedAt = nowMillis
	if err := p.store.SaveWatchlist(ctx, w); err != nil {
		return nil, err
	}
	return alert, nil
}

func (p *Processor) handleFound(
	ctx context.Context,
	nowMillis int64,
	w *store.Watchlist,
	c court.Court,
	positionByCase map[string]int,
	courtOfPending map[string]string,
) (*Alert, error) {
	w.MissCount = 0

	var position *int
	if pos, ok := positionByCase[w.CaseNumber]; ok {
		position = &pos
	}

	velocity := 0
	if w.LastSeenPosition != nil && position != nil {
		velocity = *w.LastSeenPosition - *position
	}

	newState, alertType, settingOn := deriveState(c.CaseStatus, position, w.Settings)

	var alert *Alert
	if newState != "" && string(newState) != w.LastSeenStatus && settingOn && cooldownPassed(w.LastNotificationAt, nowMillis) {
		alert = &Alert{
			Watchlist:   w,
			Type:        alertType,
			CourtNumber: c.CourtNumber,
			JudgeName:   c.JudgeName,
			Position:    position,
			Velocity:    velocity,
			StreamURL:   c.StreamURL,
		}
		w.LastSeenStatus = string(newState)
		stamp := nowMillis
		w.LastNotificationAt = &stamp
	}

	w.LastSeenPosition = position
	if c.CourtNumber != "" {
		w.LastSeenCourt = c.CourtNumber
	} else if cn, ok := courtOfPending[w.CaseNumber]; ok {
		w.LastSeenCourt = cn
	}
	w.UpdatedAt = nowMillis

	if err := p.store.SaveWatchlist(ctx, w); err != nil {
		return nil, err
	}
	return alert, nil
}

// deriveState applies the priority table from highest to lowest: an
// in-session case always wins regardless of queue position.
func deriveState(status court.CaseStatus, position *int, settings store.NotificationSettings) (State, AlertType, bool) {
	switch {
	case status == court.InSession:
		return StateInSession, AlertInSession, settings.InSession
	case position != nil && *position == 1:
		return StateNext, AlertApproaching, settings.Approaching
	case position != nil && *position <= 3:
		return StateVeryNear, AlertApproaching, settings.Approaching
	case position != nil && *position <= 10:
		return StateNear, AlertEarlyWarning, settings.EarlyWarning
	case position != nil:
		return StateFar, AlertEarlyWarning, settings.EarlyWarning
	default:
		return "", "", false
	}
}

func cooldownPassed(lastNotificationAt *int64, nowMillis int64) bool {
	if lastNotificationAt == nil {
		return true
	}
	return nowMillis-*lastNotificationAt >= CooldownMillis
}
