// CLAUDE:SUMMARY Watchlist CRUD and the active-list scan WatchlistProcessor runs each tick.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// InsertWatchlist creates a new active watchlist.
func (s *Store) InsertWatchlist(ctx context.Context, w *Watchlist) error {
	settings, err := json.Marshal(w.Settings)
	if err != nil {
		return fmt.Errorf("store: marshal settings: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO watchlists (id, device_id, case_number, settings_json,
		last_seen_status, last_seen_court, last_seen_position, miss_count,
		last_notification_at, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.DeviceID, w.CaseNumber, string(settings),
		w.LastSeenStatus, w.LastSeenCourt, toNullInt64(w.LastSeenPosition), w.MissCount,
		toNullInt64Ptr(w.LastNotificationAt), w.Active, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// InsertWatchlistIfAbsent inserts w unless an active watchlist already
// exists for (device_id, case_number), relying on the partial unique index
// the same way InsertCaseHistoryBatch relies on case_history's (spec §3's
// "unique on (deviceId, caseNumber) active"). Used to seed watchlists from
// a static config file without duplicating rows on restart.
func (s *Store) InsertWatchlistIfAbsent(ctx context.Context, w *Watchlist) error {
	settings, err := json.Marshal(w.Settings)
	if err != nil {
		return fmt.Errorf("store: marshal settings: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlists (id, device_id, case_number, settings_json,
		last_seen_status, last_seen_court, last_seen_position, miss_count,
		last_notification_at, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.DeviceID, w.CaseNumber, string(settings),
		w.LastSeenStatus, w.LastSeenCourt, toNullInt64(w.LastSeenPosition), w.MissCount,
		toNullInt64Ptr(w.LastNotificationAt), w.Active, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// ListActiveWatchlists returns every active watchlist, the set
// WatchlistProcessor iterates every tick (spec §4.E).
func (s *Store) ListActiveWatchlists(ctx context.Context) ([]*Watchlist, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, device_id, case_number, settings_json, last_seen_status,
		last_seen_court, last_seen_position, miss_count, last_notification_at,
		active, created_at, updated_at
		FROM watchlists WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("store: list watchlists: %w", err)
	}
	defer rows.Close()

	var out []*Watchlist
	for rows.Next() {
		w, err := scanWatchlist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CountActiveWatchlists reports how many active watchlists cover a case
// number, the value Historian stamps into CaseStatistics.WatchCount.
func (s *Store) CountActiveWatchlists(ctx context.Context, caseNumber string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM watchlists WHERE case_number = ? AND active = 1`, caseNumber,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count active watchlists: %w", err)
	}
	return n, nil
}

// SaveWatchlist persists a watchlist's mutable state fields (the only
// fields WatchlistProcessor is allowed to change, per spec §3's
// "mutated only by WatchlistProcessor").
func (s *Store) SaveWatchlist(ctx context.Context, w *Watchlist) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE watchlists SET
			last_seen_status = ?, last_seen_court = ?, last_seen_position = ?,
			miss_count = ?, last_notification_at = ?, updated_at = ?
		WHERE id = ?`,
		w.LastSeenStatus, w.LastSeenCourt, toNullInt64(w.LastSeenPosition),
		w.MissCount, toNullInt64Ptr(w.LastNotificationAt), w.UpdatedAt, w.ID,
	)
	return err
}

// DeactivateWatchlist marks a watchlist inactive (user unsubscribe).
func (s *Store) DeactivateWatchlist(ctx context.Context, id string, now int64) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE watchlists SET active = 0, updated_at = ? WHERE id = ?`, now, id)
	return err
}

func scanWatchlist(rows *sql.Rows) (*Watchlist, error) {
	var w Watchlist
	var settingsJSON string
	var pos, lastNotif sql.NullInt64
	err := rows.Scan(&w.ID, &w.DeviceID, &w.CaseNumber, &settingsJSON,
		&w.LastSeenStatus, &w.LastSeenCourt, &pos, &w.MissCount,
		&lastNotif, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: scan watchlist: %w", err)
	}
	w.LastSeenPosition = fromNullInt64(pos)
	w.LastNotificationAt = fromNullInt64Ptr(lastNotif)
	if err := json.Unmarshal([]byte(settingsJSON), &w.Settings); err != nil {
		return nil, fmt.Errorf("store: unmarshal settings: %w", err)
	}
	return &w, nil
}
