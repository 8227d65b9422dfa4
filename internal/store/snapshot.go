package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazyhaar/courtwatch/court"
)

// WriteCourtSnapshot persists a full-board capture, the periodic 5-minute
// job's output (spec §4.G).
func (s *Store) WriteCourtSnapshot(ctx context.Context, snap CourtSnapshot) error {
	data, err := json.Marshal(snap.Courts)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO court_snapshots (id, data_json, taken_at) VALUES (?, ?, ?)`,
		snap.ID, string(data), snap.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	return nil
}

// LatestCourtSnapshot returns the most recent capture, or nil if none exist.
func (s *Store) LatestCourtSnapshot(ctx context.Context) (*CourtSnapshot, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, data_json, taken_at FROM court_snapshots ORDER BY taken_at DESC LIMIT 1`)

	var snap CourtSnapshot
	var data string
	err := row.Scan(&snap.ID, &data, &snap.TakenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest snapshot: %w", err)
	}
	var courts []court.Court
	if err := json.Unmarshal([]byte(data), &courts); err != nil {
		return nil, fmt.Errorf("store: unmarshal snapshot: %w", err)
	}
	snap.Courts = courts
	return &snap, nil
}

// PruneSnapshotsOlderThan deletes captures older than cutoffMillis. The
// daily cleanup job does not call it.
func (s *Store) PruneSnapshotsOlderThan(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM court_snapshots WHERE taken_at < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("store: prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
