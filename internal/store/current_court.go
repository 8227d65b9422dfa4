package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hazyhaar/courtwatch/court"
)

// VisibilityMissThreshold is the consecutive-miss count at which a court is
// marked invisible (spec §3 invariant: isVisible = missingCount < 3).
const VisibilityMissThreshold = 3

// UpsertObservation records that courtCode was seen this tick with the
// given full Court and canonical dataHash. changedAt only advances when
// dataHash differs from the stored value (or there is no prior row);
// checkedAt always advances. missingCount resets to 0 and isVisible to
// true, since the court was just observed.
func (s *Store) UpsertObservation(ctx context.Context, courtCode string, c court.Court, dataHash string, now int64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("store: marshal court: %w", err)
	}

	var priorHash string
	var priorChangedAt int64
	err = s.DB.QueryRowContext(ctx,
		`SELECT data_hash, changed_at FROM current_court WHERE court_code = ?`, courtCode,
	).Scan(&priorHash, &priorChangedAt)

	changedAt := now
	switch {
	case err == sql.ErrNoRows:
		changedAt = now
	case err != nil:
		return fmt.Errorf("store: lookup current_court: %w", err)
	case priorHash == dataHash:
		changedAt = priorChangedAt
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO current_court (court_code, data_json, data_hash, checked_at, changed_at, missing_count, is_visible)
		VALUES (?, ?, ?, ?, ?, 0, 1)
		ON CONFLICT(court_code) DO UPDATE SET
			data_json = excluded.data_json,
			data_hash = excluded.data_hash,
			checked_at = excluded.checked_at,
			changed_at = excluded.changed_at,
			missing_count = 0,
			is_visible = 1`,
		courtCode, string(data), dataHash, now, changedAt,
	)
	if err != nil {
		return fmt.Errorf("store: upsert current_court: %w", err)
	}
	return nil
}

// TouchCheckedAt advances checkedAt for a court re-observed this tick whose
// cheap signature didn't change, without the cost of re-marshaling and
// re-hashing the full Court object. missingCount resets to 0 and isVisible
// to true, same as UpsertObservation, since the court was just seen.
func (s *Store) TouchCheckedAt(ctx context.Context, courtCode string, now int64) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE current_court SET checked_at = ?, missing_count = 0, is_visible = 1 WHERE court_code = ?`,
		now, courtCode,
	)
	if err != nil {
		return fmt.Errorf("store: touch checked_at: %w", err)
	}
	return nil
}

// ListCourtCodes returns every courtCode ever observed (present in the
// durable view), used by DeltaEngine to detect courts missing this tick.
func (s *Store) ListCourtCodes(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT court_code FROM current_court`)
	if err != nil {
		return nil, fmt.Errorf("store: list court codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// MarkMissing increments missingCount for a court absent from this tick
// and recomputes isVisible per the hysteresis invariant. checkedAt is left
// untouched — the court was not actually observed.
func (s *Store) MarkMissing(ctx context.Context, courtCode string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE current_court
		SET missing_count = missing_count + 1,
		    is_visible = (missing_count + 1) < ?
		WHERE court_code = ?`,
		VisibilityMissThreshold, courtCode,
	)
	if err != nil {
		return fmt.Errorf("store: mark missing: %w", err)
	}
	return nil
}

// GetCurrentCourt retrieves the durable view for one courtCode, or nil if
// never observed.
func (s *Store) GetCurrentCourt(ctx context.Context, courtCode string) (*CurrentCourtRow, error) {
	var row CurrentCourtRow
	var dataJSON string
	err := s.DB.QueryRowContext(ctx,
		`SELECT court_code, data_json, data_hash, checked_at, changed_at, missing_count, is_visible
		FROM current_court WHERE court_code = ?`, courtCode,
	).Scan(&row.CourtCode, &dataJSON, &row.DataHash, &row.CheckedAt, &row.ChangedAt, &row.MissingCount, &row.IsVisible)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get current_court: %w", err)
	}
	if err := json.Unmarshal([]byte(dataJSON), &row.Data); err != nil {
		return nil, fmt.Errorf("store: unmarshal court: %w", err)
	}
	return &row, nil
}

// ListVisibleCourts returns the full set of currently visible courts, the
// view used by QueueBuilder/WatchlistProcessor each tick to see a watched
// case even when its card was HTML-unchanged.
func (s *Store) ListVisibleCourts(ctx context.Context) ([]court.Court, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT data_json FROM current_court WHERE is_visible = 1`)
	if err != nil {
		return nil, fmt.Errorf("store: list visible courts: %w", err)
	}
	defer rows.Close()

	var out []court.Court
	for rows.Next() {
		var dataJSON string
		if err := rows.Scan(&dataJSON); err != nil {
			return nil, err
		}
		var c court.Court
		if err := json.Unmarshal([]byte(dataJSON), &c); err != nil {
			return nil, fmt.Errorf("store: unmarshal court: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
