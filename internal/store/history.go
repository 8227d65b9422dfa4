// CLAUDE:SUMMARY Idempotent bulk CaseHistory insert relying on the unique index, conflicts tolerated (spec §4.F, §7).
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertCaseHistoryBatch inserts each entry, tolerating unique-index
// conflicts (a duplicate tick replay produces zero new rows, spec §8
// invariant 4). Errors other than a conflict abort the batch.
func (s *Store) InsertCaseHistoryBatch(ctx context.Context, entries []CaseHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin history batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO case_history (id, case_number, status, position, court_number, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.CaseNumber, e.Status, toNullInt64(e.Position), e.CourtNumber, e.ScrapedAt); err != nil {
			return fmt.Errorf("store: insert history row: %w", err)
		}
	}
	return tx.Commit()
}

// CaseHistoryForCase returns history rows for a case, newest first.
func (s *Store) CaseHistoryForCase(ctx context.Context, caseNumber string, limit int) ([]CaseHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, case_number, status, position, court_number, scraped_at
		FROM case_history WHERE case_number = ? ORDER BY scraped_at DESC LIMIT ?`,
		caseNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("store: case history: %w", err)
	}
	defer rows.Close()

	var out []CaseHistoryEntry
	for rows.Next() {
		var e CaseHistoryEntry
		var pos sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CaseNumber, &e.Status, &pos, &e.CourtNumber, &e.ScrapedAt); err != nil {
			return nil, err
		}
		e.Position = fromNullInt64(pos)
		out = append(out, e)
	}
	return out, rows.Err()
}
