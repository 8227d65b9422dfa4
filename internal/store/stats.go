package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// GetCaseStatistics returns nil, nil when no aggregate exists yet.
func (s *Store) GetCaseStatistics(ctx context.Context, caseNumber string) (*CaseStatistics, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT case_number, first_seen, last_seen, total_appearances,
		courts_json, judges_json, status_history_json, watch_count
		FROM case_statistics WHERE case_number = ?`, caseNumber)

	var cs CaseStatistics
	var courtsJSON, judgesJSON, historyJSON string
	err := row.Scan(&cs.CaseNumber, &cs.FirstSeen, &cs.LastSeen, &cs.TotalAppearances,
		&courtsJSON, &judgesJSON, &historyJSON, &cs.WatchCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get case statistics: %w", err)
	}
	if err := json.Unmarshal([]byte(courtsJSON), &cs.Courts); err != nil {
		return nil, fmt.Errorf("store: unmarshal courts: %w", err)
	}
	if err := json.Unmarshal([]byte(judgesJSON), &cs.Judges); err != nil {
		return nil, fmt.Errorf("store: unmarshal judges: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &cs.StatusHistory); err != nil {
		return nil, fmt.Errorf("store: unmarshal status history: %w", err)
	}
	return &cs, nil
}

// UpsertCaseStatistics stores the full aggregate, trimming StatusHistory to
// its bounded tail before writing (spec §3, MaxStatusHistory entries max).
func (s *Store) UpsertCaseStatistics(ctx context.Context, cs *CaseStatistics) error {
	if len(cs.StatusHistory) > MaxStatusHistory {
		cs.StatusHistory = cs.StatusHistory[len(cs.StatusHistory)-MaxStatusHistory:]
	}
	courtsJSON, err := json.Marshal(cs.Courts)
	if err != nil {
		return fmt.Errorf("store: marshal courts: %w", err)
	}
	judgesJSON, err := json.Marshal(cs.Judges)
	if err != nil {
		return fmt.Errorf("store: marshal judges: %w", err)
	}
	historyJSON, err := json.Marshal(cs.StatusHistory)
	if err != nil {
		return fmt.Errorf("store: marshal status history: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO case_statistics (case_number, first_seen, last_seen,
			total_appearances, courts_json, judges_json, status_history_json, watch_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_number) DO UPDATE SET
			last_seen = excluded.last_seen,
			total_appearances = excluded.total_appearances,
			courts_json = excluded.courts_json,
			judges_json = excluded.judges_json,
			status_history_json = excluded.status_history_json,
			watch_count = excluded.watch_count`,
		cs.CaseNumber, cs.FirstSeen, cs.LastSeen, cs.TotalAppearances,
		string(courtsJSON), string(judgesJSON), string(historyJSON), cs.WatchCount,
	)
	if err != nil {
		return fmt.Errorf("store: upsert case statistics: %w", err)
	}
	return nil
}

// addUnique appends v to set if not already present, preserving order.
func addUnique(set []string, v string) []string {
	if v == "" {
		return set
	}
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}
