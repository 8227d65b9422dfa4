package store

import (
	"context"
	"fmt"
)

// InsertNotificationLog records one push attempt, successful or not, for
// auditability (spec §3).
func (s *Store) InsertNotificationLog(ctx context.Context, e NotificationLogEntry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO notification_log (id, device_id, case_number, notification_type,
			court_number, success, error_message, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DeviceID, e.CaseNumber, e.NotificationType,
		e.CourtNumber, e.Success, e.ErrorMessage, e.SentAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert notification log: %w", err)
	}
	return nil
}

// CountRecentNotifications reports how many of a given type were sent to a
// device for a case since sinceMillis. WatchlistProcessor's cooldown does
// not use it; that check reads the watchlist's own LastNotificationAt.
func (s *Store) CountRecentNotifications(ctx context.Context, deviceID, caseNumber, notificationType string, sinceMillis int64) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification_log
		WHERE device_id = ? AND case_number = ? AND notification_type = ? AND sent_at >= ?`,
		deviceID, caseNumber, notificationType, sinceMillis,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count recent notifications: %w", err)
	}
	return n, nil
}
