package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetDevice is read-only to the core: devices are provisioned by an
// external registration surface, never by the ingest pipeline (spec §3).
func (s *Store) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	var d Device
	err := s.DB.QueryRowContext(ctx,
		`SELECT device_id, push_token, active FROM devices WHERE device_id = ?`, deviceID,
	).Scan(&d.DeviceID, &d.PushToken, &d.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get device: %w", err)
	}
	return &d, nil
}

// ListActiveDevices returns every device eligible to receive a push.
func (s *Store) ListActiveDevices(ctx context.Context) ([]*Device, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT device_id, push_token, active FROM devices WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("store: list active devices: %w", err)
	}
	defer rows.Close()

	var out []*Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.DeviceID, &d.PushToken, &d.Active); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
