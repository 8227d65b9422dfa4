// Package store is the data access layer for courtwatch's durable state:
// the per-court current view, watchlists, case history, case statistics,
// notification log, devices, and periodic board snapshots (spec §6).
package store

import "database/sql"

// Schema is the complete courtwatch schema. The uniqueness index on
// case_history is what makes the Historian's bulk inserts safely
// idempotent (spec §4.F, §7). notification_log has no uniqueness index,
// so every InsertNotificationLog call adds a row.
const Schema = `
CREATE TABLE IF NOT EXISTS current_court (
	court_code    TEXT PRIMARY KEY,
	data_json     TEXT NOT NULL,
	data_hash     TEXT NOT NULL,
	checked_at    INTEGER NOT NULL,
	changed_at    INTEGER NOT NULL,
	missing_count INTEGER NOT NULL DEFAULT 0,
	is_visible    INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS watchlists (
	id                TEXT PRIMARY KEY,
	device_id         TEXT NOT NULL,
	case_number       TEXT NOT NULL,
	settings_json     TEXT NOT NULL DEFAULT '{}',
	last_seen_status  TEXT NOT NULL DEFAULT '',
	last_seen_court   TEXT NOT NULL DEFAULT '',
	last_seen_position INTEGER,
	miss_count        INTEGER NOT NULL DEFAULT 0,
	last_notification_at INTEGER,
	active            INTEGER NOT NULL DEFAULT 1,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_watchlists_device_case_active
	ON watchlists(device_id, case_number) WHERE active = 1;

CREATE TABLE IF NOT EXISTS case_history (
	id           TEXT PRIMARY KEY,
	case_number  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT '',
	position     INTEGER,
	court_number TEXT NOT NULL DEFAULT '',
	scraped_at   INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_case_history_unique
	ON case_history(case_number, status, position, court_number, scraped_at);

CREATE TABLE IF NOT EXISTS case_statistics (
	case_number       TEXT PRIMARY KEY,
	first_seen        INTEGER NOT NULL,
	last_seen         INTEGER NOT NULL,
	total_appearances INTEGER NOT NULL DEFAULT 0,
	courts_json       TEXT NOT NULL DEFAULT '[]',
	judges_json       TEXT NOT NULL DEFAULT '[]',
	status_history_json TEXT NOT NULL DEFAULT '[]',
	watch_count       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notification_log (
	id                TEXT PRIMARY KEY,
	device_id         TEXT NOT NULL,
	case_number       TEXT NOT NULL,
	notification_type TEXT NOT NULL,
	court_number      TEXT NOT NULL DEFAULT '',
	success           INTEGER NOT NULL,
	error_message     TEXT NOT NULL DEFAULT '',
	sent_at           INTEGER NOT NULL
);
-- Not a uniqueness constraint: push de-duplication is cooldown-based and
-- lives in watchlist state (spec §4.E); this index only speeds up the
-- "has this already been sent" lookups. Rows are never expired.
CREATE INDEX IF NOT EXISTS idx_notification_log_dedup
	ON notification_log(device_id, case_number, notification_type, court_number);

CREATE TABLE IF NOT EXISTS devices (
	device_id   TEXT PRIMARY KEY,
	push_token  TEXT NOT NULL DEFAULT '',
	active      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS court_snapshots (
	id         TEXT PRIMARY KEY,
	data_json  TEXT NOT NULL,
	taken_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_court_snapshots_time ON court_snapshots(taken_at DESC);
`

// ApplySchema creates all tables and indexes on the given database. Safe to
// call repeatedly — every statement is IF NOT EXISTS.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
