package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// SQLiteSchema mirrors PostgresSchema for the embedded backend. Dates are
// stored as YYYY-MM-DD text.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS venues (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	capacity   INTEGER NOT NULL CHECK (capacity > 0),
	first_hour INTEGER NOT NULL CHECK (first_hour BETWEEN 0 AND 23),
	last_hour  INTEGER NOT NULL CHECK (last_hour BETWEEN 0 AND 23),
	created_at DATETIME NOT NULL,
	CHECK (first_hour <= last_hour)
);

CREATE TABLE IF NOT EXISTS events (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	type_id       TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	capacity      INTEGER NOT NULL CHECK (capacity > 0),
	owner_id      TEXT NOT NULL,
	group_id      TEXT,
	venue_id      TEXT REFERENCES venues(id),
	date          TEXT,
	location_name TEXT,
	status        TEXT NOT NULL DEFAULT 'Open' CHECK (status IN ('Open', 'Closed', 'Cancelled')),
	starts_at     DATETIME NOT NULL,
	ends_at       DATETIME NOT NULL,
	created_at    DATETIME NOT NULL,
	CHECK ((venue_id IS NULL) = (date IS NULL)),
	CHECK (venue_id IS NULL OR location_name IS NULL)
);

CREATE TABLE IF NOT EXISTS slot_reservations (
	venue_id   TEXT NOT NULL REFERENCES venues(id),
	date       TEXT NOT NULL,
	hour       INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
	event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (venue_id, date, hour)
);

CREATE INDEX IF NOT EXISTS slot_reservations_event_idx ON slot_reservations (event_id);

CREATE TABLE IF NOT EXISTS participations (
	id        TEXT PRIMARY KEY,
	event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	joined_at DATETIME NOT NULL,
	UNIQUE (event_id, user_id)
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS administrators (
	user_id TEXT PRIMARY KEY
);
`

// OpenSQLite opens (creating if needed) a SQLite database file and applies
// SQLiteSchema.
//
// SQLite allows a single writer, so the pool is capped at one connection:
// every transaction is serialised behind it, which is what gives the embedded
// backend its per-venue and per-event ordering.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}
