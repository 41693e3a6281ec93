package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema creates every table the service needs. It is idempotent.
//
// The (venue_id, date, hour) and (event_id, user_id) unique constraints back
// the booking and join invariants even if a caller bypasses the row locks.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS venues (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	capacity   INTEGER NOT NULL CHECK (capacity > 0),
	first_hour SMALLINT NOT NULL CHECK (first_hour BETWEEN 0 AND 23),
	last_hour  SMALLINT NOT NULL CHECK (last_hour BETWEEN 0 AND 23),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
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
	date          DATE,
	location_name TEXT,
	status        TEXT NOT NULL DEFAULT 'Open' CHECK (status IN ('Open', 'Closed', 'Cancelled')),
	starts_at     TIMESTAMPTZ NOT NULL,
	ends_at       TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK ((venue_id IS NULL) = (date IS NULL)),
	CHECK (venue_id IS NULL OR location_name IS NULL)
);

CREATE INDEX IF NOT EXISTS events_type_idx ON events (type_id);
CREATE INDEX IF NOT EXISTS events_group_idx ON events (group_id);

CREATE TABLE IF NOT EXISTS slot_reservations (
	venue_id   TEXT NOT NULL REFERENCES venues(id),
	date       DATE NOT NULL,
	hour       SMALLINT NOT NULL CHECK (hour BETWEEN 0 AND 23),
	event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (venue_id, date, hour)
);

CREATE INDEX IF NOT EXISTS slot_reservations_event_idx ON slot_reservations (event_id);

CREATE TABLE IF NOT EXISTS participations (
	id        TEXT PRIMARY KEY,
	event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
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

// Migrate applies PostgresSchema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
