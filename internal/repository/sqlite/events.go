package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

const eventColumns = `e.id, e.title, e.type_id, e.content, e.capacity, e.owner_id,
	e.group_id, e.venue_id, e.date, e.location_name,
	e.status, e.starts_at, e.ends_at, e.created_at`

const participantCount = `(SELECT COUNT(*) FROM participations p WHERE p.event_id = e.id)`

// eventDest returns scan targets matching eventColumns.
func eventDest(e *model.Event) []any {
	return []any{
		&e.ID, &e.Title, &e.TypeID, &e.Content, &e.Capacity, &e.OwnerID,
		&e.GroupID, &e.VenueID, &e.Date, &e.LocationName,
		&e.Status, &e.StartsAt, &e.EndsAt, &e.CreatedAt,
	}
}

// InsertEvent creates the event row.
func (t *tx) InsertEvent(ctx context.Context, e *model.Event) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO events (id, title, type_id, content, capacity, owner_id, group_id,
		                     venue_id, date, location_name, status, starts_at, ends_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.TypeID, e.Content, e.Capacity, e.OwnerID, e.GroupID,
		e.VenueID, e.Date, e.LocationName, string(e.Status), e.StartsAt, e.EndsAt, e.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert event", err)
	}
	return nil
}

// LockEvent loads the event inside the transaction. The single connection
// already excludes concurrent writers, so no explicit row lock is taken.
func (t *tx) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := t.q.QueryRowContext(ctx,
		`SELECT `+eventColumns+`, `+participantCount+`
		 FROM events e WHERE e.id = ?`,
		id,
	).Scan(append(eventDest(&e), &e.Participants)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return &e, nil
}

func (t *tx) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateEventStatus sets the event status.
func (t *tx) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	return t.exec(ctx, "update event status",
		`UPDATE events SET status = ? WHERE id = ?`, string(status), id)
}

// SetEventBooking points the event at a venue, date and window, clearing
// any off-campus location.
func (t *tx) SetEventBooking(ctx context.Context, id, venueID, date string, startsAt, endsAt time.Time) error {
	return t.exec(ctx, "set event booking",
		`UPDATE events
		 SET venue_id = ?, date = ?, location_name = NULL, starts_at = ?, ends_at = ?
		 WHERE id = ?`,
		venueID, date, startsAt, endsAt, id)
}

// DeleteEvent removes the event; reservations and participations cascade.
func (t *tx) DeleteEvent(ctx context.Context, id string) error {
	return t.exec(ctx, "delete event", `DELETE FROM events WHERE id = ?`, id)
}

// GetEvent returns one event with its participant count and reserved hours.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+`, `+participantCount+`
		 FROM events e WHERE e.id = ?`,
		id,
	).Scan(append(eventDest(&e), &e.Participants)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT hour FROM slot_reservations WHERE event_id = ? ORDER BY hour`, id)
	if err != nil {
		return nil, fmt.Errorf("event hours: %w", err)
	}
	if e.Hours, err = collectHours(rows); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns events matching f, newest first.
func (s *Store) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.TypeID != "" {
		where, args = append(where, "e.type_id = ?"), append(args, f.TypeID)
	}
	if f.GroupID != "" {
		where, args = append(where, "e.group_id = ?"), append(args, f.GroupID)
	}
	if f.Status != "" {
		where, args = append(where, "e.status = ?"), append(args, string(f.Status))
	}

	query := `SELECT ` + eventColumns + `, ` + participantCount + ` FROM events e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.created_at DESC, e.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(append(eventDest(&e), &e.Participants)...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
