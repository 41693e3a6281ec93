package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `e.id, e.title, e.type_id, e.content, e.capacity, e.owner_id,
	e.group_id, e.venue_id, to_char(e.date, 'YYYY-MM-DD'), e.location_name,
	e.status, e.starts_at, e.ends_at, e.created_at`

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
	var date any
	if e.Date != nil {
		d, err := civil(*e.Date)
		if err != nil {
			return err
		}
		date = d
	}
	_, err := t.q.Exec(ctx,
		`INSERT INTO events (id, title, type_id, content, capacity, owner_id, group_id,
		                     venue_id, date, location_name, status, starts_at, ends_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.Title, e.TypeID, e.Content, e.Capacity, e.OwnerID, e.GroupID,
		e.VenueID, date, e.LocationName, string(e.Status), e.StartsAt, e.EndsAt, e.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert event", err)
	}
	return nil
}

// LockEvent acquires an exclusive row-level lock on the event.
//
// SELECT … FOR UPDATE blocks any other transaction attempting the same lock
// until this one commits or rolls back, so the participant count read
// afterwards cannot change underneath the caller.
func (t *tx) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := t.q.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM events e
		 WHERE e.id = $1
		 FOR UPDATE`,
		id,
	).Scan(eventDest(&e)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	if e.Participants, err = t.countParticipants(ctx, id); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEventStatus sets the event status.
func (t *tx) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE events SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetEventBooking points the event at a venue, date and window, clearing
// any off-campus location.
func (t *tx) SetEventBooking(ctx context.Context, id, venueID, date string, startsAt, endsAt time.Time) error {
	d, err := civil(date)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx,
		`UPDATE events
		 SET venue_id = $2, date = $3, location_name = NULL, starts_at = $4, ends_at = $5
		 WHERE id = $1`,
		id, venueID, d, startsAt, endsAt,
	)
	if err != nil {
		return fmt.Errorf("set event booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event; reservations and participations cascade.
func (t *tx) DeleteEvent(ctx context.Context, id string) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetEvent returns one event with its participant count and reserved hours.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.QueryRow(ctx,
		`SELECT `+eventColumns+`,
		        (SELECT COUNT(*) FROM participations p WHERE p.event_id = e.id),
		        COALESCE((SELECT array_agg(r.hour ORDER BY r.hour)
		                  FROM slot_reservations r WHERE r.event_id = e.id), '{}')
		 FROM events e
		 WHERE e.id = $1`,
		id,
	).Scan(append(eventDest(&e), &e.Participants, &e.Hours)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// ListEvents returns events matching f, newest first.
func (s *Store) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.TypeID != "" {
		add("e.type_id = $%d", f.TypeID)
	}
	if f.GroupID != "" {
		add("e.group_id = $%d", f.GroupID)
	}
	if f.Status != "" {
		add("e.status = $%d", string(f.Status))
	}

	query := `SELECT ` + eventColumns + `,
	                 (SELECT COUNT(*) FROM participations p WHERE p.event_id = e.id)
	          FROM events e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.created_at DESC, e.id"

	rows, err := s.db.Query(ctx, query, args...)
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
