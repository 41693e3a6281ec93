package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/jackc/pgx/v5"
)

// OccupiedHours returns the reserved hours of a venue on a date.
func (s *Store) OccupiedHours(ctx context.Context, venueID, date string) ([]int, error) {
	d, err := civil(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT hour FROM slot_reservations
		 WHERE venue_id = $1 AND date = $2
		 ORDER BY hour`,
		venueID, d,
	)
	if err != nil {
		return nil, fmt.Errorf("occupied hours: %w", err)
	}
	return collectHours(rows)
}

func collectHours(rows pgx.Rows) ([]int, error) {
	defer rows.Close()
	hours := []int{}
	for rows.Next() {
		var h int
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan hour: %w", err)
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

// LockVenueDate takes a transaction-scoped advisory lock on venue/date. It
// blocks until any other transaction holding the same key ends.
func (t *tx) LockVenueDate(ctx context.Context, venueID, date string) error {
	_, err := t.q.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		model.VenueTopic(venueID, date),
	)
	if err != nil {
		return fmt.Errorf("lock venue date: %w", err)
	}
	return nil
}

// ReservedAmong returns the existing reservations for the requested hours.
func (t *tx) ReservedAmong(ctx context.Context, venueID, date string, hours []int) ([]model.SlotReservation, error) {
	d, err := civil(date)
	if err != nil {
		return nil, err
	}
	rows, err := t.q.Query(ctx,
		`SELECT venue_id, hour, event_id, created_at
		 FROM slot_reservations
		 WHERE venue_id = $1 AND date = $2 AND hour = ANY($3)
		 ORDER BY hour`,
		venueID, d, hours,
	)
	if err != nil {
		return nil, fmt.Errorf("reserved hours: %w", err)
	}
	defer rows.Close()

	var out []model.SlotReservation
	for rows.Next() {
		r := model.SlotReservation{Date: date}
		if err := rows.Scan(&r.VenueID, &r.Hour, &r.EventID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertReservations inserts all rows with one batched round trip.
func (t *tx) InsertReservations(ctx context.Context, rs []model.SlotReservation) error {
	batch := &pgx.Batch{}
	for _, r := range rs {
		d, err := civil(r.Date)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO slot_reservations (venue_id, date, hour, event_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.VenueID, d, r.Hour, r.EventID, r.CreatedAt,
		)
	}

	results := t.q.SendBatch(ctx, batch)
	for range rs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return mapWriteErr("insert reservation", err)
		}
	}
	if err := results.Close(); err != nil {
		return mapWriteErr("insert reservations", err)
	}
	return nil
}

// ReleaseReservations deletes the event's reservations and returns their hours.
func (t *tx) ReleaseReservations(ctx context.Context, eventID string) ([]int, error) {
	rows, err := t.q.Query(ctx,
		`DELETE FROM slot_reservations WHERE event_id = $1
		 RETURNING hour`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("release reservations: %w", err)
	}
	hours, err := collectHours(rows)
	if err != nil {
		return nil, err
	}
	return model.NormalizeHours(hours), nil
}
