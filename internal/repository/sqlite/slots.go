package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
)

// OccupiedHours returns the reserved hours of a venue on a date.
func (s *Store) OccupiedHours(ctx context.Context, venueID, date string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hour FROM slot_reservations
		 WHERE venue_id = ? AND date = ?
		 ORDER BY hour`,
		venueID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("occupied hours: %w", err)
	}
	return collectHours(rows)
}

func collectHours(rows *sql.Rows) ([]int, error) {
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

// LockVenueDate is satisfied by the single-connection pool: the caller's
// transaction already excludes every other writer.
func (t *tx) LockVenueDate(ctx context.Context, venueID, date string) error {
	return ctx.Err()
}

// ReservedAmong returns the existing reservations for the requested hours.
func (t *tx) ReservedAmong(ctx context.Context, venueID, date string, hours []int) ([]model.SlotReservation, error) {
	if len(hours) == 0 {
		return nil, nil
	}
	args := []any{venueID, date}
	for _, h := range hours {
		args = append(args, h)
	}
	rows, err := t.q.QueryContext(ctx,
		`SELECT venue_id, date, hour, event_id, created_at
		 FROM slot_reservations
		 WHERE venue_id = ? AND date = ? AND hour IN (`+placeholders(len(hours))+`)
		 ORDER BY hour`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("reserved hours: %w", err)
	}
	defer rows.Close()

	var out []model.SlotReservation
	for rows.Next() {
		var r model.SlotReservation
		if err := rows.Scan(&r.VenueID, &r.Date, &r.Hour, &r.EventID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertReservations inserts every row; the first unique violation aborts.
func (t *tx) InsertReservations(ctx context.Context, rs []model.SlotReservation) error {
	stmt, err := t.q.PrepareContext(ctx,
		`INSERT INTO slot_reservations (venue_id, date, hour, event_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare reservation insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.VenueID, r.Date, r.Hour, r.EventID, r.CreatedAt); err != nil {
			return mapWriteErr("insert reservation", err)
		}
	}
	return nil
}

// ReleaseReservations deletes the event's reservations and returns their hours.
func (t *tx) ReleaseReservations(ctx context.Context, eventID string) ([]int, error) {
	rows, err := t.q.QueryContext(ctx,
		`SELECT hour FROM slot_reservations WHERE event_id = ? ORDER BY hour`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("released hours: %w", err)
	}
	hours, err := collectHours(rows)
	if err != nil {
		return nil, err
	}
	if _, err := t.q.ExecContext(ctx,
		`DELETE FROM slot_reservations WHERE event_id = ?`, eventID,
	); err != nil {
		return nil, fmt.Errorf("release reservations: %w", err)
	}
	return hours, nil
}
