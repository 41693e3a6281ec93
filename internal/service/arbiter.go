package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

// Arbiter commits venue-hour reservations all-or-nothing.
//
// ─────────────────────────────────────────────────────────────────────────────
// CHECK-THEN-ACT
// ─────────────────────────────────────────────────────────────────────────────
//
// The client shows availability, the user picks hours, then submits. Two users
// looking at the same grid both see 14:00 free:
//
//	request A: availability → 14 free
//	request B: availability → 14 free
//	request A: INSERT (V1, 2025-11-28, 14)
//	request B: INSERT (V1, 2025-11-28, 14)   → double booking without a guard
//
// reserve re-reads the requested cells after taking the venue/date lock, in
// the same transaction that inserts them. A second transaction for the same
// venue/date waits on the lock, then sees the first one's committed rows and
// fails with a SlotConflictError naming exactly the contested hours. The
// (venue_id, date, hour) key is the last line of defence.
// ─────────────────────────────────────────────────────────────────────────────
type Arbiter struct {
	base
}

// reserve claims hours for eventID inside tx. hours must already be
// normalised and inside the venue's range; the event row must exist.
func (a *Arbiter) reserve(ctx context.Context, tx repository.Tx, venueID, date string, hours []int, eventID string) ([]model.SlotReservation, error) {
	if err := tx.LockVenueDate(ctx, venueID, date); err != nil {
		return nil, err
	}

	taken, err := tx.ReservedAmong(ctx, venueID, date, hours)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		conflict := &SlotConflictError{VenueID: venueID, Date: date}
		for _, r := range taken {
			conflict.Hours = append(conflict.Hours, r.Hour)
		}
		conflict.Hours = model.NormalizeHours(conflict.Hours)
		return nil, conflict
	}

	now := a.clock()
	rs := make([]model.SlotReservation, len(hours))
	for i, h := range hours {
		rs[i] = model.SlotReservation{VenueID: venueID, Date: date, Hour: h, EventID: eventID, CreatedAt: now}
	}
	if err := tx.InsertReservations(ctx, rs); err != nil {
		return nil, fmt.Errorf("reserve slots: %w", err)
	}
	return rs, nil
}

// ReserveSlots adds venue hours to an existing event. The event must not be
// cancelled, and if it already books a venue it must be the same venue and
// date. Either every hour is reserved or none is. The event's window is
// recomputed from all hours it holds afterwards.
func (a *Arbiter) ReserveSlots(ctx context.Context, venueID, date string, hours []int, eventID string) ([]model.SlotReservation, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		return nil, invalid("at least one hour is required")
	}

	var rs []model.SlotReservation
	err = a.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		e, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("event", eventID)
			}
			return err
		}
		if e.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if e.HasBooking() && (*e.VenueID != venueID || *e.Date != date) {
			return invalid("event %s already books venue %s on %s", eventID, *e.VenueID, *e.Date)
		}

		v, err := tx.GetVenue(ctx, venueID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("venue", venueID)
			}
			return err
		}
		if e.Capacity > v.Capacity {
			return invalid("event capacity %d exceeds venue %s capacity %d", e.Capacity, v.ID, v.Capacity)
		}
		normalized, err := checkHours(v, hours)
		if err != nil {
			return err
		}

		if rs, err = a.reserve(ctx, tx, venueID, date, normalized, eventID); err != nil {
			return err
		}

		held, err := a.heldHours(ctx, tx, v, date, eventID)
		if err != nil {
			return err
		}
		startsAt, endsAt := a.venueWindow(day, held)
		return tx.SetEventBooking(ctx, eventID, venueID, date, startsAt, endsAt)
	})
	if err != nil {
		return nil, classify("reserve slots", err)
	}

	a.publish(ctx, model.Notification{
		Kind:    model.NotifySlotsReserved,
		EventID: eventID,
		VenueID: venueID,
		Date:    date,
		Hours:   reservedHours(rs),
		At:      a.clock(),
	})
	return rs, nil
}

// heldHours returns every hour eventID holds at venue v on date, ascending.
func (a *Arbiter) heldHours(ctx context.Context, tx repository.Tx, v *model.Venue, date, eventID string) ([]int, error) {
	all := make([]int, 0, v.LastHour-v.FirstHour+1)
	for h := v.FirstHour; h <= v.LastHour; h++ {
		all = append(all, h)
	}
	rs, err := tx.ReservedAmong(ctx, v.ID, date, all)
	if err != nil {
		return nil, err
	}
	var held []int
	for _, r := range rs {
		if r.EventID == eventID {
			held = append(held, r.Hour)
		}
	}
	return model.NormalizeHours(held), nil
}

func reservedHours(rs []model.SlotReservation) []int {
	hours := make([]int, len(rs))
	for i, r := range rs {
		hours[i] = r.Hour
	}
	return hours
}
