package service

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

// Coordinator cancels events: the status change, the slot release and the
// participant count commit as one unit. Participation records are kept as
// history.
type Coordinator struct {
	base
}

// authorize returns ErrForbidden unless actorID hosts e or is an administrator.
func authorize(ctx context.Context, tx repository.Tx, e *model.Event, actorID string) error {
	if actorID == e.OwnerID {
		return nil
	}
	admin, err := tx.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	return nil
}

// CancelEvent calls off an Open or Closed event.
func (c *Coordinator) CancelEvent(ctx context.Context, eventID, actorID string) (*model.CancellationSummary, error) {
	if eventID == "" || actorID == "" {
		return nil, invalid("event id and actor id are required")
	}

	var summary *model.CancellationSummary
	err := c.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		e, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("event", eventID)
			}
			return err
		}
		if err := authorize(ctx, tx, e, actorID); err != nil {
			return err
		}
		if e.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}

		if e.HasBooking() {
			if err := tx.LockVenueDate(ctx, *e.VenueID, *e.Date); err != nil {
				return err
			}
		}
		released, err := tx.ReleaseReservations(ctx, eventID)
		if err != nil {
			return err
		}
		if err := tx.UpdateEventStatus(ctx, eventID, model.StatusCancelled); err != nil {
			return err
		}

		if released == nil {
			released = []int{}
		}
		summary = &model.CancellationSummary{
			EventID:              eventID,
			Status:               model.StatusCancelled,
			VenueID:              e.VenueID,
			Date:                 e.Date,
			ReleasedHours:        released,
			AffectedParticipants: e.Participants,
			CancelledAt:          c.clock(),
		}
		return nil
	})
	if err != nil {
		return nil, classify("cancel event", err)
	}

	ns := []model.Notification{{
		Kind:                 model.NotifyEventCancelled,
		EventID:              eventID,
		AffectedParticipants: summary.AffectedParticipants,
		At:                   summary.CancelledAt,
	}}
	if len(summary.ReleasedHours) > 0 {
		ns = append(ns, releasedNotification(eventID, *summary.VenueID, *summary.Date, summary.ReleasedHours, summary.CancelledAt))
	}
	c.publish(ctx, ns...)
	return summary, nil
}
