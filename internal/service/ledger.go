package service

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/google/uuid"
)

// Ledger admits participants without ever exceeding an event's capacity.
//
// Join locks the event row first, so joins and cancellations of one event run
// one at a time. The count it compares against capacity is read after the
// lock, and the insert plus the Open→Closed transition for the last seat
// commit together: a later joiner can never observe Open with no seat left.
type Ledger struct {
	base
}

// Join registers userID for eventID.
func (l *Ledger) Join(ctx context.Context, eventID, userID string) error {
	if eventID == "" || userID == "" {
		return invalid("event id and user id are required")
	}

	var closed bool
	err := l.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		e, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("event", eventID)
			}
			return err
		}

		dup, err := tx.HasParticipant(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if dup {
			return ErrAlreadyJoined
		}

		if !e.Status.Joinable() {
			// A host-closed event is closed; a filled one is full.
			if e.Status == model.StatusClosed && e.IsFull() {
				return ErrEventFull
			}
			return ErrEventClosed
		}

		if e.GroupID != nil {
			member, err := tx.IsMember(ctx, userID, *e.GroupID)
			if err != nil {
				return err
			}
			if !member {
				return ErrGroupRestricted
			}
		}

		if e.IsFull() {
			return ErrEventFull
		}

		err = tx.InsertParticipant(ctx, &model.Participation{
			ID:       uuid.New().String(),
			EventID:  eventID,
			UserID:   userID,
			JoinedAt: l.clock(),
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyJoined
		}
		if err != nil {
			return err
		}

		if e.Participants+1 >= e.Capacity {
			closed = true
			return tx.UpdateEventStatus(ctx, eventID, model.StatusClosed)
		}
		return nil
	})
	if err != nil {
		return classify("join event", err)
	}

	now := l.clock()
	ns := []model.Notification{{Kind: model.NotifyEventJoined, EventID: eventID, UserID: userID, At: now}}
	if closed {
		ns = append(ns, model.Notification{Kind: model.NotifyEventClosed, EventID: eventID, At: now})
	}
	l.publish(ctx, ns...)
	return nil
}

// Participants lists the event's participation records in join order.
func (l *Ledger) Participants(ctx context.Context, eventID string) ([]model.Participation, error) {
	if _, err := l.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("event", eventID)
		}
		return nil, classify("get event", err)
	}
	ps, err := l.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, classify("list participants", err)
	}
	if ps == nil {
		ps = []model.Participation{}
	}
	return ps, nil
}
