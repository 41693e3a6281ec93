package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/google/uuid"
)

// EventService creates and manages events. Venue hours are claimed through
// the Arbiter inside the same transaction that inserts the event.
type EventService struct {
	base
	arbiter *Arbiter
}

// CreateEvent validates req, inserts the event, reserves its venue hours and
// enrolls the host, all in one transaction. On a slot collision nothing is
// written and a *SlotConflictError is returned.
func (s *EventService) CreateEvent(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := s.clock()
	e := &model.Event{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		TypeID:    req.TypeID,
		Content:   req.Content,
		Capacity:  req.Capacity,
		OwnerID:   req.HostUserID,
		GroupID:   req.GroupID,
		Status:    model.StatusOpen,
		CreatedAt: now,
	}
	if e.Title == "" {
		return nil, invalid("title is required")
	}
	if e.Capacity == 1 {
		// The host takes the only place.
		e.Status = model.StatusClosed
	}

	var hours []int
	if b := req.Venue; b != nil {
		day, err := parseDate(b.Date)
		if err != nil {
			return nil, err
		}
		hours = model.NormalizeHours(b.Hours)
		venueID, date := b.VenueID, b.Date
		e.VenueID, e.Date = &venueID, &date
		e.StartsAt, e.EndsAt = s.venueWindow(day, hours)
	} else {
		name := strings.TrimSpace(*req.LocationName)
		if name == "" {
			return nil, invalid("locationName is required")
		}
		if req.StartsAt == nil || req.EndsAt == nil {
			return nil, invalid("startsAt and endsAt are required for off-campus events")
		}
		e.LocationName = &name
		e.StartsAt, e.EndsAt = req.StartsAt.UTC(), req.EndsAt.UTC()
	}
	if req.StartsAt != nil {
		e.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		e.EndsAt = req.EndsAt.UTC()
	}
	if !e.EndsAt.After(e.StartsAt) {
		return nil, invalid("endsAt must be after startsAt")
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if e.HasBooking() {
			v, err := tx.GetVenue(ctx, *e.VenueID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return notFound("venue", *e.VenueID)
				}
				return err
			}
			if e.Capacity > v.Capacity {
				return invalid("event capacity %d exceeds venue %s capacity %d", e.Capacity, v.ID, v.Capacity)
			}
			if hours, err = checkHours(v, hours); err != nil {
				return err
			}
		}

		if err := tx.InsertEvent(ctx, e); err != nil {
			return err
		}
		if e.HasBooking() {
			if _, err := s.arbiter.reserve(ctx, tx, *e.VenueID, *e.Date, hours, e.ID); err != nil {
				return err
			}
		}
		return tx.InsertParticipant(ctx, &model.Participation{
			ID:       uuid.New().String(),
			EventID:  e.ID,
			UserID:   e.OwnerID,
			JoinedAt: now,
		})
	})
	if err != nil {
		return nil, classify("create event", err)
	}
	e.Hours = hours
	e.Participants = 1

	s.log.Info("event created", "event_id", e.ID, "owner_id", e.OwnerID, "status", e.Status)
	var ns []model.Notification
	if e.HasBooking() {
		ns = append(ns, model.Notification{
			Kind:    model.NotifySlotsReserved,
			EventID: e.ID,
			VenueID: *e.VenueID,
			Date:    *e.Date,
			Hours:   hours,
			At:      now,
		})
	}
	if e.Status == model.StatusClosed {
		ns = append(ns, model.Notification{Kind: model.NotifyEventClosed, EventID: e.ID, At: now})
	}
	s.publish(ctx, ns...)
	return e, nil
}

// GetEvent returns the event with its participant count and booked hours.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("event", id)
	}
	if err != nil {
		return nil, classify("get event", err)
	}
	return e, nil
}

// ListEvents returns events matching f, newest first.
func (s *EventService) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("unknown status %q", f.Status)
	}
	events, err := s.store.ListEvents(ctx, f)
	if err != nil {
		return nil, classify("list events", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// CloseEvent stops an Open event from taking new participants. Closing an
// already Closed event is a no-op.
func (s *EventService) CloseEvent(ctx context.Context, eventID, actorID string) error {
	if eventID == "" || actorID == "" {
		return invalid("event id and actor id are required")
	}

	var changed bool
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
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
		switch e.Status {
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		case model.StatusClosed:
			return nil
		}
		changed = true
		return tx.UpdateEventStatus(ctx, eventID, model.StatusClosed)
	})
	if err != nil {
		return classify("close event", err)
	}
	if changed {
		s.publish(ctx, model.Notification{Kind: model.NotifyEventClosed, EventID: eventID, At: s.clock()})
	}
	return nil
}

// DeleteEvent removes an event with its reservations and participation
// records. Only administrators may delete.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	if eventID == "" || actorID == "" {
		return invalid("event id and actor id are required")
	}

	var (
		released []int
		venueID  string
		date     string
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		e, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("event", eventID)
			}
			return err
		}
		admin, err := tx.IsAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbidden
		}

		if e.HasBooking() {
			venueID, date = *e.VenueID, *e.Date
			if err := tx.LockVenueDate(ctx, venueID, date); err != nil {
				return err
			}
		}
		if released, err = tx.ReleaseReservations(ctx, eventID); err != nil {
			return err
		}
		return tx.DeleteEvent(ctx, eventID)
	})
	if err != nil {
		return classify("delete event", err)
	}

	s.log.Info("event deleted", "event_id", eventID, "actor_id", actorID)
	if len(released) > 0 {
		s.publish(ctx, releasedNotification(eventID, venueID, date, released, s.clock()))
	}
	return nil
}
