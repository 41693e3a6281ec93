// Package repository defines the storage contract for the booking system.
//
// All writes to the slot and participation tables happen inside a Tx opened by
// Store.InTx. Implementations must make the lock methods block concurrent
// transactions touching the same venue/date or event until commit or rollback.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

// Store is the persisted state shared by all request workers.
type Store interface {
	Reader

	// InTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned unchanged.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the underlying connections.
	Close()
}

// Reader exposes non-locking reads. Results are snapshots and may be stale by
// the time the caller acts on them.
type Reader interface {
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
	ListVenues(ctx context.Context) ([]model.Venue, error)

	// OccupiedHours returns the reserved hours of a venue on a date, ascending.
	OccupiedHours(ctx context.Context, venueID, date string) ([]int, error)

	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	ListParticipants(ctx context.Context, eventID string) ([]model.Participation, error)
}

// Tx is a unit of work holding locks until it ends.
type Tx interface {
	// LockVenueDate serialises slot changes for one venue on one date.
	LockVenueDate(ctx context.Context, venueID, date string) error
	// InsertVenue returns ErrDuplicate if the venue ID is taken.
	InsertVenue(ctx context.Context, v *model.Venue) error
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
	// ReservedAmong returns the existing reservations for the given hours.
	ReservedAmong(ctx context.Context, venueID, date string, hours []int) ([]model.SlotReservation, error)
	// InsertReservations returns ErrDuplicate if any cell is already taken.
	InsertReservations(ctx context.Context, rs []model.SlotReservation) error
	// ReleaseReservations deletes every reservation of the event and returns
	// the released hours, ascending.
	ReleaseReservations(ctx context.Context, eventID string) ([]int, error)

	InsertEvent(ctx context.Context, e *model.Event) error
	// LockEvent loads the event and holds a row lock on it. The returned
	// event has Participants filled in.
	LockEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error
	// SetEventBooking records the venue, date and time window an event
	// books.
	SetEventBooking(ctx context.Context, id, venueID, date string, startsAt, endsAt time.Time) error
	DeleteEvent(ctx context.Context, id string) error

	HasParticipant(ctx context.Context, eventID, userID string) (bool, error)
	// InsertParticipant returns ErrDuplicate if the user already joined.
	InsertParticipant(ctx context.Context, p *model.Participation) error

	IsMember(ctx context.Context, userID, groupID string) (bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
