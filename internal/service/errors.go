package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

// Join outcomes. None of them indicates a system fault.
var (
	ErrAlreadyJoined   = errors.New("already joined this event")
	ErrEventFull       = errors.New("event is full")
	ErrEventClosed     = errors.New("event is not accepting participants")
	ErrGroupRestricted = errors.New("event is restricted to members of its group")
)

// Cancellation and host-action outcomes.
var (
	ErrForbidden        = errors.New("only the host or an administrator may do this")
	ErrAlreadyCancelled = errors.New("event is already cancelled")
)

// ErrVenueExists is returned when a venue ID is already registered.
var ErrVenueExists = errors.New("venue already exists")

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ErrOutcomeUnknown wraps storage and transport failures. The operation may or
// may not have committed; callers must re-query state before retrying.
var ErrOutcomeUnknown = errors.New("outcome unknown, re-query state before retrying")

// SlotConflictError reports requested hours that another event already holds.
type SlotConflictError struct {
	VenueID string
	Date    string
	Hours   []int
}

func (e *SlotConflictError) Error() string {
	hs := make([]string, len(e.Hours))
	for i, h := range e.Hours {
		hs[i] = fmt.Sprintf("%02d:00", h)
	}
	return fmt.Sprintf("venue %s on %s is already booked at %s", e.VenueID, e.Date, strings.Join(hs, ", "))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// expected reports whether err is a caller-facing outcome rather than an
// infrastructure failure.
func expected(err error) bool {
	var conflict *SlotConflictError
	switch {
	case errors.As(err, &conflict),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrEventFull),
		errors.Is(err, ErrEventClosed),
		errors.Is(err, ErrGroupRestricted),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrVenueExists),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrOutcomeUnknown),
		errors.Is(err, repository.ErrNotFound):
		return true
	}
	return false
}

// classify passes expected outcomes through and marks everything else as
// outcome-unknown.
func classify(op string, err error) error {
	if err == nil || expected(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrOutcomeUnknown, err)
}
