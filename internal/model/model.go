// Package model defines the core domain types for the campus event booking system.
package model

import (
	"slices"
	"time"
)

// DateLayout is the calendar-day format used for venue bookings.
const DateLayout = "2006-01-02"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusOpen      EventStatus = "Open"
	StatusClosed    EventStatus = "Closed"
	StatusCancelled EventStatus = "Cancelled"
)

// Joinable reports whether an event in this status still admits participants.
func (s EventStatus) Joinable() bool {
	return s == StatusOpen
}

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Venue is an on-campus space that can be booked by the hour.
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	FirstHour int       `json:"firstHour"`
	LastHour  int       `json:"lastHour"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bookable reports whether hour falls within the venue's bookable range.
func (v *Venue) Bookable(hour int) bool {
	return hour >= v.FirstHour && hour <= v.LastHour
}

// SlotReservation records that one venue hour on one date belongs to an event.
type SlotReservation struct {
	VenueID   string    `json:"venueId"`
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	EventID   string    `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is a gathering created by a host, optionally holding venue hours.
type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	TypeID       string      `json:"typeId"`
	Content      string      `json:"content"`
	Capacity     int         `json:"capacity"`
	OwnerID      string      `json:"ownerId"`
	GroupID      *string     `json:"groupId,omitempty"`
	VenueID      *string     `json:"venueId,omitempty"`
	Date         *string     `json:"date,omitempty"`
	Hours        []int       `json:"hours,omitempty"`
	LocationName *string     `json:"locationName,omitempty"`
	Status       EventStatus `json:"status"`
	StartsAt     time.Time   `json:"startsAt"`
	EndsAt       time.Time   `json:"endsAt"`
	Participants int         `json:"participants"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// IsFull returns true when no places remain.
func (e *Event) IsFull() bool {
	return e.Participants >= e.Capacity
}

// HasBooking reports whether the event holds (or held) a venue booking.
func (e *Event) HasBooking() bool {
	return e.VenueID != nil && e.Date != nil
}

// Participation records a user's membership in an event.
type Participation struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// EventFilter narrows event listings. Empty fields match everything.
type EventFilter struct {
	TypeID  string
	GroupID string
	Status  EventStatus
}

// Availability splits a requested hour set into free and taken hours.
type Availability struct {
	VenueID     string `json:"venueId"`
	Date        string `json:"date"`
	Free        []int  `json:"free"`
	Conflicting []int  `json:"conflicting"`
}

// VenueDay lists the booked hours of a venue on one date.
type VenueDay struct {
	VenueID     string `json:"venueId"`
	Date        string `json:"date"`
	BookedHours []int  `json:"bookedHours"`
}

// CancellationSummary describes what a cancellation released and whom it affects.
type CancellationSummary struct {
	EventID              string      `json:"eventId"`
	Status               EventStatus `json:"status"`
	VenueID              *string     `json:"venueId,omitempty"`
	Date                 *string     `json:"date,omitempty"`
	ReleasedHours        []int       `json:"releasedHours"`
	AffectedParticipants int         `json:"affectedParticipants"`
	CancelledAt          time.Time   `json:"cancelledAt"`
}

// NotificationKind names a change pushed to notification sinks.
type NotificationKind string

const (
	NotifySlotsReserved  NotificationKind = "slots.reserved"
	NotifySlotsReleased  NotificationKind = "slots.released"
	NotifyEventCancelled NotificationKind = "event.cancelled"
	NotifyEventClosed    NotificationKind = "event.closed"
	NotifyEventJoined    NotificationKind = "event.joined"
)

// Notification is the payload handed to notification sinks after a commit.
type Notification struct {
	Kind                 NotificationKind `json:"kind"`
	EventID              string           `json:"eventId"`
	VenueID              string           `json:"venueId,omitempty"`
	Date                 string           `json:"date,omitempty"`
	Hours                []int            `json:"hours,omitempty"`
	UserID               string           `json:"userId,omitempty"`
	AffectedParticipants int              `json:"affectedParticipants,omitempty"`
	At                   time.Time        `json:"at"`
}

// Topic returns the venue/date key used to route slot notifications.
func (n Notification) Topic() string {
	if n.VenueID == "" {
		return ""
	}
	return VenueTopic(n.VenueID, n.Date)
}

// VenueTopic builds the subscription key for a venue on a date.
func VenueTopic(venueID, date string) string {
	return venueID + "/" + date
}

// NormalizeHours returns the distinct hours in ascending order.
func NormalizeHours(hours []int) []int {
	out := slices.Clone(hours)
	slices.Sort(out)
	return slices.Compact(out)
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// VenueBooking is the on-campus part of an event creation request.
type VenueBooking struct {
	VenueID string `json:"venueId" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Hours   []int  `json:"hours" validate:"required,min=1,dive,min=0,max=23"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string        `json:"title" validate:"required,max=200"`
	TypeID       string        `json:"typeId" validate:"required"`
	Content      string        `json:"content" validate:"max=5000"`
	Capacity     int           `json:"capacity" validate:"required,min=1,max=100000"`
	GroupID      *string       `json:"groupId,omitempty"`
	Venue        *VenueBooking `json:"venue,omitempty" validate:"required_without=LocationName,excluded_with=LocationName"`
	LocationName *string       `json:"locationName,omitempty" validate:"required_without=Venue"`
	StartsAt     *time.Time    `json:"startsAt,omitempty"`
	EndsAt       *time.Time    `json:"endsAt,omitempty"`
	HostUserID   string        `json:"hostUserId" validate:"required"`
}

// CreateEventResponse is returned after an event is created.
type CreateEventResponse struct {
	EventID string `json:"eventId"`
}

// CreateVenueRequest is the payload for registering a venue.
type CreateVenueRequest struct {
	ActorID   string `json:"actorId" validate:"required"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name" validate:"required,max=200"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
	FirstHour *int   `json:"firstHour,omitempty" validate:"omitempty,min=0,max=23"`
	LastHour  *int   `json:"lastHour,omitempty" validate:"omitempty,min=0,max=23"`
}

// CheckAvailabilityRequest asks which of the given hours are currently free.
type CheckAvailabilityRequest struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Hours []int  `json:"hours" validate:"omitempty,dive,min=0,max=23"`
}

// ReserveSlotsRequest adds venue hours to an existing event.
type ReserveSlotsRequest struct {
	VenueID string `json:"venueId" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Hours   []int  `json:"hours" validate:"required,min=1,dive,min=0,max=23"`
}

// JoinRequest is the payload for joining an event.
type JoinRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// JoinResponse confirms a successful join.
type JoinResponse struct {
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
}

// ActorRequest identifies who performs a host/admin action.
type ActorRequest struct {
	ActorID string `json:"actorId" validate:"required"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	Code             string `json:"code,omitempty"`
	ConflictingHours []int  `json:"conflictingHours,omitempty"`
}
