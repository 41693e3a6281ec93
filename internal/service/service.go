// Package service implements the booking and capacity-arbitration core:
// the slot model, availability checks, the booking arbiter, the capacity
// ledger and the cancellation coordinator, plus the event and venue
// orchestration built on them.
//
// Every mutation of the slot and participation tables goes through Arbiter,
// Ledger, Coordinator or EventService, each inside one repository
// transaction. Nothing is retried on the caller's behalf.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

// Notifier receives change notifications after a transaction commits.
type Notifier interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Options carries the collaborators shared by the components.
type Options struct {
	Notifier Notifier
	Logger   *slog.Logger
	// Location is the campus time zone used to turn venue hours into
	// timestamps. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

type base struct {
	store    repository.Store
	notifier Notifier
	log      *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

func newBase(store repository.Store, opts Options) base {
	b := base{
		store:    store,
		notifier: opts.Notifier,
		log:      opts.Logger,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b *base) clock() time.Time {
	return b.now().UTC()
}

// publish hands committed changes to the notifier. Delivery failures are
// logged only; the change itself is already durable.
func (b *base) publish(ctx context.Context, ns ...model.Notification) {
	if b.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, n := range ns {
		if err := b.notifier.Publish(ctx, n); err != nil {
			b.log.Warn("notification not delivered",
				"kind", n.Kind, "event_id", n.EventID, "err", err)
		}
	}
}

// venueWindow spans the first to the end of the last booked hour in the
// campus time zone. hours must be ascending and non-empty.
func (b *base) venueWindow(day time.Time, hours []int) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, hours[0], 0, 0, 0, b.loc)
	end := time.Date(y, m, d, hours[len(hours)-1]+1, 0, 0, 0, b.loc)
	return start.UTC(), end.UTC()
}

// Booking bundles every component over one store.
type Booking struct {
	Slots        *Slots
	Availability *AvailabilityChecker
	Arbiter      *Arbiter
	Ledger       *Ledger
	Coordinator  *Coordinator
	Events       *EventService
	Venues       *VenueService
}

// New wires all components over store.
func New(store repository.Store, opts Options) *Booking {
	b := newBase(store, opts)
	slots := &Slots{base: b}
	arbiter := &Arbiter{base: b}
	return &Booking{
		Slots:        slots,
		Availability: &AvailabilityChecker{base: b, slots: slots},
		Arbiter:      arbiter,
		Ledger:       &Ledger{base: b},
		Coordinator:  &Coordinator{base: b},
		Events:       &EventService{base: b, arbiter: arbiter},
		Venues:       &VenueService{base: b},
	}
}

// parseDate validates a YYYY-MM-DD calendar date.
func parseDate(date string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, invalid("date %q must be YYYY-MM-DD", date)
	}
	return d, nil
}

// checkHours normalises hours and verifies each lies in the venue's range.
func checkHours(v *model.Venue, hours []int) ([]int, error) {
	hours = model.NormalizeHours(hours)
	var outside []int
	for _, h := range hours {
		if !v.Bookable(h) {
			outside = append(outside, h)
		}
	}
	if len(outside) > 0 {
		return nil, invalid("hours %v are outside venue %s bookable range %d-%d",
			outside, v.ID, v.FirstHour, v.LastHour)
	}
	return hours, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, repository.ErrNotFound)
}

func releasedNotification(eventID, venueID, date string, hours []int, at time.Time) model.Notification {
	return model.Notification{
		Kind:    model.NotifySlotsReleased,
		EventID: eventID,
		VenueID: venueID,
		Date:    date,
		Hours:   hours,
		At:      at,
	}
}
