package service

import (
	"context"
	"slices"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
)

// AvailabilityChecker answers advisory availability questions. A free hour is
// only free at the instant of the check; Arbiter makes the binding decision.
type AvailabilityChecker struct {
	base
	slots *Slots
}

// Check splits hours into free and conflicting. Empty input is all-free.
func (c *AvailabilityChecker) Check(ctx context.Context, venueID, date string, hours []int) (*model.Availability, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	out := &model.Availability{VenueID: venueID, Date: date, Free: []int{}, Conflicting: []int{}}
	if len(hours) == 0 {
		return out, nil
	}

	v, err := c.slots.venue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	hours, err = checkHours(v, hours)
	if err != nil {
		return nil, err
	}

	occupied, err := c.store.OccupiedHours(ctx, venueID, date)
	if err != nil {
		return nil, classify("occupied hours", err)
	}
	for _, h := range hours {
		if slices.Contains(occupied, h) {
			out.Conflicting = append(out.Conflicting, h)
		} else {
			out.Free = append(out.Free, h)
		}
	}
	return out, nil
}

// VenueAvailability lists the booked hours of a venue on date.
func (c *AvailabilityChecker) VenueAvailability(ctx context.Context, venueID, date string) (*model.VenueDay, error) {
	hours, err := c.slots.OccupiedHours(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	return &model.VenueDay{VenueID: venueID, Date: date, BookedHours: hours}, nil
}
