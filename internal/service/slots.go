package service

import (
	"context"
	"errors"
	"slices"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
)

// Slots is a read-only view of a venue's occupied hour cells.
type Slots struct {
	base
}

func (s *Slots) venue(ctx context.Context, venueID string) (*model.Venue, error) {
	v, err := s.store.GetVenue(ctx, venueID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("venue", venueID)
	}
	return v, classify("get venue", err)
}

// OccupiedHours returns the reserved hours of the venue on date, ascending.
func (s *Slots) OccupiedHours(ctx context.Context, venueID, date string) ([]int, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if _, err := s.venue(ctx, venueID); err != nil {
		return nil, err
	}
	hours, err := s.store.OccupiedHours(ctx, venueID, date)
	if err != nil {
		return nil, classify("occupied hours", err)
	}
	return hours, nil
}

// IsFree reports whether hour is unreserved at the moment of the read.
func (s *Slots) IsFree(ctx context.Context, venueID, date string, hour int) (bool, error) {
	if _, err := parseDate(date); err != nil {
		return false, err
	}
	v, err := s.venue(ctx, venueID)
	if err != nil {
		return false, err
	}
	if !v.Bookable(hour) {
		return false, invalid("hour %d is outside venue %s bookable range %d-%d",
			hour, venueID, v.FirstHour, v.LastHour)
	}
	hours, err := s.store.OccupiedHours(ctx, venueID, date)
	if err != nil {
		return false, classify("occupied hours", err)
	}
	return !slices.Contains(hours, hour), nil
}
