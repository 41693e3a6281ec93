package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/google/uuid"
)

// Default bookable range for venues registered without one.
const (
	DefaultFirstHour = 8
	DefaultLastHour  = 20
)

// VenueService manages venue reference data.
type VenueService struct {
	base
}

// CreateVenue registers a venue. Only administrators may register venues.
func (s *VenueService) CreateVenue(ctx context.Context, req *model.CreateVenueRequest) (*model.Venue, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	v := &model.Venue{
		ID:        strings.TrimSpace(req.ID),
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		FirstHour: DefaultFirstHour,
		LastHour:  DefaultLastHour,
		CreatedAt: s.clock(),
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Name == "" {
		return nil, invalid("name is required")
	}
	if req.FirstHour != nil {
		v.FirstHour = *req.FirstHour
	}
	if req.LastHour != nil {
		v.LastHour = *req.LastHour
	}
	if v.FirstHour > v.LastHour {
		return nil, invalid("firstHour %d is after lastHour %d", v.FirstHour, v.LastHour)
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		admin, err := tx.IsAdmin(ctx, req.ActorID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbidden
		}
		if err := tx.InsertVenue(ctx, v); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrVenueExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, classify("create venue", err)
	}
	s.log.Info("venue created", "venue_id", v.ID, "actor_id", req.ActorID)
	return v, nil
}

// GetVenue returns one venue.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	v, err := s.store.GetVenue(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("venue", id)
	}
	if err != nil {
		return nil, classify("get venue", err)
	}
	return v, nil
}

// ListVenues returns every venue.
func (s *VenueService) ListVenues(ctx context.Context) ([]model.Venue, error) {
	vs, err := s.store.ListVenues(ctx)
	if err != nil {
		return nil, classify("list venues", err)
	}
	if vs == nil {
		vs = []model.Venue{}
	}
	return vs, nil
}
