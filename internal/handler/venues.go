package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/go-chi/chi/v5"
)

// CreateVenue handles POST /venues
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req model.CreateVenueRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	v, err := h.svc.Venues.CreateVenue(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// ListVenues handles GET /venues
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.Venues.ListVenues(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// GetVenue handles GET /venues/{id}
func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Venues.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// VenueAvailability handles GET /venues/{id}/availability?date=YYYY-MM-DD
// Returns the hours already booked on that date.
func (h *Handler) VenueAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.Availability.VenueAvailability(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// CheckAvailability handles POST /venues/{id}/availability
// Splits the requested hours into free and conflicting. Advisory only.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req model.CheckAvailabilityRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	a, err := h.svc.Availability.Check(r.Context(), chi.URLParam(r, "id"), req.Date, req.Hours)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// VenueFeed handles GET /ws/venues/{id}?date=YYYY-MM-DD
// Upgrades to a websocket streaming slot changes for that venue and date.
func (h *Handler) VenueFeed(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusNotFound, "not_found", "live feed is disabled")
		return
	}
	id, date := chi.URLParam(r, "id"), r.URL.Query().Get("date")
	// Resolve the venue and date before upgrading so errors stay plain HTTP.
	if _, err := h.svc.Slots.OccupiedHours(r.Context(), id, date); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.hub.Subscribe(w, r, id, date)
}
