// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/notify"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/service"
)

// Handler holds all HTTP handlers for the booking API.
type Handler struct {
	svc *service.Booking
	hub *notify.Hub
	log *slog.Logger
}

// New constructs a Handler. hub may be nil, which disables the websocket feed.
func New(svc *service.Booking, hub *notify.Hub, log *slog.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeRequest decodes the body into dst and runs its validate tags. It
// writes the 400 response itself and reports whether the handler may go on.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body: "+err.Error())
		return false
	}
	if err := service.Validate(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return false
	}
	return true
}

// writeServiceError maps service outcomes onto HTTP statuses. Every expected
// outcome gets its own code so clients can show a specific message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *service.SlotConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:            conflict.Error(),
			Code:             "slot_conflict",
			ConflictingHours: conflict.Hours,
		})
	case errors.Is(err, service.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, "already_joined", err.Error())
	case errors.Is(err, service.ErrEventFull):
		writeError(w, http.StatusConflict, "event_full", err.Error())
	case errors.Is(err, service.ErrEventClosed):
		writeError(w, http.StatusConflict, "event_closed", err.Error())
	case errors.Is(err, service.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", err.Error())
	case errors.Is(err, service.ErrVenueExists):
		writeError(w, http.StatusConflict, "venue_exists", err.Error())
	case errors.Is(err, service.ErrGroupRestricted):
		writeError(w, http.StatusForbidden, "group_restricted", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrOutcomeUnknown):
		h.log.ErrorContext(r.Context(), "storage failure", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusServiceUnavailable, "outcome_unknown", service.ErrOutcomeUnknown.Error())
	default:
		h.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
