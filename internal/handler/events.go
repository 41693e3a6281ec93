package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/go-chi/chi/v5"
)

// CreateEvent handles POST /events
// Creates the event, reserves its venue hours and enrolls the host in one
// step. A slot collision returns 409 with the contested hours.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	e, err := h.svc.Events.CreateEvent(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreateEventResponse{EventID: e.ID})
}

// ListEvents handles GET /events?typeId=&groupId=&status=
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.svc.Events.ListEvents(r.Context(), model.EventFilter{
		TypeID:  q.Get("typeId"),
		GroupID: q.Get("groupId"),
		Status:  model.EventStatus(q.Get("status")),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// JoinEvent handles POST /events/{id}/join
// Performs a capacity-safe join for the specified event.
func (h *Handler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.JoinRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.svc.Ledger.Join(r.Context(), id, req.UserID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.JoinResponse{EventID: id, UserID: req.UserID})
}

// ListParticipants handles GET /events/{id}/participants
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.Ledger.Participants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// ReserveSlots handles POST /events/{id}/slots
// Adds venue hours to an existing event, all or nothing.
func (h *Handler) ReserveSlots(w http.ResponseWriter, r *http.Request) {
	var req model.ReserveSlotsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rs, err := h.svc.Arbiter.ReserveSlots(r.Context(), req.VenueID, req.Date, req.Hours, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rs)
}

// CancelEvent handles POST /events/{id}/cancel
func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	var req model.ActorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	summary, err := h.svc.Coordinator.CancelEvent(r.Context(), chi.URLParam(r, "id"), req.ActorID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CloseEvent handles POST /events/{id}/close
func (h *Handler) CloseEvent(w http.ResponseWriter, r *http.Request) {
	var req model.ActorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.svc.Events.CloseEvent(r.Context(), chi.URLParam(r, "id"), req.ActorID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /events/{id}?actorId=
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actorId")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "actorId query parameter is required")
		return
	}

	if err := h.svc.Events.DeleteEvent(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
