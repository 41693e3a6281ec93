package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterConfig tunes the cross-cutting middleware.
type RouterConfig struct {
	CORSOrigins []string
	// RatePerSecond and RateBurst size the per-client limiter on mutating
	// routes. A zero rate disables limiting.
	RatePerSecond float64
	RateBurst     int
}

// NewRouter builds the chi router with the global middleware stack and every
// API route.
func NewRouter(h *Handler, cfg RouterConfig, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RatePerSecond > 0 {
		limit = NewRateLimiter(cfg.RatePerSecond, cfg.RateBurst).Limit
	}

	// Health
	r.Get("/health", HealthCheck)

	r.Route("/venues", func(r chi.Router) {
		r.With(limit).Post("/", h.CreateVenue)
		r.Get("/", h.ListVenues)
		r.Get("/{id}", h.GetVenue)
		r.Get("/{id}/availability", h.VenueAvailability)
		r.Post("/{id}/availability", h.CheckAvailability)
	})

	r.Route("/events", func(r chi.Router) {
		r.With(limit).Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.With(limit).Delete("/{id}", h.DeleteEvent)
		r.With(limit).Post("/{id}/join", h.JoinEvent)
		r.With(limit).Post("/{id}/slots", h.ReserveSlots)
		r.With(limit).Post("/{id}/cancel", h.CancelEvent)
		r.With(limit).Post("/{id}/close", h.CloseEvent)
		r.Get("/{id}/participants", h.ListParticipants)
	})

	r.Get("/ws/venues/{id}", h.VenueFeed)

	return r
}
