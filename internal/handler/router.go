package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shivanand-hulikatti/culinary-events/internal/service"
)

// RouterConfig tunes the router.
type RouterConfig struct {
	// SubmitLimit and SubmitWindow bound booking submissions per client IP.
	// A zero limit disables the limiter.
	SubmitLimit  int
	SubmitWindow time.Duration
	// Metrics serves /metrics; nil uses the default Prometheus registry.
	Metrics http.Handler
}

// NewRouter builds the API router.
func NewRouter(events *service.EventService, bookings *service.BookingService, cfg RouterConfig) http.Handler {
	eventHandler := NewEventHandler(events)
	bookingHandler := NewBookingHandler(bookings)

	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/options", eventHandler.Options)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Post("/{id}/select", eventHandler.Select)
		r.Post("/{id}/bookings", bookingHandler.Start)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/form", bookingHandler.Form)
		r.Get("/{sid}", bookingHandler.Get)
		r.Delete("/{sid}", bookingHandler.Leave)
		r.Post("/{sid}/open", bookingHandler.Open)
		r.Post("/{sid}/close", bookingHandler.Close)
		r.Post("/{sid}/acknowledge", bookingHandler.Acknowledge)
		r.Group(func(r chi.Router) {
			if cfg.SubmitLimit > 0 {
				r.Use(RateLimit(cfg.SubmitLimit, cfg.SubmitWindow))
			}
			r.Post("/{sid}/submit", bookingHandler.Submit)
		})
	})

	return r
}
