// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/culinary-events/internal/booking"
	"github.com/Shivanand-hulikatti/culinary-events/internal/catalog"
	"github.com/Shivanand-hulikatti/culinary-events/internal/form"
	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
	"github.com/Shivanand-hulikatti/culinary-events/internal/service"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{Error: verr.Error(), Missing: verr.Missing})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, booking.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "booking session not found")
	case service.IsBadQuery(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrSoldOut),
		errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrSubmissionInFlight),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, catalog.ErrNotVisible):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger := log.WithContext(r.Context(), log.WithComponent("http"))
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Events ───────────────────────────────────────────────────────────────────

// EventHandler serves the catalog.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func parseQuery(r *http.Request) (model.CatalogQuery, error) {
	v := r.URL.Query()
	sort, err := model.ParseSortKey(v.Get("sort"))
	if err != nil {
		return model.CatalogQuery{}, err
	}
	if c := v.Get("category"); c != "" && !catalog.ValidCategory(c) {
		return model.CatalogQuery{}, fmt.Errorf("unknown category %q", c)
	}
	return model.CatalogQuery{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Country:  v.Get("country"),
		Sort:     sort,
	}, nil
}

// ListEvents handles GET /events?search=&category=&country=&sort=
// Returns the visible events with their capacity and the selector options.
// An unknown country is not an error; it matches nothing.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListEvents(r.Context(), q))
}

// Options handles GET /events/options
func (h *EventHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Options())
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Select handles POST /events/{id}/select
// The catalog query travels in the query string; the event must be visible
// under it.
func (h *EventHandler) Select(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := h.svc.Select(r.Context(), q, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, to)
}

// ─── Bookings ─────────────────────────────────────────────────────────────────

// BookingHandler serves booking sessions.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// SubmitRequest is the body of POST /bookings/{sid}/submit.
type SubmitRequest struct {
	Fields map[string]string `json:"fields"`
}

// Start handles POST /events/{id}/bookings
func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Form handles GET /bookings/form
func (h *BookingHandler) Form(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Form())
}

// Get handles GET /bookings/{sid}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Open handles POST /bookings/{sid}/open
func (h *BookingHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Open(chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Close handles POST /bookings/{sid}/close
func (h *BookingHandler) Close(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Close(chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /bookings/{sid}/submit[?wait=true]
// Without wait the confirmation runs in the background and the response is
// 202. With wait the response carries the outcome; a failed confirmation is
// reported in the view's last_error with the form open again.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	view, err := h.svc.Submit(r.Context(), chi.URLParam(r, "sid"), req.Fields, wait)
	switch {
	case err == nil && !wait:
		writeJSON(w, http.StatusAccepted, view)
	case err == nil, errors.Is(err, booking.ErrSubmissionFailed):
		writeJSON(w, http.StatusOK, view)
	default:
		writeServiceError(w, r, err)
	}
}

// Acknowledge handles POST /bookings/{sid}/acknowledge
// Returns where the visitor goes next.
func (h *BookingHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	to, err := h.svc.Acknowledge(chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, to)
}

// Leave handles DELETE /bookings/{sid}
func (h *BookingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Leave(chi.URLParam(r, "sid")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
