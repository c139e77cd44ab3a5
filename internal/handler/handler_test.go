package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/culinary-events/internal/booking"
	"github.com/Shivanand-hulikatti/culinary-events/internal/catalog"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
	"github.com/Shivanand-hulikatti/culinary-events/internal/service"
)

func testEvents() []model.Event {
	at := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 18, 0, 0, 0, time.UTC) }
	return []model.Event{
		{ID: "tapas", Title: "Tapas Crawl", Country: "Spain", Category: model.CategoryTasting,
			Location: "Seville, Spain", Date: at(8, 3), Price: 55, MaxParticipants: 15, CurrentParticipants: 3},
		{ID: "pasta", Title: "Handmade Pasta", Country: "Italy", Category: model.CategoryWorkshop,
			Location: "Rome, Italy", Date: at(6, 14), Price: 85, MaxParticipants: 12, CurrentParticipants: 11},
		{ID: "wine", Title: "Natural Wine Tasting", Country: "France", Category: model.CategoryTasting,
			Location: "Lyon, France", Date: at(7, 1), Price: 60, MaxParticipants: 20, CurrentParticipants: 20},
	}
}

func newTestRouter(t *testing.T, c booking.Confirmer, cfg RouterConfig) http.Handler {
	t.Helper()
	repo, err := repository.NewStaticRepository(testEvents())
	require.NoError(t, err)
	engine, err := catalog.NewEngine(context.Background(), repo, nil)
	require.NoError(t, err)
	manager := booking.NewManager(booking.ManagerOptions{Confirmer: c})
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	return NewRouter(
		service.NewEventService(engine, manager.Ledger()),
		service.NewBookingService(engine, manager),
		cfg,
	)
}

func confirmAll() booking.Confirmer {
	return booking.ConfirmerFunc(func(context.Context, booking.Request) (booking.Confirmation, error) {
		return booking.Confirmation{Reference: "BK-42", ConfirmedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}, nil
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const validSubmit = `{"fields":{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"123"}}`

func TestHealth(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListEvents(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.CatalogPage](t, rec)
	assert.Equal(t, catalog.StatusReady, page.Status)
	require.Equal(t, 3, page.Count)
	assert.Equal(t, []string{"pasta", "wine", "tapas"}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
	assert.True(t, page.Items[0].Capacity.IsAlmostFull)
	assert.True(t, page.Items[1].Capacity.IsSoldOut)

	rec = do(t, h, http.MethodGet, "/events?category=Tasting&sort=price-low", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[service.CatalogPage](t, rec)
	assert.True(t, page.HasActiveFilters)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, "tapas", page.Items[0].ID)

	rec = do(t, h, http.MethodGet, "/events?search=sushi", "")
	page = decode[service.CatalogPage](t, rec)
	assert.Equal(t, catalog.StatusEmpty, page.Status)
	assert.Empty(t, page.Items)

	rec = do(t, h, http.MethodGet, "/events?sort=rating", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/events?category=Picnic", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/events?country=Peru", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.StatusEmpty, decode[service.CatalogPage](t, rec).Status)
}

func TestOptionsAndGetEvent(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodGet, "/events/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decode[service.Options](t, rec)
	assert.Equal(t, []string{"All", "Spain", "Italy", "France"}, opts.Countries)
	assert.Equal(t, []string{"All", "Workshop", "Tasting", "Festival", "Masterclass"}, opts.Categories)

	rec = do(t, h, http.MethodGet, "/events/pasta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ev := decode[service.EventView](t, rec)
	assert.Equal(t, "Handmade Pasta", ev.Title)
	assert.Equal(t, 1, ev.Capacity.AvailableSpots)
	assert.True(t, ev.BookNowEnabled)

	rec = do(t, h, http.MethodGet, "/events/sushi", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelect(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodPost, "/events/tapas/select?country=Spain", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Navigation{Page: model.PageEventDetail, EntityID: "tapas"}, decode[model.Navigation](t, rec))

	rec = do(t, h, http.MethodPost, "/events/tapas/select?country=Italy", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/events/tapas/select?country=Peru", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodGet, "/bookings/form", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dietaryRestrictions"`)

	rec = do(t, h, http.MethodPost, "/events/pasta/bookings", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[booking.View](t, rec)
	require.NotEmpty(t, view.SessionID)
	base := "/bookings/" + view.SessionID

	rec = do(t, h, http.MethodPost, base+"/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[booking.View](t, rec).BookingModalOpen)

	rec = do(t, h, http.MethodPost, base+"/submit", `{"fields":{"firstName":"Ada"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, []string{"lastName", "email", "phone"}, errResp.Missing)

	rec = do(t, h, http.MethodPost, base+"/submit", `{"fields":{},"extra":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/submit?wait=true", validSubmit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[booking.View](t, rec)
	assert.Equal(t, model.BookingConfirmed, view.State)
	assert.True(t, view.SuccessModalOpen)
	require.NotNil(t, view.Booking)
	assert.Equal(t, "BK-42", view.Booking.Reference)

	rec = do(t, h, http.MethodGet, "/events/pasta", "")
	assert.True(t, decode[service.EventView](t, rec).Capacity.IsSoldOut)

	rec = do(t, h, http.MethodPost, base+"/acknowledge", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Navigation{Page: model.PageCatalog}, decode[model.Navigation](t, rec))

	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingConflicts(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodPost, "/events/wine/bookings", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[booking.View](t, rec)
	assert.False(t, view.BookNowEnabled)

	rec = do(t, h, http.MethodPost, "/bookings/"+view.SessionID+"/open", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "sold out")

	rec = do(t, h, http.MethodPost, "/bookings/"+view.SessionID+"/acknowledge", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodDelete, "/bookings/"+view.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/bookings/unknown/open", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitValidatesClosedThenOpenedSession(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})

	rec := do(t, h, http.MethodPost, "/events/pasta/bookings", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/bookings/" + decode[booking.View](t, rec).SessionID

	rec = do(t, h, http.MethodPost, base+"/submit", `{"fields":{}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/open", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/submit?wait=true", `{"fields":{}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decode[model.ErrorResponse](t, rec).Missing, 4)

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BookingFormOpen, decode[booking.View](t, rec).State)
}

func TestSubmitFailureReturnsView(t *testing.T) {
	failing := booking.ConfirmerFunc(func(context.Context, booking.Request) (booking.Confirmation, error) {
		return booking.Confirmation{}, assert.AnError
	})
	h := newTestRouter(t, failing, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/events/tapas/bookings", "")
	sid := decode[booking.View](t, rec).SessionID
	do(t, h, http.MethodPost, "/bookings/"+sid+"/open", "")

	rec = do(t, h, http.MethodPost, "/bookings/"+sid+"/submit?wait=1", validSubmit)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[booking.View](t, rec)
	assert.Equal(t, model.BookingFormOpen, view.State)
	assert.NotEmpty(t, view.LastError)
	assert.Equal(t, "Ada", view.Fields["firstName"])
}

func TestSubmitRateLimited(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{SubmitLimit: 1, SubmitWindow: time.Minute})

	rec := do(t, h, http.MethodPost, "/bookings/unknown/submit", validSubmit)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/bookings/unknown/submit", validSubmit)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})
	rec := do(t, h, http.MethodOptions, "/events", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, confirmAll(), RouterConfig{})
	do(t, h, http.MethodGet, "/events", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "culinary_catalog_queries_total")
}
