// Package service implements the use cases behind the HTTP handlers: catalog
// queries with live capacity, and booking sessions.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/culinary-events/internal/booking"
	"github.com/Shivanand-hulikatti/culinary-events/internal/catalog"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
)

// EventView is an event with its capacity derived from the repository counts
// plus bookings confirmed by this process.
type EventView struct {
	model.Event
	Capacity       model.CapacityStatus `json:"capacity"`
	FillRatio      float64              `json:"fill_ratio"`
	BookNowEnabled bool                 `json:"book_now_enabled"`
}

// Options are the values offered by the catalog selectors.
type Options struct {
	Categories []string        `json:"categories"`
	Countries  []string        `json:"countries"`
	Sorts      []model.SortKey `json:"sorts"`
}

// CatalogPage is one rendered catalog result.
type CatalogPage struct {
	Status           catalog.Status     `json:"status"`
	Query            model.CatalogQuery `json:"query"`
	Items            []EventView        `json:"items"`
	Count            int                `json:"count"`
	HasActiveFilters bool               `json:"has_active_filters"`
	Options          Options            `json:"options"`
}

// EventService answers catalog reads.
type EventService struct {
	engine *catalog.Engine
	ledger *booking.Ledger
}

// NewEventService constructs an EventService. ledger may be nil.
func NewEventService(engine *catalog.Engine, ledger *booking.Ledger) *EventService {
	return &EventService{engine: engine, ledger: ledger}
}

// Options returns the selector values.
func (s *EventService) Options() Options {
	return Options{
		Categories: catalog.Categories(),
		Countries:  s.engine.Countries(),
		Sorts: []model.SortKey{
			model.SortByDate, model.SortByPriceAsc, model.SortByPriceDesc, model.SortByPopularity,
		},
	}
}

// ListEvents filters and sorts the catalog. Selector values that match no
// option simply match no event.
func (s *EventService) ListEvents(ctx context.Context, q model.CatalogQuery) CatalogPage {
	res := s.engine.Query(ctx, q)
	items := make([]EventView, 0, len(res.Events))
	for _, e := range res.Events {
		items = append(items, s.view(e))
	}
	return CatalogPage{
		Status:           res.Status,
		Query:            res.Query,
		Items:            items,
		Count:            len(items),
		HasActiveFilters: res.Query.HasActiveFilters(),
		Options:          s.Options(),
	}
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(_ context.Context, id string) (EventView, error) {
	if id == "" {
		return EventView{}, fmt.Errorf("event id is required")
	}
	e, ok := s.engine.Event(id)
	if !ok {
		return EventView{}, repository.ErrNotFound
	}
	return s.view(e), nil
}

// Select resolves a click on a catalog card. The event must be visible under q.
func (s *EventService) Select(ctx context.Context, q model.CatalogQuery, id string) (model.Navigation, error) {
	if _, ok := s.engine.Event(id); !ok {
		return model.Navigation{}, repository.ErrNotFound
	}

	nav := &navigationRecorder{}
	state := catalog.NewQueryState(nav)
	state.Attach(ctx, s.engine)

	q = q.Normalize()
	state.SetSearch(ctx, q.Search)
	if err := state.SetCategory(ctx, q.Category); err != nil {
		return model.Navigation{}, err
	}
	if err := state.SetCountry(ctx, q.Country); err != nil {
		return model.Navigation{}, err
	}
	if err := state.SetSort(ctx, q.Sort); err != nil {
		return model.Navigation{}, err
	}
	if err := state.Select(id); err != nil {
		return model.Navigation{}, err
	}
	return nav.last, nil
}

func (s *EventService) view(e model.Event) EventView {
	e = s.ledger.Apply(e)
	c := e.Capacity()
	return EventView{
		Event:          e,
		Capacity:       c,
		FillRatio:      e.FillRatio(),
		BookNowEnabled: !c.IsSoldOut,
	}
}

type navigationRecorder struct {
	last model.Navigation
}

func (n *navigationRecorder) Navigate(page model.Page, id string) {
	n.last = model.Navigation{Page: page, EntityID: id}
}

// IsBadQuery reports whether err came from an unknown selector value.
func IsBadQuery(err error) bool {
	return errors.Is(err, catalog.ErrUnknownOption)
}
