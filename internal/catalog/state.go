package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

var (
	// ErrUnknownOption is returned when a selector value is not offered.
	ErrUnknownOption = errors.New("unknown option")
	// ErrNotVisible is returned when selecting an event outside the visible result.
	ErrNotVisible = errors.New("event not in visible result")
)

// QueryState is the catalog view's query and its visible result. It is owned
// by a single view and is not safe for concurrent use. Every input change
// recomputes the result.
type QueryState struct {
	engine *Engine
	nav    model.Navigator
	query  model.CatalogQuery
	result Result
}

// NewQueryState returns a state with the default query. Until Attach is
// called the result reports StatusLoading.
func NewQueryState(nav model.Navigator) *QueryState {
	q := model.DefaultQuery()
	return &QueryState{
		nav:    nav,
		query:  q,
		result: Result{Status: StatusLoading, Query: q, Events: []model.Event{}},
	}
}

// Attach binds the loaded engine and computes the first result.
func (s *QueryState) Attach(ctx context.Context, e *Engine) {
	s.engine = e
	s.recompute(ctx)
}

// Query returns the current inputs.
func (s *QueryState) Query() model.CatalogQuery {
	return s.query
}

// Result returns the visible result for the current inputs.
func (s *QueryState) Result() Result {
	return s.result
}

// Loaded reports whether the repository has been attached.
func (s *QueryState) Loaded() bool {
	return s.engine != nil
}

// Countries returns the country options, or just "All" while loading.
func (s *QueryState) Countries() []string {
	if !s.Loaded() {
		return []string{model.AllOption}
	}
	return s.engine.Countries()
}

// HasActiveFilters reports whether any input differs from its default.
func (s *QueryState) HasActiveFilters() bool {
	return s.query.HasActiveFilters()
}

// SetSearch replaces the search text.
func (s *QueryState) SetSearch(ctx context.Context, text string) {
	s.query.Search = text
	s.recompute(ctx)
}

// SetCategory selects a category or "All".
func (s *QueryState) SetCategory(ctx context.Context, category string) error {
	if !ValidCategory(category) {
		return fmt.Errorf("%w: category %q", ErrUnknownOption, category)
	}
	s.query.Category = category
	s.recompute(ctx)
	return nil
}

// SetCountry selects a country present in the repository or "All".
func (s *QueryState) SetCountry(ctx context.Context, country string) error {
	if !ValidCountry(s.Countries(), country) {
		return fmt.Errorf("%w: country %q", ErrUnknownOption, country)
	}
	s.query.Country = country
	s.recompute(ctx)
	return nil
}

// SetSort selects the sort key.
func (s *QueryState) SetSort(ctx context.Context, key model.SortKey) error {
	if _, err := model.ParseSortKey(string(key)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownOption, err)
	}
	s.query.Sort = key
	s.recompute(ctx)
	return nil
}

// Clear resets every input to its default.
func (s *QueryState) Clear(ctx context.Context) {
	s.query = model.DefaultQuery()
	s.recompute(ctx)
}

// Select hands a visible event to the navigation collaborator.
func (s *QueryState) Select(id string) error {
	for _, e := range s.result.Events {
		if e.ID == id {
			if s.nav != nil {
				s.nav.Navigate(model.PageEventDetail, id)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotVisible, id)
}

func (s *QueryState) recompute(ctx context.Context) {
	if !s.Loaded() {
		s.result = Result{Status: StatusLoading, Query: s.query, Events: []model.Event{}}
		return
	}
	s.result = s.engine.Query(ctx, s.query)
}
