// Package catalog implements event discovery: a pure filter and sort over the
// event collection, a shared query engine with result caching, and the
// per-view query state.
package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// matcher evaluates the three filter gates of one query. It is not safe for
// concurrent use because the case folder keeps internal state.
type matcher struct {
	needle   string
	category string
	country  string
	fold     cases.Caser
}

func newMatcher(q model.CatalogQuery) *matcher {
	q = q.Normalize()
	m := &matcher{
		category: q.Category,
		country:  q.Country,
		fold:     cases.Fold(),
	}
	m.needle = m.fold.String(q.Search)
	return m
}

func (m *matcher) matchesSearch(e *model.Event) bool {
	if m.needle == "" {
		return true
	}
	for _, field := range [...]string{e.Title, e.Cuisine, e.Chef} {
		if strings.Contains(m.fold.String(field), m.needle) {
			return true
		}
	}
	return false
}

func (m *matcher) matchesCategory(e *model.Event) bool {
	return m.category == model.AllOption || string(e.Category) == m.category
}

func (m *matcher) matchesCountry(e *model.Event) bool {
	return m.country == model.AllOption || e.Country == m.country
}

// match evaluates every gate; no single gate short-circuits the others.
func (m *matcher) match(e *model.Event) bool {
	search := m.matchesSearch(e)
	category := m.matchesCategory(e)
	country := m.matchesCountry(e)
	return search && category && country
}

// Filter returns the events passing all gates of q, in input order.
func Filter(events []model.Event, q model.CatalogQuery) []model.Event {
	m := newMatcher(q)
	out := make([]model.Event, 0, len(events))
	for i := range events {
		if m.match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

// Countries returns "All" followed by every distinct country in first-appearance order.
func Countries(events []model.Event) []string {
	out := []string{model.AllOption}
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.Country]; ok {
			continue
		}
		seen[e.Country] = struct{}{}
		out = append(out, e.Country)
	}
	return out
}

// Categories returns "All" followed by every category.
func Categories() []string {
	out := make([]string, 0, len(model.AllCategories)+1)
	out = append(out, model.AllOption)
	for _, c := range model.AllCategories {
		out = append(out, string(c))
	}
	return out
}

// ValidCategory reports whether s is "All" or a known category.
func ValidCategory(s string) bool {
	return s == model.AllOption || model.Category(s).Valid()
}

// ValidCountry reports whether s is one of the given country options.
func ValidCountry(options []string, s string) bool {
	return slices.Contains(options, s)
}
