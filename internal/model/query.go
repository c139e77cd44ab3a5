package model

import "fmt"

// AllOption is the filter value that disables the category or country gate.
const AllOption = "All"

// SortKey selects the comparator applied to the filtered catalog.
type SortKey string

const (
	SortByDate       SortKey = "date"
	SortByPriceAsc   SortKey = "price-low"
	SortByPriceDesc  SortKey = "price-high"
	SortByPopularity SortKey = "popularity"
)

// ParseSortKey maps a wire value to a SortKey. An empty string selects the default.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByDate, nil
	case SortByDate, SortByPriceAsc, SortByPriceDesc, SortByPopularity:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// CatalogQuery is the combination of inputs that drives catalog visibility.
type CatalogQuery struct {
	Search   string  `json:"search"`
	Category string  `json:"category"`
	Country  string  `json:"country"`
	Sort     SortKey `json:"sort"`
}

// DefaultQuery returns the query a catalog view starts with.
func DefaultQuery() CatalogQuery {
	return CatalogQuery{
		Search:   "",
		Category: AllOption,
		Country:  AllOption,
		Sort:     SortByDate,
	}
}

// Normalize fills empty selector fields with their defaults.
func (q CatalogQuery) Normalize() CatalogQuery {
	if q.Category == "" {
		q.Category = AllOption
	}
	if q.Country == "" {
		q.Country = AllOption
	}
	if q.Sort == "" {
		q.Sort = SortByDate
	}
	return q
}

// HasActiveFilters reports whether any input differs from the defaults.
func (q CatalogQuery) HasActiveFilters() bool {
	return q.Normalize() != DefaultQuery()
}

// Key returns a stable identifier for the query tuple.
func (q CatalogQuery) Key() string {
	q = q.Normalize()
	return fmt.Sprintf("%q|%q|%q|%s", q.Search, q.Category, q.Country, q.Sort)
}
