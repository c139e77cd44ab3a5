package catalog

import (
	"cmp"
	"slices"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// Comparator returns the ordering for key. Unknown keys keep input order.
func Comparator(key model.SortKey) func(a, b model.Event) int {
	switch key {
	case model.SortByDate, "":
		return func(a, b model.Event) int { return a.Date.Compare(b.Date) }
	case model.SortByPriceAsc:
		return func(a, b model.Event) int { return cmp.Compare(a.Price, b.Price) }
	case model.SortByPriceDesc:
		return func(a, b model.Event) int { return cmp.Compare(b.Price, a.Price) }
	case model.SortByPopularity:
		return func(a, b model.Event) int { return cmp.Compare(b.CurrentParticipants, a.CurrentParticipants) }
	}
	return func(model.Event, model.Event) int { return 0 }
}

// Sort orders events in place by key. Equal keys keep their input order.
func Sort(events []model.Event, key model.SortKey) {
	slices.SortStableFunc(events, Comparator(key))
}

// FilterAndSort applies the filter gates of q and then its sort key. It never
// modifies events.
func FilterAndSort(events []model.Event, q model.CatalogQuery) []model.Event {
	out := Filter(events, q)
	Sort(out, q.Normalize().Sort)
	return out
}
