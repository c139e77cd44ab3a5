package catalog

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 18, 0, 0, 0, time.UTC)
}

// threeEvents is the dates/prices/capacity scenario.
func threeEvents() []model.Event {
	return []model.Event{
		{ID: "june", Title: "Pasta Night", Cuisine: "Italian", Chef: "Marco Rossi", Country: "Italy",
			Category: model.CategoryWorkshop, Date: day(2024, 6, 1), Price: 40, MaxParticipants: 12, CurrentParticipants: 10},
		{ID: "may", Title: "Omakase Counter", Cuisine: "Japanese", Chef: "Kenji Tanaka", Country: "Japan",
			Category: model.CategoryTasting, Date: day(2024, 5, 1), Price: 80, MaxParticipants: 12, CurrentParticipants: 12},
		{ID: "july", Title: "Street Food Fair", Cuisine: "Thai", Chef: "Somchai Wong", Country: "Thailand",
			Category: model.CategoryFestival, Date: day(2024, 7, 1), Price: 60, MaxParticipants: 5, CurrentParticipants: 0},
	}
}

// fiveEvents is a seeded catalog in which no title, cuisine or chef contains "chef".
func fiveEvents() []model.Event {
	return append(threeEvents(),
		model.Event{ID: "tapas", Title: "Tapas Crawl", Cuisine: "Spanish", Chef: "Lucia Fernandez", Country: "Spain",
			Category: model.CategoryTasting, Date: day(2024, 8, 3), Price: 55, MaxParticipants: 20, CurrentParticipants: 7},
		model.Event{ID: "mole", Title: "Mole Masterclass", Cuisine: "Mexican", Chef: "Diego Hernandez", Country: "Mexico",
			Category: model.CategoryMasterclass, Date: day(2024, 4, 20), Price: 95, MaxParticipants: 8, CurrentParticipants: 8},
	)
}

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestFilterAndSort_ByDate(t *testing.T) {
	got := FilterAndSort(threeEvents(), model.DefaultQuery())
	assert.Equal(t, []string{"may", "june", "july"}, ids(got))
}

func TestFilterAndSort_ByPrice(t *testing.T) {
	q := model.DefaultQuery()
	q.Sort = model.SortByPriceAsc
	got := FilterAndSort(threeEvents(), q)
	assert.Equal(t, []float64{40, 60, 80}, []float64{got[0].Price, got[1].Price, got[2].Price})

	q.Sort = model.SortByPriceDesc
	got = FilterAndSort(threeEvents(), q)
	assert.Equal(t, []string{"may", "july", "june"}, ids(got))
}

func TestFilterAndSort_ByPopularity(t *testing.T) {
	q := model.DefaultQuery()
	q.Sort = model.SortByPopularity
	got := FilterAndSort(fiveEvents(), q)
	assert.Equal(t, []string{"may", "june", "mole", "tapas", "july"}, ids(got))
}

func TestFilterAndSort_StableForEqualKeys(t *testing.T) {
	events := []model.Event{
		{ID: "a", Price: 10, Category: model.CategoryWorkshop},
		{ID: "b", Price: 5, Category: model.CategoryWorkshop},
		{ID: "c", Price: 10, Category: model.CategoryWorkshop},
		{ID: "d", Price: 10, Category: model.CategoryWorkshop},
	}
	q := model.DefaultQuery()
	q.Sort = model.SortByPriceDesc
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(FilterAndSort(events, q)))
}

func TestFilterAndSort_SearchNoMatch(t *testing.T) {
	q := model.DefaultQuery()
	q.Search = "chef"
	got := FilterAndSort(fiveEvents(), q)
	assert.Len(t, got, 0)
	assert.NotNil(t, got)
}

func TestFilter_SearchFields(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"PASTA", []string{"june"}},   // title, case-insensitive
		{"japanese", []string{"may"}}, // cuisine
		{"wong", []string{"july"}},    // chef
		{"ta", []string{"june", "may", "tapas"}},
		{"Bangkok", []string{}}, // location is not searched
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			q := model.DefaultQuery()
			q.Search = tt.search
			assert.Equal(t, tt.want, ids(Filter(fiveEvents(), q)))
		})
	}
}

func TestFilter_UnicodeFolding(t *testing.T) {
	events := []model.Event{{ID: "x", Title: "Straßenküche", Category: model.CategoryFestival}}
	q := model.DefaultQuery()
	q.Search = "STRASSEN"
	assert.Len(t, Filter(events, q), 1)
}

func TestFilter_AllGatesApply(t *testing.T) {
	q := model.CatalogQuery{Search: "a", Category: string(model.CategoryTasting), Country: "Spain"}
	assert.Equal(t, []string{"tapas"}, ids(Filter(fiveEvents(), q)))

	q.Country = "Japan"
	assert.Equal(t, []string{"may"}, ids(Filter(fiveEvents(), q)))

	q.Search = "tapas"
	assert.Empty(t, Filter(fiveEvents(), q), "search gate still applies when category and country match")
}

func TestFilterAndSort_DoesNotMutateInput(t *testing.T) {
	events := threeEvents()
	before := ids(events)
	q := model.DefaultQuery()
	q.Sort = model.SortByPriceDesc
	_ = FilterAndSort(events, q)
	assert.Equal(t, before, ids(events))
}

func TestCountries(t *testing.T) {
	events := append(fiveEvents(), model.Event{ID: "risotto", Country: "Italy"})
	assert.Equal(t, []string{"All", "Italy", "Japan", "Thailand", "Spain", "Mexico"}, Countries(events))
	assert.Equal(t, []string{"All"}, Countries(nil))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"All", "Workshop", "Tasting", "Festival", "Masterclass"}, Categories())
	assert.True(t, ValidCategory("All"))
	assert.False(t, ValidCategory("Brunch"))
}

func randomCatalog(r *rand.Rand, n int) []model.Event {
	countries := []string{"Italy", "Japan", "Peru"}
	titles := []string{"Pasta", "Ramen", "Ceviche", "Bread", "Noodle"}
	out := make([]model.Event, n)
	for i := range out {
		maxP := r.IntN(10) + 1
		out[i] = model.Event{
			ID:                  fmt.Sprintf("e%02d", i),
			Title:               titles[r.IntN(len(titles))],
			Cuisine:             countries[r.IntN(len(countries))],
			Chef:                titles[r.IntN(len(titles))] + " Chef",
			Country:             countries[r.IntN(len(countries))],
			Category:            model.AllCategories[r.IntN(len(model.AllCategories))],
			Date:                day(2024, time.Month(r.IntN(12)+1), r.IntN(28)+1),
			Price:               float64(r.IntN(5) * 20),
			MaxParticipants:     maxP,
			CurrentParticipants: r.IntN(maxP + 1),
		}
	}
	return out
}

func isSubsequence(sub, of []string) bool {
	j := 0
	for _, id := range of {
		if j < len(sub) && sub[j] == id {
			j++
		}
	}
	return j == len(sub)
}

func TestFilterAndSort_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	searches := []string{"", "pa", "RAMEN", "chef", "zzz"}
	categories := append([]string{"All"}, Categories()[1:]...)
	countries := []string{"All", "Italy", "Japan", "Peru"}
	sorts := []model.SortKey{model.SortByDate, model.SortByPriceAsc, model.SortByPriceDesc, model.SortByPopularity}

	for i := 0; i < 200; i++ {
		events := randomCatalog(r, r.IntN(15))
		q := model.CatalogQuery{
			Search:   searches[r.IntN(len(searches))],
			Category: categories[r.IntN(len(categories))],
			Country:  countries[r.IntN(len(countries))],
			Sort:     sorts[r.IntN(len(sorts))],
		}

		got := FilterAndSort(events, q)

		// Deterministic.
		if diff := cmp.Diff(got, FilterAndSort(events, q)); diff != "" {
			t.Fatalf("non-deterministic result (-first +second):\n%s", diff)
		}

		// Exactly the events satisfying all gates.
		want := ids(Filter(events, q))
		gotIDs := ids(got)
		require.ElementsMatch(t, want, gotIDs)
		for _, e := range got {
			require.True(t, newMatcher(q).match(&e))
		}

		// Ordered by the comparator, and stable: equal keys keep input order.
		less := Comparator(q.Sort)
		for k := 1; k < len(got); k++ {
			c := less(got[k-1], got[k])
			require.LessOrEqual(t, c, 0)
			if c == 0 {
				require.True(t, isSubsequence([]string{got[k-1].ID, got[k].ID}, ids(events)))
			}
		}
	}
}

func TestFilterAndSort_ClearedQueryIsDateOrder(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		events := randomCatalog(r, 12)
		byDate := slices.Clone(events)
		slices.SortStableFunc(byDate, func(a, b model.Event) int { return a.Date.Compare(b.Date) })

		assert.Equal(t, ids(byDate), ids(FilterAndSort(events, model.DefaultQuery())))
	}
}

func TestMatcher_Gates(t *testing.T) {
	e := threeEvents()[0]
	assert.True(t, newMatcher(model.CatalogQuery{}).match(&e))
	assert.True(t, newMatcher(model.CatalogQuery{Search: "rossi", Country: "Italy"}).match(&e))
	assert.False(t, newMatcher(model.CatalogQuery{Category: string(model.CategoryTasting)}).match(&e))
	assert.True(t, ValidCountry(Countries(threeEvents()), "Japan"))
}
