package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Shivanand-hulikatti/culinary-events/internal/cache"
	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/metrics"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
)

// Status tells the caller which affordance to present for a result.
type Status string

const (
	StatusLoading Status = "loading"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// Result is the visible catalog for one query.
type Result struct {
	Status Status             `json:"status"`
	Query  model.CatalogQuery `json:"query"`
	Events []model.Event      `json:"events"`
}

// Len returns the number of visible events.
func (r Result) Len() int {
	return len(r.Events)
}

func newResult(q model.CatalogQuery, events []model.Event) Result {
	status := StatusReady
	if len(events) == 0 {
		status = StatusEmpty
	}
	if events == nil {
		events = []model.Event{}
	}
	return Result{Status: status, Query: q, Events: events}
}

// Engine answers catalog queries over one repository snapshot. It is safe
// for concurrent use; the snapshot is never modified after construction.
type Engine struct {
	events    []model.Event
	index     map[string]int
	countries []string
	cache     cache.Cache
	group     singleflight.Group
	logger    zerolog.Logger
}

// NewEngine loads the repository once. A nil cache disables caching.
func NewEngine(ctx context.Context, repo repository.EventRepository, c cache.Cache) (*Engine, error) {
	events, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if c == nil {
		c = cache.Nop{}
	}
	e := &Engine{
		events:    events,
		index:     make(map[string]int, len(events)),
		countries: Countries(events),
		cache:     c,
		logger:    log.WithComponent("catalog"),
	}
	for i, ev := range events {
		e.index[ev.ID] = i
	}
	e.logger.Info().Int(log.FieldCount, len(events)).Msg("catalog loaded")
	return e, nil
}

// Countries returns the country options derived from the loaded repository.
func (e *Engine) Countries() []string {
	return append([]string(nil), e.countries...)
}

// Event returns the event with the given id from the snapshot.
func (e *Engine) Event(id string) (model.Event, bool) {
	i, ok := e.index[id]
	if !ok {
		return model.Event{}, false
	}
	return e.events[i], true
}

// Len returns the number of events in the snapshot.
func (e *Engine) Len() int {
	return len(e.events)
}

// Query filters and sorts the snapshot for q. Results may come from the cache;
// a cached answer is always identical to a fresh computation.
func (e *Engine) Query(ctx context.Context, q model.CatalogQuery) Result {
	q = q.Normalize()
	key := q.Key()

	if ids, ok := e.cache.Get(ctx, key); ok {
		if events, ok := e.resolve(ids); ok {
			res := newResult(q, events)
			metrics.RecordCatalogQuery(string(res.Status), true)
			return res
		}
		e.logger.Warn().Str(log.FieldQuery, key).Msg("stale cache entry, recomputing")
	}

	v, _, _ := e.group.Do(key, func() (any, error) {
		events := FilterAndSort(e.events, q)
		ids := make([]string, len(events))
		for i, ev := range events {
			ids[i] = ev.ID
		}
		e.cache.Set(ctx, key, ids)
		return events, nil
	})
	// Shared results must not alias between callers.
	events := append([]model.Event(nil), v.([]model.Event)...)
	res := newResult(q, events)
	metrics.RecordCatalogQuery(string(res.Status), false)
	return res
}

func (e *Engine) resolve(ids []string) ([]model.Event, bool) {
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		i, ok := e.index[id]
		if !ok {
			return nil, false
		}
		out = append(out, e.events[i])
	}
	return out, true
}
