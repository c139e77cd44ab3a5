// Package repository provides the read-only event collection the catalog and
// booking flow work against. Events are loaded once, from a YAML seed file or
// a PostgreSQL table, and then served from an immutable in-memory snapshot.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidEvent is returned when loaded data breaks an event invariant.
var ErrInvalidEvent = errors.New("invalid event")

// EventRepository is the ordered, read-only event collection.
type EventRepository interface {
	List(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, id string) (model.Event, error)
}

// StaticRepository serves a fixed snapshot of events in load order.
type StaticRepository struct {
	events []model.Event
	byID   map[string]int
}

// NewStaticRepository validates events and freezes them into a repository.
func NewStaticRepository(events []model.Event) (*StaticRepository, error) {
	r := &StaticRepository{
		events: make([]model.Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	for _, e := range events {
		if err := validate(e); err != nil {
			return nil, err
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidEvent, e.ID)
		}
		e.Highlights = slices.Clone(e.Highlights)
		r.byID[e.ID] = len(r.events)
		r.events = append(r.events, e)
	}
	return r, nil
}

// List returns all events in repository order. The caller owns the slice.
func (r *StaticRepository) List(_ context.Context) ([]model.Event, error) {
	return slices.Clone(r.events), nil
}

// Get returns a single event or ErrNotFound.
func (r *StaticRepository) Get(_ context.Context, id string) (model.Event, error) {
	i, ok := r.byID[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return r.events[i], nil
}

// Len returns the number of events in the snapshot.
func (r *StaticRepository) Len() int {
	return len(r.events)
}

func validate(e model.Event) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidEvent)
	case !e.Category.Valid():
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidEvent, e.ID, e.Category)
	case e.Price < 0:
		return fmt.Errorf("%w: %s: negative price", ErrInvalidEvent, e.ID)
	case e.MaxParticipants < 0 || e.CurrentParticipants < 0:
		return fmt.Errorf("%w: %s: negative participant count", ErrInvalidEvent, e.ID)
	case e.CurrentParticipants > e.MaxParticipants:
		return fmt.Errorf("%w: %s: %d participants exceed capacity %d",
			ErrInvalidEvent, e.ID, e.CurrentParticipants, e.MaxParticipants)
	}
	return nil
}
