// Package model defines the core domain types for the culinary event catalog.
package model

import "time"

// Category classifies an event.
type Category string

const (
	CategoryWorkshop    Category = "Workshop"
	CategoryTasting     Category = "Tasting"
	CategoryFestival    Category = "Festival"
	CategoryMasterclass Category = "Masterclass"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryWorkshop,
	CategoryTasting,
	CategoryFestival,
	CategoryMasterclass,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// almostFullThreshold is the largest number of remaining spots that still
// counts as "almost full".
const almostFullThreshold = 3

// Event represents a bookable culinary class, tasting, festival or masterclass.
// Events are owned by the repository and never mutated by the core.
type Event struct {
	ID                  string    `json:"id" yaml:"id"`
	Title               string    `json:"title" yaml:"title"`
	Cuisine             string    `json:"cuisine" yaml:"cuisine"`
	Chef                string    `json:"chef" yaml:"chef"`
	Country             string    `json:"country" yaml:"country"`
	Category            Category  `json:"category" yaml:"category"`
	Location            string    `json:"location" yaml:"location"`
	Description         string    `json:"description" yaml:"description"`
	LongDescription     string    `json:"long_description,omitempty" yaml:"long_description"`
	Duration            string    `json:"duration,omitempty" yaml:"duration"`
	Highlights          []string  `json:"highlights,omitempty" yaml:"highlights"`
	Image               string    `json:"image,omitempty" yaml:"image"`
	Date                time.Time `json:"date" yaml:"date"`
	Price               float64   `json:"price" yaml:"price"`
	MaxParticipants     int       `json:"max_participants" yaml:"max_participants"`
	CurrentParticipants int       `json:"current_participants" yaml:"current_participants"`
}

// CapacityStatus is the availability derived from an event's capacity fields.
type CapacityStatus struct {
	AvailableSpots int  `json:"available_spots"`
	IsAlmostFull   bool `json:"is_almost_full"`
	IsSoldOut      bool `json:"is_sold_out"`
}

// AvailableSpots returns the number of seats still open.
func (e *Event) AvailableSpots() int {
	return e.MaxParticipants - e.CurrentParticipants
}

// IsSoldOut returns true when no seats remain.
func (e *Event) IsSoldOut() bool {
	return e.AvailableSpots() == 0
}

// IsAlmostFull returns true when only a handful of seats remain.
// A sold-out event is never almost full.
func (e *Event) IsAlmostFull() bool {
	spots := e.AvailableSpots()
	return spots > 0 && spots <= almostFullThreshold
}

// Capacity derives the capacity status. The repository is trusted, so an event
// with more participants than seats is reported as-is rather than rejected.
func (e *Event) Capacity() CapacityStatus {
	return CapacityStatus{
		AvailableSpots: e.AvailableSpots(),
		IsAlmostFull:   e.IsAlmostFull(),
		IsSoldOut:      e.IsSoldOut(),
	}
}

// FillRatio is the booked share of seats in [0,1], used for progress bars.
func (e *Event) FillRatio() float64 {
	if e.MaxParticipants <= 0 {
		return 0
	}
	return float64(e.CurrentParticipants) / float64(e.MaxParticipants)
}

// WithBooked returns a copy of e with n additional participants, capped at
// the event's capacity.
func (e Event) WithBooked(n int) Event {
	if n <= 0 {
		return e
	}
	e.CurrentParticipants += n
	if e.CurrentParticipants > e.MaxParticipants {
		e.CurrentParticipants = e.MaxParticipants
	}
	return e
}

// Summary is the event digest shown at the top of the booking modal.
type Summary struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Price    float64   `json:"price"`
}

// Summary returns the booking modal digest for e.
func (e *Event) Summary() Summary {
	return Summary{Title: e.Title, Date: e.Date, Location: e.Location, Price: e.Price}
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}
