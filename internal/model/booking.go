package model

import "time"

// BookingState is the single state of a booking session's workflow.
type BookingState string

const (
	BookingClosed     BookingState = "closed"
	BookingFormOpen   BookingState = "form_open"
	BookingSubmitting BookingState = "submitting"
	BookingConfirmed  BookingState = "confirmed"
	BookingFailed     BookingState = "failed"
)

// Page identifies a navigation target.
type Page string

const (
	PageCatalog     Page = "catalog"
	PageEventDetail Page = "event-detail"
)

// Navigation is a request to move the visitor to another page.
type Navigation struct {
	Page     Page   `json:"page"`
	EntityID string `json:"entity_id,omitempty"`
}

// Navigator is the navigation collaborator. The core asks it to move the
// visitor and never performs routing itself.
type Navigator interface {
	Navigate(page Page, entityID string)
}

// Booking is a confirmed seat in an event.
type Booking struct {
	Reference   string            `json:"reference"`
	SessionID   string            `json:"session_id"`
	EventID     string            `json:"event_id"`
	Fields      map[string]string `json:"fields"`
	ConfirmedAt time.Time         `json:"confirmed_at"`
}
