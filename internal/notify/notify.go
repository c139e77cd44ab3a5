// Package notify publishes confirmed bookings to downstream consumers.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/culinary-events/internal/form"
	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// BookingConfirmed is the message emitted for every confirmed booking.
type BookingConfirmed struct {
	Reference     string    `json:"reference"`
	SessionID     string    `json:"session_id"`
	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Price         float64   `json:"price"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// NewBookingConfirmed builds the message for b on event e.
func NewBookingConfirmed(b model.Booking, e model.Event) BookingConfirmed {
	return BookingConfirmed{
		Reference:     b.Reference,
		SessionID:     b.SessionID,
		EventID:       e.ID,
		EventTitle:    e.Title,
		EventDate:     e.Date,
		EventLocation: e.Location,
		Price:         e.Price,
		FirstName:     b.Fields[form.FirstName],
		LastName:      b.Fields[form.LastName],
		Email:         b.Fields[form.Email],
		ConfirmedAt:   b.ConfirmedAt,
	}
}

// Notifier delivers BookingConfirmed messages.
type Notifier interface {
	BookingConfirmed(ctx context.Context, msg BookingConfirmed) error
}

// LogNotifier writes each confirmation to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a notifier on the "notify" component logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.WithComponent("notify")}
}

// BookingConfirmed implements Notifier.
func (n *LogNotifier) BookingConfirmed(_ context.Context, msg BookingConfirmed) error {
	n.logger.Info().
		Str(log.FieldReference, msg.Reference).
		Str(log.FieldSessionID, msg.SessionID).
		Str(log.FieldEventID, msg.EventID).
		Str("event_title", msg.EventTitle).
		Time("confirmed_at", msg.ConfirmedAt).
		Msg("booking confirmed")
	return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

// BookingConfirmed implements Notifier.
func (m Multi) BookingConfirmed(ctx context.Context, msg BookingConfirmed) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingConfirmed(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
