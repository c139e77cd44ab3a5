package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/culinary-events/internal/booking"
	"github.com/Shivanand-hulikatti/culinary-events/internal/catalog"
	"github.com/Shivanand-hulikatti/culinary-events/internal/form"
	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
	"github.com/Shivanand-hulikatti/culinary-events/internal/notify"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
)

// notifyTimeout bounds a single confirmation notification.
const notifyTimeout = 10 * time.Second

// BookingService runs booking sessions for events in the catalog.
type BookingService struct {
	engine  *catalog.Engine
	manager *booking.Manager
	schema  form.Schema
}

// NewBookingService constructs a BookingService.
func NewBookingService(engine *catalog.Engine, manager *booking.Manager) *BookingService {
	return &BookingService{engine: engine, manager: manager, schema: form.BookingForm()}
}

// Form returns the booking form schema.
func (s *BookingService) Form() form.Schema {
	return s.schema
}

// Start opens a session for the event's detail page.
func (s *BookingService) Start(_ context.Context, eventID string) (booking.View, error) {
	e, ok := s.engine.Event(eventID)
	if !ok {
		return booking.View{}, repository.ErrNotFound
	}
	return s.manager.Start(e, nil).View(), nil
}

// Get returns the session's current view.
func (s *BookingService) Get(sid string) (booking.View, error) {
	w, err := s.manager.Get(sid)
	if err != nil {
		return booking.View{}, err
	}
	return w.View(), nil
}

// Open handles "Book Now".
func (s *BookingService) Open(sid string) (booking.View, error) {
	return s.apply(sid, (*booking.Workflow).Open)
}

// Close dismisses the booking modal.
func (s *BookingService) Close(sid string) (booking.View, error) {
	return s.apply(sid, (*booking.Workflow).Cancel)
}

// Submit validates the form and starts the confirmation. With wait set it
// blocks until the outcome is applied or ctx ends.
func (s *BookingService) Submit(ctx context.Context, sid string, values map[string]string, wait bool) (booking.View, error) {
	w, err := s.manager.Get(sid)
	if err != nil {
		return booking.View{}, err
	}

	fields, err := s.schema.Validate(values)
	if err != nil {
		return w.View(), err
	}
	task, err := w.Submit(fields)
	if err != nil {
		return w.View(), err
	}
	if wait {
		if _, err := task.Wait(ctx); err != nil {
			return w.View(), err
		}
	}
	return w.View(), nil
}

// Acknowledge dismisses the success modal and ends the session.
func (s *BookingService) Acknowledge(sid string) (model.Navigation, error) {
	return s.manager.Acknowledge(sid)
}

// Leave ends the session when the visitor leaves the detail page.
func (s *BookingService) Leave(sid string) error {
	return s.manager.Leave(sid)
}

func (s *BookingService) apply(sid string, fn func(*booking.Workflow) error) (booking.View, error) {
	w, err := s.manager.Get(sid)
	if err != nil {
		return booking.View{}, err
	}
	if err := fn(w); err != nil {
		return w.View(), err
	}
	return w.View(), nil
}

// ConfirmationHook returns a booking.ManagerOptions.OnConfirmed callback
// that hands each confirmed booking to n. Delivery errors are logged only.
func ConfirmationHook(n notify.Notifier) func(model.Booking, model.Event) {
	logger := log.WithComponent("notify")
	return func(b model.Booking, e model.Event) {
		deliver(logger, n, notify.NewBookingConfirmed(b, e))
	}
}

func deliver(logger zerolog.Logger, n notify.Notifier, msg notify.BookingConfirmed) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := n.BookingConfirmed(ctx, msg); err != nil {
		logger.Error().Err(err).Str(log.FieldReference, msg.Reference).Msg("booking notification failed")
	}
}
