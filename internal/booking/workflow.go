package booking

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/metrics"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// View is what the detail page renders for a booking session.
type View struct {
	SessionID        string               `json:"session_id"`
	EventID          string               `json:"event_id"`
	State            model.BookingState   `json:"state"`
	BookingModalOpen bool                 `json:"booking_modal_open"`
	SuccessModalOpen bool                 `json:"success_modal_open"`
	SubmitEnabled    bool                 `json:"submit_enabled"`
	BookNowEnabled   bool                 `json:"book_now_enabled"`
	Summary          model.Summary        `json:"summary"`
	Capacity         model.CapacityStatus `json:"capacity"`
	Fields           map[string]string    `json:"fields,omitempty"`
	LastError        string               `json:"last_error,omitempty"`
	Booking          *model.Booking       `json:"booking,omitempty"`
}

// Options wires a Workflow to its collaborators. Only Confirmer is required;
// a nil Ledger disables the submission-time capacity check.
type Options struct {
	Confirmer Confirmer
	Ledger    *Ledger
	Navigator model.Navigator
	// OnConfirmed runs after a booking is confirmed, outside the workflow lock.
	OnConfirmed func(b model.Booking, e model.Event)
	// Context is the parent of every confirmation task.
	Context context.Context
}

// Workflow drives one visitor's booking of one event through
// Closed, FormOpen, Submitting, Confirmed and Failed. All methods are safe
// for concurrent use; transitions are serialized.
type Workflow struct {
	id     string
	event  model.Event
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	state   model.BookingState
	fields  map[string]string
	lastErr error
	booking *model.Booking
	task    *Task
	seq     uint64
	left    bool
}

// NewWorkflow returns a workflow in the Closed state.
func NewWorkflow(id string, event model.Event, opts Options) *Workflow {
	if opts.Confirmer == nil {
		opts.Confirmer = NewSimulatedConfirmer(DefaultConfirmDelay, 0)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Workflow{
		id:    id,
		event: event,
		opts:  opts,
		state: model.BookingClosed,
		logger: log.WithComponent("booking").With().
			Str(log.FieldSessionID, id).
			Str(log.FieldEventID, event.ID).
			Logger(),
	}
}

// ID returns the session id.
func (w *Workflow) ID() string { return w.id }

// Event returns the event being booked.
func (w *Workflow) Event() model.Event { return w.event }

// State returns the current state.
func (w *Workflow) State() model.BookingState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Task returns the in-flight confirmation, or nil.
func (w *Workflow) Task() *Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.task
}

// Open shows the booking form. A sold-out event stays Closed.
func (w *Workflow) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.left {
		return ErrSessionNotFound
	}
	if w.state == model.BookingClosed && w.capacity().IsSoldOut {
		metrics.RecordRejection("sold_out")
		return ErrSoldOut
	}
	return w.fire(TriggerOpen)
}

// Cancel closes the form without side effects. It is refused while a
// submission is in flight.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.left {
		return ErrSessionNotFound
	}
	if err := w.fire(TriggerCancel); err != nil {
		return err
	}
	w.fields = nil
	w.lastErr = nil
	return nil
}

// Submit hands the form values to the confirmer and moves to Submitting.
// The returned Task resolves once the outcome has been applied.
func (w *Workflow) Submit(fields map[string]string) (*Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.left {
		return nil, ErrSessionNotFound
	}
	if w.state == model.BookingSubmitting {
		metrics.RecordRejection("in_flight")
		return nil, ErrSubmissionInFlight
	}
	if _, ok := nextState(w.state, TriggerSubmit); !ok {
		return nil, w.reject(TriggerSubmit)
	}
	if w.opts.Ledger != nil {
		if err := w.opts.Ledger.Reserve(w.event); err != nil {
			metrics.RecordRejection("capacity")
			w.logger.Warn().
				Int("held", w.opts.Ledger.Held(w.event.ID)).
				Msg("no spots left at submission")
			return nil, err
		}
	}

	w.fields = maps.Clone(fields)
	w.lastErr = nil
	if err := w.fire(TriggerSubmit); err != nil {
		return nil, err
	}

	w.seq++
	ctx, cancel := context.WithCancel(w.opts.Context)
	t := newTask(w.seq, cancel)
	w.task = t

	req := Request{SessionID: w.id, Event: w.event, Fields: maps.Clone(w.fields)}
	go w.run(ctx, t, req)
	return t, nil
}

// Acknowledge dismisses the success modal and sends the visitor back to the
// catalog.
func (w *Workflow) Acknowledge() (model.Navigation, error) {
	w.mu.Lock()
	if w.left {
		w.mu.Unlock()
		return model.Navigation{}, ErrSessionNotFound
	}
	if err := w.fire(TriggerAcknowledge); err != nil {
		w.mu.Unlock()
		return model.Navigation{}, err
	}
	w.fields = nil
	w.lastErr = nil
	nav := w.opts.Navigator
	w.mu.Unlock()

	to := model.Navigation{Page: model.PageCatalog}
	if nav != nil {
		nav.Navigate(to.Page, to.EntityID)
	}
	return to, nil
}

// Stop cancels the in-flight confirmation, if any. The task still resolves,
// as a failure.
func (w *Workflow) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.task != nil {
		w.task.cancel()
	}
}

// leave retires the workflow so every later operation reports
// ErrSessionNotFound. It is refused while a submission is in flight.
func (w *Workflow) leave() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == model.BookingSubmitting {
		return ErrSubmissionInFlight
	}
	w.left = true
	return nil
}

// View returns a snapshot of the presentation state.
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	capacity := w.capacity()
	v := View{
		SessionID:        w.id,
		EventID:          w.event.ID,
		State:            w.state,
		BookingModalOpen: w.state == model.BookingFormOpen || w.state == model.BookingSubmitting || w.state == model.BookingFailed,
		SuccessModalOpen: w.state == model.BookingConfirmed,
		SubmitEnabled:    w.state == model.BookingFormOpen,
		BookNowEnabled:   w.state == model.BookingClosed && !capacity.IsSoldOut,
		Summary:          w.event.Summary(),
		Capacity:         capacity,
		Fields:           maps.Clone(w.fields),
	}
	if w.lastErr != nil {
		v.LastError = w.lastErr.Error()
	}
	if w.booking != nil {
		b := *w.booking
		b.Fields = maps.Clone(b.Fields)
		v.Booking = &b
	}
	return v
}

func (w *Workflow) run(ctx context.Context, t *Task, req Request) {
	conf, err := w.opts.Confirmer.Confirm(ctx, req)
	w.resolve(t, conf, err)
}

// resolve applies a task outcome. Outcomes of tasks other than the current
// one are dropped.
func (w *Workflow) resolve(t *Task, conf Confirmation, err error) {
	w.mu.Lock()
	if w.task != t {
		w.mu.Unlock()
		w.logger.Debug().Uint64("task", t.id).Msg("ignoring stale confirmation outcome")
		t.finish(conf, err)
		return
	}
	w.task = nil

	outcome := "success"
	var confirmed model.Booking
	if err != nil {
		outcome = "failure"
		if w.opts.Ledger != nil {
			w.opts.Ledger.Release(w.event.ID)
		}
		err = fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		w.lastErr = err
		_ = w.fire(TriggerFail)
		// Failed is transient: the form comes back with the entered values.
		_ = w.fire(TriggerRetry)
		w.logger.Warn().Err(err).Msg("booking confirmation failed")
	} else {
		if w.opts.Ledger != nil {
			w.opts.Ledger.Commit(w.event.ID)
		}
		confirmed = model.Booking{
			Reference:   conf.Reference,
			SessionID:   w.id,
			EventID:     w.event.ID,
			Fields:      maps.Clone(w.fields),
			ConfirmedAt: conf.ConfirmedAt,
		}
		w.booking = &confirmed
		_ = w.fire(TriggerSucceed)
		w.logger.Info().Str(log.FieldReference, conf.Reference).Msg("booking confirmed")
	}
	metrics.ConfirmationDuration.WithLabelValues(outcome).Observe(time.Since(t.started).Seconds())

	event := w.event
	hook := w.opts.OnConfirmed
	w.mu.Unlock()

	if err == nil && hook != nil {
		hook(confirmed, event)
	}
	t.finish(conf, err)
}

// fire applies trigger to the current state. Callers hold w.mu.
func (w *Workflow) fire(trigger Trigger) error {
	from := w.state
	to, ok := nextState(from, trigger)
	if !ok {
		return w.reject(trigger)
	}
	w.state = to
	metrics.RecordTransition(string(from), string(trigger), string(to))
	w.logger.Info().
		Str(log.FieldEvent, string(trigger)).
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(to)).
		Msg("booking transition")
	return nil
}

func (w *Workflow) reject(trigger Trigger) error {
	metrics.RecordRejection("invalid_transition")
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, trigger, w.state)
}

// capacity is the event capacity including in-process confirmed bookings.
// Callers hold w.mu.
func (w *Workflow) capacity() model.CapacityStatus {
	e := w.opts.Ledger.Apply(w.event)
	return e.Capacity()
}
