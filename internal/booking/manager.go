package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/metrics"
	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// ManagerOptions configures the collaborators shared by every session.
type ManagerOptions struct {
	Confirmer   Confirmer
	Ledger      *Ledger
	OnConfirmed func(b model.Booking, e model.Event)
}

// Manager is the registry of live booking sessions. A session lives while
// its visitor is on the event detail page.
type Manager struct {
	opts   ManagerOptions
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
	newID  func() string

	mu       sync.Mutex
	sessions map[string]*Workflow
}

// NewManager returns an empty manager. A nil Ledger gets a fresh one shared
// by all sessions.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Confirmer == nil {
		opts.Confirmer = NewSimulatedConfirmer(DefaultConfirmDelay, 0)
	}
	if opts.Ledger == nil {
		opts.Ledger = NewLedger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		logger:   log.WithComponent("booking"),
		newID:    uuid.NewString,
		sessions: make(map[string]*Workflow),
	}
}

// Ledger returns the seat ledger shared by all sessions.
func (m *Manager) Ledger() *Ledger {
	return m.opts.Ledger
}

// Start creates a session for event. nav may be nil.
func (m *Manager) Start(event model.Event, nav model.Navigator) *Workflow {
	id := m.newID()
	w := NewWorkflow(id, event, Options{
		Confirmer:   m.opts.Confirmer,
		Ledger:      m.opts.Ledger,
		Navigator:   nav,
		OnConfirmed: m.opts.OnConfirmed,
		Context:     m.ctx,
	})

	m.mu.Lock()
	m.sessions[id] = w
	m.mu.Unlock()

	metrics.ActiveBookingSessions.Inc()
	m.logger.Debug().Str(log.FieldSessionID, id).Str(log.FieldEventID, event.ID).Msg("booking session started")
	return w
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

// Leave destroys a session when its visitor leaves the detail page. It is
// refused while a submission is in flight.
func (m *Manager) Leave(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if err := w.leave(); err != nil {
		metrics.RecordRejection("in_flight")
		return err
	}
	m.remove(id)
	return nil
}

// Acknowledge dismisses the success modal and destroys the session.
func (m *Manager) Acknowledge(id string) (model.Navigation, error) {
	w, err := m.Get(id)
	if err != nil {
		return model.Navigation{}, err
	}
	to, err := w.Acknowledge()
	if err != nil {
		return model.Navigation{}, err
	}

	m.mu.Lock()
	m.remove(id)
	m.mu.Unlock()
	return to, nil
}

// remove drops a session. Callers hold m.mu.
func (m *Manager) remove(id string) {
	if _, ok := m.sessions[id]; !ok {
		return
	}
	delete(m.sessions, id)
	metrics.ActiveBookingSessions.Dec()
	m.logger.Debug().Str(log.FieldSessionID, id).Msg("booking session closed")
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown cancels every in-flight confirmation and waits for them to
// resolve or for ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	m.mu.Lock()
	var pending []*Task
	for _, w := range m.sessions {
		w.Stop()
		if t := w.Task(); t != nil {
			pending = append(pending, t)
		}
	}
	m.mu.Unlock()

	for _, t := range pending {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.logger.Info().Int(log.FieldCount, len(pending)).Msg("booking manager stopped")
	return nil
}
