package booking

import (
	"sync"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// Ledger tracks seats taken in-process on top of the repository counts.
// Held seats belong to submissions still awaiting confirmation; committed
// seats belong to confirmed bookings.
type Ledger struct {
	mu        sync.Mutex
	held      map[string]int
	committed map[string]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		held:      make(map[string]int),
		committed: make(map[string]int),
	}
}

// Reserve holds one seat for e, or returns ErrCapacityExceeded.
func (l *Ledger) Reserve(e model.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	taken := e.CurrentParticipants + l.held[e.ID] + l.committed[e.ID]
	if taken >= e.MaxParticipants {
		return ErrCapacityExceeded
	}
	l.held[e.ID]++
	return nil
}

// Release drops one held seat.
func (l *Ledger) Release(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropHeld(eventID)
}

// Commit turns one held seat into a confirmed booking.
func (l *Ledger) Commit(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropHeld(eventID)
	l.committed[eventID]++
}

func (l *Ledger) dropHeld(eventID string) {
	if l.held[eventID] <= 1 {
		delete(l.held, eventID)
		return
	}
	l.held[eventID]--
}

// Booked returns the number of confirmed bookings for eventID.
func (l *Ledger) Booked(eventID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed[eventID]
}

// Held returns the number of seats awaiting confirmation for eventID.
func (l *Ledger) Held(eventID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[eventID]
}

// Apply returns e with its confirmed bookings added to the participant count.
func (l *Ledger) Apply(e model.Event) model.Event {
	if l == nil {
		return e
	}
	return e.WithBooked(l.Booked(e.ID))
}
