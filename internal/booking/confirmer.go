package booking

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// DefaultConfirmDelay is how long the simulated confirmation takes.
const DefaultConfirmDelay = 2 * time.Second

// errSimulatedFailure is what SimulatedConfirmer reports for a failed roll.
var errSimulatedFailure = errors.New("simulated confirmation failure")

// Request is one submitted booking handed to a Confirmer.
type Request struct {
	SessionID string
	Event     model.Event
	Fields    map[string]string
}

// Confirmation is a successful confirmation outcome.
type Confirmation struct {
	Reference   string
	ConfirmedAt time.Time
}

// Confirmer completes a submitted booking. Implementations must honour ctx
// cancellation.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) (Confirmation, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, req Request) (Confirmation, error)

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	return f(ctx, req)
}

// SimulatedConfirmer stands in for a payment or reservation backend. It waits
// for Delay and then succeeds, unless Outcome or FailureRate decide otherwise.
type SimulatedConfirmer struct {
	Delay       time.Duration
	FailureRate float64
	// Outcome, when set, decides the result instead of FailureRate.
	Outcome func(req Request) error

	now  func() time.Time
	roll func() float64
}

// NewSimulatedConfirmer returns a confirmer with the given delay and failure
// rate in [0,1].
func NewSimulatedConfirmer(delay time.Duration, failureRate float64) *SimulatedConfirmer {
	return &SimulatedConfirmer{
		Delay:       delay,
		FailureRate: failureRate,
		now:         time.Now,
		roll:        rand.Float64,
	}
}

// Confirm implements Confirmer.
func (c *SimulatedConfirmer) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}

	if err := c.outcome(req); err != nil {
		return Confirmation{}, err
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return Confirmation{Reference: uuid.NewString(), ConfirmedAt: now().UTC()}, nil
}

func (c *SimulatedConfirmer) outcome(req Request) error {
	if c.Outcome != nil {
		return c.Outcome(req)
	}
	if c.FailureRate <= 0 {
		return nil
	}
	roll := rand.Float64
	if c.roll != nil {
		roll = c.roll
	}
	if roll() < c.FailureRate {
		return errSimulatedFailure
	}
	return nil
}
