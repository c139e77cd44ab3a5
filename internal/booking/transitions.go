package booking

import "github.com/Shivanand-hulikatti/culinary-events/internal/model"

// Trigger is an input to the booking state machine.
type Trigger string

const (
	TriggerOpen        Trigger = "open"
	TriggerCancel      Trigger = "cancel"
	TriggerSubmit      Trigger = "submit"
	TriggerSucceed     Trigger = "succeed"
	TriggerFail        Trigger = "fail"
	TriggerRetry       Trigger = "retry"
	TriggerAcknowledge Trigger = "acknowledge"
)

type transition struct {
	From    model.BookingState
	Trigger Trigger
	To      model.BookingState
}

// transitionsTable is the complete set of legal moves. Any pair not listed
// is rejected.
var transitionsTable = []transition{
	{From: model.BookingClosed, Trigger: TriggerOpen, To: model.BookingFormOpen},
	{From: model.BookingFormOpen, Trigger: TriggerCancel, To: model.BookingClosed},
	{From: model.BookingFormOpen, Trigger: TriggerSubmit, To: model.BookingSubmitting},
	{From: model.BookingSubmitting, Trigger: TriggerSucceed, To: model.BookingConfirmed},
	{From: model.BookingSubmitting, Trigger: TriggerFail, To: model.BookingFailed},
	{From: model.BookingFailed, Trigger: TriggerRetry, To: model.BookingFormOpen},
	{From: model.BookingConfirmed, Trigger: TriggerAcknowledge, To: model.BookingClosed},
}

type transitionKey struct {
	from    model.BookingState
	trigger Trigger
}

var transitionIndex = buildTransitionIndex(transitionsTable)

func buildTransitionIndex(table []transition) map[transitionKey]model.BookingState {
	idx := make(map[transitionKey]model.BookingState, len(table))
	for _, t := range table {
		idx[transitionKey{from: t.From, trigger: t.Trigger}] = t.To
	}
	return idx
}

// nextState returns the target of (from, trigger), or false when the pair is
// not a legal move.
func nextState(from model.BookingState, trigger Trigger) (model.BookingState, bool) {
	to, ok := transitionIndex[transitionKey{from: from, trigger: trigger}]
	return to, ok
}
