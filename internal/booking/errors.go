package booking

import "errors"

// Sentinel errors returned by the booking workflow and manager.
var (
	ErrInvalidTransition  = errors.New("invalid booking transition")
	ErrSoldOut            = errors.New("event is sold out")
	ErrSubmissionInFlight = errors.New("a booking submission is already in progress")
	ErrCapacityExceeded   = errors.New("no spots left for this event")
	ErrSubmissionFailed   = errors.New("booking confirmation failed")
	ErrSessionNotFound    = errors.New("booking session not found")
)
