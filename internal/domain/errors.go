package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEmptySeatSelection = errors.New("at least one seat must be selected")
	ErrAlreadyProcessed   = errors.New("reservation has already been processed")
	ErrHoldExpired        = errors.New("hold has expired, please select your seats again")
	ErrInvalidTransition  = errors.New("invalid reservation state transition")
)

// SeatConflictError reports the first requested seat that is not available.
// Seat contention is an expected outcome; callers should refresh availability
// and retry with a different selection.
type SeatConflictError struct {
	Seat Seat
}

func (e SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is not available", e.Seat.Label())
}

// PersistenceError wraps a failed write to the reservation store. The outcome
// of the operation is unknown to the caller, who must re-query before
// retrying.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}
