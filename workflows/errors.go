package workflows

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrToggleInFlight    = errors.New("a prayed toggle is still settling")
)

// ValidationError reports a missing required field. No store call is made when it occurs.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// StoreError wraps a failed record store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
