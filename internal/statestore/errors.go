package statestore

import "errors"

// Domain errors for the statestore package.
var (
	// ErrAbsent is returned when a record does not exist or holds a token
	// outside the slot's allowed set. Callers resolve it via their
	// default-recovery policy rather than treating it as fatal.
	ErrAbsent = errors.New("statestore: value absent")

	// ErrInvalidValue is returned when attempting to write a token outside
	// the slot's allowed set.
	ErrInvalidValue = errors.New("statestore: value not allowed for this slot")
)
