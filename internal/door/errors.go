package door

import "errors"

// Domain errors for the door package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, door.ErrActuatorNotReady) {
//	    // skip the movement, do not persist
//	}
var (
	// ErrInvalidState is returned when a token is not a recognised door state.
	ErrInvalidState = errors.New("door: invalid state (must be open or closed)")

	// ErrInvalidMode is returned when a token is not a recognised door mode.
	ErrInvalidMode = errors.New("door: invalid mode (must be auto or manual)")

	// ErrInvalidCommand is returned when a remote command payload is not a
	// recognised command.
	ErrInvalidCommand = errors.New("door: invalid command (must be open, close, auto or manual)")

	// ErrActuatorNotReady is returned by an actuator whose hardware has not
	// been set up. The control loop treats the requested movement as a no-op
	// and leaves the persisted state untouched.
	ErrActuatorNotReady = errors.New("door: actuator not ready")

	// ErrActuationFailed is returned when the hardware failed mid-movement.
	// The persisted state is not updated, reflecting that the door may not
	// have moved.
	ErrActuationFailed = errors.New("door: actuation failed")
)
