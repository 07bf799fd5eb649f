package door

import (
	"context"
	"time"
)

// Actuator drives the physical door mechanism.
//
// Open and Close block for the full actuation duration; the control loop
// waits synchronously and never issues overlapping movements. An actuator
// whose hardware has not been set up returns ErrActuatorNotReady, which the
// loop treats as a no-op rather than a failure.
//
// The context is accepted for interface symmetry with other blocking
// operations, but implementations deliberately complete an in-progress
// movement even when it is cancelled: interrupting a half-travelled door
// leaves the mechanism in an indeterminate physical position.
type Actuator interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
}

// Simulated is an Actuator that performs the timing delay of a real movement
// without touching hardware. Used with the --simulate flag and in tests.
type Simulated struct {
	duration time.Duration
	logger   Logger
}

// NewSimulated creates a simulated actuator with the given movement duration.
func NewSimulated(duration time.Duration, logger Logger) *Simulated {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Simulated{
		duration: duration,
		logger:   logger,
	}
}

// Open simulates opening the door.
func (s *Simulated) Open(_ context.Context) error {
	s.logger.Debug("simulated actuator running", "direction", "open", "duration", s.duration)
	time.Sleep(s.duration)
	return nil
}

// Close simulates closing the door.
func (s *Simulated) Close(_ context.Context) error {
	s.logger.Debug("simulated actuator running", "direction", "close", "duration", s.duration)
	time.Sleep(s.duration)
	return nil
}
