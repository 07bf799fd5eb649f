package door

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// H-bridge line states for the three output lines (IN1, IN2, EN).
var (
	motorForward  = []int{1, 0, 1} // winds the door down (close)
	motorBackward = []int{0, 1, 1} // winds the door up (open)
	motorStop     = []int{0, 0, 0}
)

// MotorConfig contains the wiring and timing for the door motor.
type MotorConfig struct {
	// Chip is the GPIO character device name (e.g. "gpiochip0").
	Chip string

	// In1, In2 are the H-bridge direction line offsets.
	In1 int
	In2 int

	// Enable is the H-bridge enable line offset.
	Enable int

	// Duration is how long the motor runs for one full movement.
	Duration time.Duration
}

// Motor is an Actuator driving a DC motor through an H-bridge on GPIO
// character-device lines.
//
// Setup must be called before the motor can move; until then Open and Close
// return ErrActuatorNotReady. Release frees the lines and returns the motor
// to the not-ready state.
//
// Thread Safety:
//   - Safe for concurrent use, though the control loop is strictly
//     sequential and never overlaps movements.
type Motor struct {
	cfg    MotorConfig
	logger Logger

	mu    sync.Mutex
	lines *gpiocdev.Lines
}

// NewMotor creates a Motor for the given wiring. No hardware is touched
// until Setup is called.
func NewMotor(cfg MotorConfig, logger Logger) *Motor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Motor{
		cfg:    cfg,
		logger: logger,
	}
}

// Setup requests the H-bridge lines as outputs, all low.
//
// Returns:
//   - error: If the GPIO chip or lines cannot be acquired
func (m *Motor) Setup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lines != nil {
		return nil // Already set up
	}

	lines, err := gpiocdev.RequestLines(m.cfg.Chip,
		[]int{m.cfg.In1, m.cfg.In2, m.cfg.Enable},
		gpiocdev.AsOutput(0, 0, 0),
		gpiocdev.WithConsumer("coopctl"),
	)
	if err != nil {
		return fmt.Errorf("requesting GPIO lines on %s: %w", m.cfg.Chip, err)
	}

	m.lines = lines
	m.logger.Info("motor lines acquired",
		"chip", m.cfg.Chip,
		"in1", m.cfg.In1,
		"in2", m.cfg.In2,
		"enable", m.cfg.Enable,
	)
	return nil
}

// Open runs the motor backward for the configured duration.
func (m *Motor) Open(_ context.Context) error {
	return m.run(motorBackward)
}

// Close runs the motor forward for the configured duration.
func (m *Motor) Close(_ context.Context) error {
	return m.run(motorForward)
}

// run drives the H-bridge in one direction for the configured duration,
// then stops. The motor is always stopped afterwards, even if setting the
// direction failed partway.
func (m *Motor) run(direction []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lines == nil {
		return ErrActuatorNotReady
	}

	if err := m.lines.SetValues(direction); err != nil {
		// Try to stop whatever the bridge is doing before reporting.
		m.lines.SetValues(motorStop) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("%w: setting direction: %w", ErrActuationFailed, err)
	}

	time.Sleep(m.cfg.Duration)

	if err := m.lines.SetValues(motorStop); err != nil {
		return fmt.Errorf("%w: stopping motor: %w", ErrActuationFailed, err)
	}

	return nil
}

// Release stops the motor and frees the GPIO lines.
//
// Safe to call when not set up or already released.
func (m *Motor) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lines == nil {
		return nil
	}

	// Make sure nothing is driving the bridge before letting go.
	m.lines.SetValues(motorStop) //nolint:errcheck // Best effort before close

	err := m.lines.Close()
	m.lines = nil
	if err != nil {
		return fmt.Errorf("releasing GPIO lines: %w", err)
	}

	m.logger.Info("motor lines released")
	return nil
}
