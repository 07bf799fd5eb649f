package door

import "fmt"

// State is the last known physical position of the door.
// It is mutated only after an actuation completes successfully.
type State string

// Door states. The string values are the literal tokens persisted in the
// state record and accepted on the MQTT command topic.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ParseState converts a token to a State.
//
// Returns:
//   - State: The parsed state
//   - error: ErrInvalidState (wrapped) for an unrecognised token
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateOpen, StateClosed:
		return State(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

// Mode governs which policy drives actuation.
type Mode string

// Door modes. In auto mode the daylight window drives the door; in manual
// mode the persisted state record is treated as a direct command.
const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// ParseMode converts a token to a Mode.
//
// Returns:
//   - Mode: The parsed mode
//   - error: ErrInvalidMode (wrapped) for an unrecognised token
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeManual:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Action is the movement required by a decision.
type Action string

// Decision actions.
const (
	ActionNone  Action = "none"
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

// target returns the door state an action results in.
// Only meaningful for ActionOpen and ActionClose.
func (a Action) target() State {
	if a == ActionOpen {
		return StateOpen
	}
	return StateClosed
}

// Logger is the minimal logging interface the door package needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
