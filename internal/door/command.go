package door

import (
	"fmt"
	"strings"

	"github.com/nerrad567/coop-core/internal/statestore"
)

// Remote commands accepted on the door command topic.
const (
	CommandOpen   = "open"
	CommandClose  = "close"
	CommandAuto   = "auto"
	CommandManual = "manual"
)

// NewCommandHandler returns a message handler translating remote commands
// into writes against the persisted door records. The control loop picks
// the writes up on its next iteration; the handler never touches the
// actuator directly.
//
// Commands:
//   - open, close: switch to manual mode and request that state
//   - auto, manual: switch mode without moving the door
//
// Unrecognised payloads are rejected with an error, which the MQTT client
// logs without affecting the subscription.
func NewCommandHandler(stateSlot, modeSlot *statestore.Slot, logger Logger) func(topic string, payload []byte) error {
	if logger == nil {
		logger = noopLogger{}
	}

	return func(topic string, payload []byte) error {
		command := strings.ToLower(strings.TrimSpace(string(payload)))

		switch command {
		case CommandOpen, CommandClose:
			if err := modeSlot.Write(string(ModeManual)); err != nil {
				return fmt.Errorf("persisting manual mode: %w", err)
			}
			state := StateOpen
			if command == CommandClose {
				state = StateClosed
			}
			if err := stateSlot.Write(string(state)); err != nil {
				return fmt.Errorf("persisting requested state: %w", err)
			}
			logger.Info("remote command accepted", "command", command, "topic", topic)
			return nil

		case CommandAuto, CommandManual:
			if err := modeSlot.Write(command); err != nil {
				return fmt.Errorf("persisting mode: %w", err)
			}
			logger.Info("remote command accepted", "command", command, "topic", topic)
			return nil

		default:
			return fmt.Errorf("%w: %q", ErrInvalidCommand, command)
		}
	}
}
