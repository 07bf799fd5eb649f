package mqtt

import (
	"fmt"
	"time"
)

// Maximum payload size for MQTT messages (1MB).
// Aligns with typical broker limits.
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "coopctl/door/state")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Retained messages suit state topics (door state, system status) where
// new subscribers should immediately see the current value. Commands and
// events should not be retained.
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state updates where new subscribers should receive the current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// PublishDoorState publishes the current door state, retained, to
// coopctl/door/state.
func (c *Client) PublishDoorState(state string) error {
	payload := fmt.Sprintf(
		`{"state":"%s","timestamp":"%s"}`,
		state,
		time.Now().UTC().Format(time.RFC3339),
	)
	return c.PublishRetained(Topics{}.DoorState(), []byte(payload))
}

// PublishDoorMode publishes the current door mode, retained, to
// coopctl/door/mode.
func (c *Client) PublishDoorMode(mode string) error {
	payload := fmt.Sprintf(
		`{"mode":"%s","timestamp":"%s"}`,
		mode,
		time.Now().UTC().Format(time.RFC3339),
	)
	return c.PublishRetained(Topics{}.DoorMode(), []byte(payload))
}
