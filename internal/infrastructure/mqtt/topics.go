package mqtt

import "fmt"

// Topic prefixes for the coop controller.
//
// Door topics follow coopctl/door/{channel}; system topics follow
// coopctl/system/{channel}.
const (
	// TopicPrefix is the base for all controller topics.
	TopicPrefix = "coopctl"

	// TopicPrefixDoor is the base for door topics.
	TopicPrefixDoor = "coopctl/door"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "coopctl/system"
)

// Topics provides builders for the controller's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// DoorState returns the retained door state topic.
//
// Example: coopctl/door/state
func (Topics) DoorState() string {
	return fmt.Sprintf("%s/state", TopicPrefixDoor)
}

// DoorMode returns the retained door mode topic.
//
// Example: coopctl/door/mode
func (Topics) DoorMode() string {
	return fmt.Sprintf("%s/mode", TopicPrefixDoor)
}

// DoorCommand returns the topic remote commands arrive on.
//
// Accepted payloads: open, close, auto, manual.
//
// Example: coopctl/door/command
func (Topics) DoorCommand() string {
	return fmt.Sprintf("%s/command", TopicPrefixDoor)
}

// DoorEvent returns the topic door movement events are published to.
//
// Example: coopctl/door/event
func (Topics) DoorEvent() string {
	return fmt.Sprintf("%s/event", TopicPrefixDoor)
}

// SystemStatus returns the system status topic carrying online/offline
// payloads, including the Last Will and Testament.
//
// Example: coopctl/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDoorTopics returns a pattern matching every door topic.
//
// Pattern: coopctl/door/+
func (Topics) AllDoorTopics() string {
	return fmt.Sprintf("%s/+", TopicPrefixDoor)
}
