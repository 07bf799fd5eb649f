// Package mqtt provides the broker connection for the coop controller.
//
// The controller uses MQTT two ways:
//   - It publishes retained door state and mode so dashboards and other
//     services always see the current position.
//   - It subscribes to the command topic, translating remote commands into
//     writes against the persisted door records for the control loop to
//     pick up on its next iteration.
//
// The client wraps paho.mqtt.golang with connection management, automatic
// re-subscription on reconnect and a Last Will and Testament on the system
// status topic for offline detection.
//
// Thread safety: all methods are safe for concurrent use.
package mqtt
