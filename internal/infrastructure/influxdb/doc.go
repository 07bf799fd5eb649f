// Package influxdb records door telemetry in InfluxDB v2.
//
// Two measurements are written: door_event (one point per actuation, with
// the movement duration) and solar_window (one point per computed daylight
// window). Writes are non-blocking and batched; the controller never waits
// on the time-series backend.
//
// The integration is optional. When disabled in config the controller
// simply passes no telemetry sink to the control loop.
package influxdb
