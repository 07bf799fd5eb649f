package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDoorEvent records a completed door movement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - action: The movement performed ("open" or "close")
//   - state: The resulting door state
//   - mode: The mode the controller was in
//   - source: What initiated the movement (schedule, manual, recovery)
//   - duration: How long the actuation took
func (c *Client) WriteDoorEvent(action, state, mode, source string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"door_event",
		map[string]string{
			"action": action,
			"mode":   mode,
			"source": source,
		},
		map[string]interface{}{
			"state":            state,
			"duration_seconds": duration.Seconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSolarWindow records the daylight window computed for a date.
//
// One point is written per calendar date, when the control loop first
// computes the window.
//
// Parameters:
//   - sunrise: Sunrise time for the date
//   - sunset: Sunset time for the date
//   - sunsetWithBuffer: Sunset plus the configured close buffer
func (c *Client) WriteSolarWindow(sunrise, sunset, sunsetWithBuffer time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"solar_window",
		map[string]string{
			"date": sunrise.Format("2006-01-02"),
		},
		map[string]interface{}{
			"sunrise":            sunrise.Unix(),
			"sunset":             sunset.Unix(),
			"sunset_with_buffer": sunsetWithBuffer.Unix(),
			"daylight_seconds":   sunset.Sub(sunrise).Seconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
