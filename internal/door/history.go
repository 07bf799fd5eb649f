package door

import (
	"context"
	"time"
)

// Event source values, recording what provoked an actuation.
const (
	// EventSourceSchedule marks movements decided by the daylight window.
	EventSourceSchedule = "schedule"

	// EventSourceManual marks movements commanded via the state record
	// while in manual mode.
	EventSourceManual = "manual"

	// EventSourceRecovery marks the fail-open performed when the persisted
	// state was absent or unrecognised.
	EventSourceRecovery = "recovery"
)

// Event is one recorded door movement.
//
// The event log is a local audit trail of every actuation, kept even when
// the time-series database is unavailable.
type Event struct {
	// ID is the auto-incremented primary key for the event row.
	ID int64 `json:"id"`

	// Action is the movement performed (open or close).
	Action Action `json:"action"`

	// State is the door state the movement resulted in.
	State State `json:"state"`

	// Mode is the door mode at the time of the movement.
	Mode Mode `json:"mode"`

	// Source identifies what provoked the movement (schedule, manual, recovery).
	Source string `json:"source"`

	// Reason is the decision reason logged with the movement.
	Reason string `json:"reason"`

	// CreatedAt is the timestamp of the movement (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository stores and retrieves door movement history.
//
// Implementations must be thread-safe and use UTC timestamps.
type EventRepository interface {
	// RecordEvent records a door movement.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - event: The movement to persist (ID and CreatedAt are assigned by
	//     the repository)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordEvent(ctx context.Context, event Event) error

	// GetRecent returns recent door movements, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []Event: Ordered newest-first events (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetRecent(ctx context.Context, limit int) ([]Event, error)
}
