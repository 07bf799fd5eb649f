// Package statestore persists the door's decision state across process restarts.
//
// This package manages:
//   - Two independent newline-terminated text records (door state, door mode)
//   - Atomic writes (write-temp-then-rename) so readers never see a torn value
//   - Absent detection for missing files and unrecognised tokens
//
// The records are the single source of truth for the control loop, and they
// are deliberately writable by external agents between loop iterations: an
// operator (or the MQTT command bridge) commands the door in manual mode by
// writing a new token into the state record. The loop re-reads both records
// at the top of every iteration to pick such edits up.
//
// No locking is used. Atomic rename discipline substitutes for mutual
// exclusion under the single-writer-at-a-time assumption.
//
// Usage:
//
//	slot := statestore.NewSlot("/var/lib/coopctl/door_state", "open", "closed")
//	value, err := slot.Read()
//	if errors.Is(err, statestore.ErrAbsent) {
//	    // fresh install or corrupted record; apply the recovery default
//	}
package statestore
