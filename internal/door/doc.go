// Package door contains the coop door state machine and control loop.
//
// This package manages:
//   - Door state (open/closed) and mode (auto/manual) domain types
//   - The pure decision function mapping (mode, state, time, daylight window)
//     to a required action
//   - The control loop that reconciles persisted state, recomputes the solar
//     window on date rollover, actuates at most once per iteration, and
//     contains per-iteration failures
//   - Actuator implementations (GPIO H-bridge motor, timing-only simulation)
//   - The door event history repository (SQLite)
//
// # Design
//
// The persisted records (see the statestore package) are authoritative. The
// loop re-reads them at the top of every iteration because external agents
// (an operator editing the files, or the MQTT command bridge) overwrite them
// between iterations as the manual-override channel. In auto mode a differing
// persisted state is adopted as ground truth without actuating; in manual
// mode it is treated as a command and actuated.
//
// When the persisted state is absent the door fails open: a closed door with
// unknown state control risks trapping the birds inside.
//
// Execution is strictly sequential. Actuation blocks the loop for the full
// movement duration, so overlapping actuations cannot occur, and an in-flight
// movement always completes before shutdown proceeds.
package door
