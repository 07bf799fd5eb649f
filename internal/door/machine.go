package door

import (
	"time"

	"github.com/nerrad567/coop-core/internal/solar"
)

// Decision is the outcome of one evaluation of the door policy.
type Decision struct {
	// Action is the movement required, or ActionNone.
	Action Action

	// Reason is a short human explanation for the log.
	Reason string
}

// Decide maps the current inputs to a required action.
//
// It is a pure function: no side effects, no retained state, and identical
// inputs always yield the identical decision. In particular, a "none"
// decision stays "none" on re-evaluation, so no actuation can fire twice.
//
// In auto mode the daylight window drives the door and `applied` is the
// reconciled ground-truth state. Evaluated in order:
//  1. Before sunrise with the door open: close (pre-dawn safety close).
//  2. Between sunrise and sunset-with-buffer with the door closed: open,
//     unless an earliest-open gate is set and not yet passed. The gate only
//     delays opening; it never forces or hastens a close.
//  3. At or after sunset-with-buffer with the door open: close.
//  4. Otherwise: nothing.
//
// When sunrise >= sunset-with-buffer (degenerate geography or a huge
// negative buffer) rule 2's window is empty and the door simply never opens
// that day. That is accepted input-dependent behaviour, not an error.
//
// In manual mode the persisted state is a command: a `requested` state that
// differs from `applied` yields the movement that satisfies it, and the
// window is ignored entirely.
//
// Parameters:
//   - mode: The reconciled door mode
//   - applied: The last state an actuation established (in-memory)
//   - requested: The state currently persisted in the store
//   - now: Current wall-clock time
//   - w: The daylight window for now's calendar date (unused in manual mode)
//
// Returns:
//   - Decision: The required action and its reason
func Decide(mode Mode, applied, requested State, now time.Time, w solar.Window) Decision {
	if mode == ModeManual {
		if requested == applied {
			return Decision{Action: ActionNone}
		}
		if requested == StateOpen {
			return Decision{Action: ActionOpen, Reason: "manual open"}
		}
		return Decision{Action: ActionClose, Reason: "manual close"}
	}

	switch {
	case now.Before(w.Sunrise) && applied == StateOpen:
		return Decision{Action: ActionClose, Reason: "sun is not up yet"}

	case now.After(w.Sunrise) && now.Before(w.SunsetWithBuffer) &&
		(w.EarliestOpen == nil || now.After(*w.EarliestOpen)) &&
		applied == StateClosed:
		return Decision{Action: ActionOpen, Reason: "sun is up"}

	case !now.Before(w.SunsetWithBuffer) && applied == StateOpen:
		return Decision{Action: ActionClose, Reason: "sun has set"}
	}

	return Decision{Action: ActionNone}
}
