package door

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/coop-core/internal/solar"
	"github.com/nerrad567/coop-core/internal/statestore"
)

// WindowCalculator produces the daylight window for a date.
// Implemented by solar.Calculator.
type WindowCalculator interface {
	// WindowFor computes the window for the calendar date containing t.
	// The window must be usable even when an error is returned.
	WindowFor(t time.Time) (solar.Window, error)

	// Location returns the timezone windows are expressed in.
	Location() *time.Location
}

// StatusPublisher broadcasts door status to external observers.
// Implemented by the MQTT client; nil disables broadcasting.
type StatusPublisher interface {
	// PublishDoorState publishes the current door state (retained).
	PublishDoorState(state string) error

	// PublishDoorMode publishes the current door mode (retained).
	PublishDoorMode(mode string) error
}

// Telemetry records door measurements in a time-series database.
// Implemented by the InfluxDB client; nil disables telemetry.
type Telemetry interface {
	// WriteDoorEvent records a completed door movement.
	WriteDoorEvent(action, state, mode, source string, duration time.Duration)

	// WriteSolarWindow records the daylight window computed for a date.
	WriteSolarWindow(sunrise, sunset, sunsetWithBuffer time.Time)
}

// civilDate identifies one calendar date in the site timezone.
// The solar window is recomputed only when this advances.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilDateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{year: y, month: m, day: d}
}

// ControllerOptions contains the collaborators and settings for a Controller.
type ControllerOptions struct {
	// StateSlot and ModeSlot are the persisted door records (required).
	StateSlot *statestore.Slot
	ModeSlot  *statestore.Slot

	// Actuator drives the door mechanism (required).
	Actuator Actuator

	// Calculator produces the daily daylight window (required).
	Calculator WindowCalculator

	// PollInterval is the delay between loop iterations (required, > 0).
	PollInterval time.Duration

	// Events records movement history (optional).
	Events EventRepository

	// Status broadcasts state/mode over MQTT (optional).
	Status StatusPublisher

	// Telemetry records time-series measurements (optional).
	Telemetry Telemetry

	// Logger for loop output (optional, defaults to no-op).
	Logger Logger

	// Now overrides the wall clock, for tests (optional).
	Now func() time.Time
}

// Controller runs the door control loop.
//
// Each iteration reconciles mode and state from the persisted records,
// recomputes the daylight window when the calendar date advances, evaluates
// the decision policy, executes at most one actuation, persists the result,
// and sleeps. Iteration failures are logged and contained; only cancellation
// ends the loop.
//
// Not safe for concurrent use: one Controller per door, driven by Run.
type Controller struct {
	stateSlot    *statestore.Slot
	modeSlot     *statestore.Slot
	actuator     Actuator
	calc         WindowCalculator
	pollInterval time.Duration
	events       EventRepository
	status       StatusPublisher
	telemetry    Telemetry
	logger       Logger
	now          func() time.Time

	// In-memory view, reconciled against the records every iteration.
	mode        Mode
	state       State
	initialised bool

	// Date-scoped daylight window.
	today       civilDate
	window      solar.Window
	windowValid bool
}

// NewController creates a Controller from the given options.
//
// Returns:
//   - *Controller: Ready to Run
//   - error: If a required option is missing
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.StateSlot == nil || opts.ModeSlot == nil {
		return nil, errors.New("door: state and mode slots are required")
	}
	if opts.Actuator == nil {
		return nil, errors.New("door: actuator is required")
	}
	if opts.Calculator == nil {
		return nil, errors.New("door: solar calculator is required")
	}
	if opts.PollInterval <= 0 {
		return nil, errors.New("door: poll interval must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Controller{
		stateSlot:    opts.StateSlot,
		modeSlot:     opts.ModeSlot,
		actuator:     opts.Actuator,
		calc:         opts.Calculator,
		pollInterval: opts.PollInterval,
		events:       opts.Events,
		status:       opts.Status,
		telemetry:    opts.Telemetry,
		logger:       logger,
		now:          now,
	}, nil
}

// Run executes the control loop until the context is cancelled.
//
// Any error raised during one iteration is logged and the loop proceeds to
// the next iteration: the loop's availability outweighs surfacing a single
// iteration's failure. Cancellation is checked between iterations and
// interrupts the inter-iteration sleep, but never an in-flight actuation.
//
// Returns:
//   - error: Always nil; cancellation is a clean shutdown, not a failure
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("control loop started", "poll_interval", c.pollInterval.String())

	for {
		if err := c.Iterate(ctx); err != nil {
			c.logger.Error("iteration failed", "error", err)
		}

		select {
		case <-ctx.Done():
			c.logger.Info("shutdown signal received, leaving control loop")
			return nil
		case <-time.After(c.pollInterval):
		}
	}
}

// Iterate performs a single control loop iteration.
//
// Exposed separately from Run so the one-shot paths and tests can drive the
// loop without real sleeps.
func (c *Controller) Iterate(ctx context.Context) error {
	c.reconcileMode()

	now := c.now()

	if c.mode == ModeAuto {
		c.refreshWindow(now)
	}

	requested, err := c.reconcileState(ctx)
	if err != nil {
		return err
	}

	decision := Decide(c.mode, c.state, requested, now, c.window)
	if decision.Action == ActionNone {
		c.logger.Debug("nothing to do", "mode", c.mode, "state", c.state)
		return nil
	}

	source := EventSourceSchedule
	if c.mode == ModeManual {
		source = EventSourceManual
	}
	return c.apply(ctx, decision, source)
}

// reconcileMode adopts the persisted mode, applying the auto-recovery
// default when the record is absent. Mode alone never actuates the door.
func (c *Controller) reconcileMode() {
	value, err := c.modeSlot.Read()
	if err != nil {
		c.logger.Warn("door mode is not set, defaulting to auto", "error", err)
		if writeErr := c.modeSlot.Write(string(ModeAuto)); writeErr != nil {
			c.logger.Error("persisting default mode", "error", writeErr)
		}
		c.setMode(ModeAuto)
		return
	}

	mode := Mode(value)
	if c.initialised && mode != c.mode {
		c.logger.Info("door mode changed externally", "from", c.mode, "to", mode)
	}
	c.setMode(mode)
}

func (c *Controller) setMode(mode Mode) {
	if mode == c.mode {
		return
	}
	c.mode = mode
	if c.status != nil {
		if err := c.status.PublishDoorMode(string(mode)); err != nil {
			c.logger.Warn("publishing door mode", "error", err)
		}
	}
}

// refreshWindow recomputes the daylight window when the calendar date has
// advanced past the date it was computed for. The window is immutable for
// the remainder of that date.
func (c *Controller) refreshWindow(now time.Time) {
	today := civilDateOf(now, c.calc.Location())
	if c.windowValid && today == c.today {
		return
	}

	window, err := c.calc.WindowFor(now)
	if err != nil {
		// The window is still usable: a malformed earliest-open degrades
		// to "no lower bound", polar dates degrade to "never open".
		c.logger.Error("solar window degraded", "error", err)
	}

	c.today = today
	c.window = window
	c.windowValid = true

	c.logger.Info("solar window computed",
		"date", fmt.Sprintf("%04d-%02d-%02d", today.year, today.month, today.day),
		"sunrise", window.Sunrise.Format(time.RFC3339),
		"sunset", window.Sunset.Format(time.RFC3339),
		"sunset_with_buffer", window.SunsetWithBuffer.Format(time.RFC3339),
		"earliest_open", formatEarliestOpen(window.EarliestOpen),
	)

	if c.telemetry != nil {
		c.telemetry.WriteSolarWindow(window.Sunrise, window.Sunset, window.SunsetWithBuffer)
	}
}

func formatEarliestOpen(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(time.RFC3339)
}

// reconcileState reads the persisted state and returns it as the requested
// state for this iteration.
//
// Absent triggers the fail-open recovery: the door is opened and Open is
// persisted. In auto mode a present-but-different value is adopted as ground
// truth without actuating; in manual mode it is left for Decide to treat as
// a command.
func (c *Controller) reconcileState(ctx context.Context) (State, error) {
	value, err := c.stateSlot.Read()
	if err != nil {
		c.logger.Warn("door state is not set, opening the door", "error", err)
		recovery := Decision{Action: ActionOpen, Reason: "door state unknown"}
		if applyErr := c.apply(ctx, recovery, EventSourceRecovery); applyErr != nil {
			return c.state, applyErr
		}
		c.initialised = true
		return c.state, nil
	}

	requested := State(value)

	if !c.initialised {
		// First iteration after startup: seed the in-memory view from the
		// record so a stale manual command is not replayed.
		c.state = requested
		c.initialised = true
		return requested, nil
	}

	if c.mode == ModeAuto && requested != c.state {
		// Ground truth, not a command, in auto mode.
		c.logger.Info("door state changed externally", "from", c.state, "to", requested)
		c.state = requested
	}

	return requested, nil
}

// apply executes one movement, then persists and reports the new state.
//
// The persisted state is updated only after the actuator returns without
// failure, so a failed actuation leaves the record unchanged and still
// reflecting that the door did not move. A not-ready actuator skips the
// movement entirely.
func (c *Controller) apply(ctx context.Context, decision Decision, source string) error {
	target := decision.Action.target()

	c.logger.Info(decision.Reason,
		"action", decision.Action,
		"mode", c.mode,
		"source", source,
	)

	started := c.now()
	var err error
	if decision.Action == ActionOpen {
		err = c.actuator.Open(ctx)
	} else {
		err = c.actuator.Close(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrActuatorNotReady) {
			c.logger.Warn("actuator not ready, movement skipped", "action", decision.Action)
			return nil
		}
		return fmt.Errorf("actuating door (%s): %w", decision.Action, err)
	}
	duration := c.now().Sub(started)

	c.state = target
	if err := c.stateSlot.Write(string(target)); err != nil {
		return fmt.Errorf("persisting door state: %w", err)
	}

	c.logger.Info("door moved", "state", target, "duration", duration.String())

	// Observability is best-effort and never fails the iteration.
	if c.events != nil {
		event := Event{
			Action: decision.Action,
			State:  target,
			Mode:   c.mode,
			Source: source,
			Reason: decision.Reason,
		}
		if err := c.events.RecordEvent(ctx, event); err != nil {
			c.logger.Error("recording door event", "error", err)
		}
	}
	if c.status != nil {
		if err := c.status.PublishDoorState(string(target)); err != nil {
			c.logger.Warn("publishing door state", "error", err)
		}
	}
	if c.telemetry != nil {
		c.telemetry.WriteDoorEvent(string(decision.Action), string(target), string(c.mode), source, duration)
	}

	return nil
}

// State returns the controller's in-memory door state. Primarily for tests
// and status reporting.
func (c *Controller) State() State {
	return c.state
}

// Mode returns the controller's in-memory door mode.
func (c *Controller) Mode() Mode {
	return c.mode
}
