package door

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/coop-core/internal/solar"
	"github.com/nerrad567/coop-core/internal/statestore"
)

// fakeActuator counts movements and optionally fails.
type fakeActuator struct {
	mu     sync.Mutex
	opens  int
	closes int
	err    error
}

func (f *fakeActuator) Open(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.opens++
	return nil
}

func (f *fakeActuator) Close(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.closes++
	return nil
}

func (f *fakeActuator) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens, f.closes
}

// fakeCalculator returns a fixed window and counts recomputes.
type fakeCalculator struct {
	window   solar.Window
	err      error
	computes int
}

func (f *fakeCalculator) WindowFor(_ time.Time) (solar.Window, error) {
	f.computes++
	return f.window, f.err
}

func (f *fakeCalculator) Location() *time.Location {
	return time.UTC
}

// fakeEvents records events in memory.
type fakeEvents struct {
	events []Event
}

func (f *fakeEvents) RecordEvent(_ context.Context, e Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEvents) GetRecent(_ context.Context, _ int) ([]Event, error) {
	return f.events, nil
}

type testHarness struct {
	controller *Controller
	stateSlot  *statestore.Slot
	modeSlot   *statestore.Slot
	actuator   *fakeActuator
	calc       *fakeCalculator
	events     *fakeEvents
	clock      time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	dir := t.TempDir()
	h := &testHarness{
		stateSlot: statestore.NewSlot(filepath.Join(dir, "door_state"), string(StateOpen), string(StateClosed)),
		modeSlot:  statestore.NewSlot(filepath.Join(dir, "door_mode"), string(ModeAuto), string(ModeManual)),
		actuator:  &fakeActuator{},
		calc:      &fakeCalculator{window: testWindow("")},
		events:    &fakeEvents{},
		clock:     at(10, 0), // mid-morning by default
	}

	controller, err := NewController(ControllerOptions{
		StateSlot:    h.stateSlot,
		ModeSlot:     h.modeSlot,
		Actuator:     h.actuator,
		Calculator:   h.calc,
		PollInterval: time.Millisecond,
		Events:       h.events,
		Now:          func() time.Time { return h.clock },
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	h.controller = controller
	return h
}

func (h *testHarness) persist(t *testing.T, slot *statestore.Slot, value string) {
	t.Helper()
	if err := slot.Write(value); err != nil {
		t.Fatalf("seeding record: %v", err)
	}
}

func TestNewController_RequiredOptions(t *testing.T) {
	_, err := NewController(ControllerOptions{})
	if err == nil {
		t.Error("NewController() with no options expected error")
	}
}

func TestController_FreshInstallFailsOpen(t *testing.T) {
	h := newHarness(t)
	// No records exist at all: mode defaults to auto, absent state opens
	// the door and persists open.
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	opens, _ := h.actuator.counts()
	if opens != 1 {
		t.Errorf("opens = %d, want 1 (fail-open recovery)", opens)
	}
	if got, err := h.stateSlot.Read(); err != nil || got != string(StateOpen) {
		t.Errorf("persisted state = %q, %v, want %q", got, err, "open")
	}
	if got, err := h.modeSlot.Read(); err != nil || got != string(ModeAuto) {
		t.Errorf("persisted mode = %q, %v, want %q", got, err, "auto")
	}
	if len(h.events.events) != 1 || h.events.events[0].Source != EventSourceRecovery {
		t.Errorf("events = %+v, want one recovery event", h.events.events)
	}
}

func TestController_AutoOpensDuringDaylight(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateClosed))
	h.clock = at(10, 0)

	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	opens, closes := h.actuator.counts()
	if opens != 1 || closes != 0 {
		t.Errorf("opens, closes = %d, %d, want 1, 0", opens, closes)
	}
	if got, _ := h.stateSlot.Read(); got != string(StateOpen) {
		t.Errorf("persisted state = %q, want %q", got, "open")
	}
}

func TestController_AutoClosesBeforeSunrise(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateOpen))
	h.clock = at(4, 0)

	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	opens, closes := h.actuator.counts()
	if opens != 0 || closes != 1 {
		t.Errorf("opens, closes = %d, %d, want 0, 1", opens, closes)
	}
}

func TestController_AutoClosesAfterSunsetBuffer(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateOpen))
	h.clock = at(19, 0)

	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	_, closes := h.actuator.counts()
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
	if got, _ := h.stateSlot.Read(); got != string(StateClosed) {
		t.Errorf("persisted state = %q, want %q", got, "closed")
	}
}

func TestController_EarliestOpenGate(t *testing.T) {
	h := newHarness(t)
	h.calc.window = testWindow("07:00:00")
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateClosed))

	// 06:30: inside daylight but before the earliest-open gate.
	h.clock = at(6, 30)
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if opens, _ := h.actuator.counts(); opens != 0 {
		t.Errorf("opens = %d before earliest open, want 0", opens)
	}

	// 07:01: the gate has passed.
	h.clock = at(7, 1)
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if opens, _ := h.actuator.counts(); opens != 1 {
		t.Errorf("opens = %d after earliest open, want 1", opens)
	}
}

func TestController_ManualOverride(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeManual))
	h.persist(t, h.stateSlot, string(StateOpen))

	// First iteration seeds the in-memory view; no movement.
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if opens, closes := h.actuator.counts(); opens != 0 || closes != 0 {
		t.Errorf("opens, closes after seed = %d, %d, want 0, 0", opens, closes)
	}

	// An operator writes "closed" between iterations: exactly one close.
	h.persist(t, h.stateSlot, string(StateClosed))
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if opens, closes := h.actuator.counts(); opens != 0 || closes != 1 {
		t.Errorf("opens, closes = %d, %d, want 0, 1", opens, closes)
	}
	if h.controller.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.controller.State())
	}

	// Re-iterating with no further edits must not actuate again.
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if _, closes := h.actuator.counts(); closes != 1 {
		t.Errorf("closes = %d after idle iteration, want still 1", closes)
	}

	if len(h.events.events) != 1 || h.events.events[0].Source != EventSourceManual {
		t.Errorf("events = %+v, want one manual event", h.events.events)
	}
}

func TestController_AutoAdoptsExternalState(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateOpen))
	h.clock = at(10, 0)

	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	// Someone corrects the record to "closed" (ground truth, not a command).
	// In auto mode during daylight the loop adopts it, then the policy sees
	// a closed door in daylight and opens it.
	h.persist(t, h.stateSlot, string(StateClosed))
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	opens, _ := h.actuator.counts()
	if opens != 1 {
		t.Errorf("opens = %d, want 1 (adopted then re-opened by policy)", opens)
	}
}

func TestController_WindowRecomputedOncePerDate(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateOpen))
	h.clock = at(10, 0)

	for i := 0; i < 3; i++ {
		if err := h.controller.Iterate(context.Background()); err != nil {
			t.Fatalf("Iterate() error = %v", err)
		}
	}
	if h.calc.computes != 1 {
		t.Errorf("window computed %d times on one date, want 1", h.calc.computes)
	}

	// Midnight passes.
	h.clock = h.clock.Add(24 * time.Hour)
	for i := 0; i < 2; i++ {
		if err := h.controller.Iterate(context.Background()); err != nil {
			t.Fatalf("Iterate() error = %v", err)
		}
	}
	if h.calc.computes != 2 {
		t.Errorf("window computed %d times across two dates, want 2", h.calc.computes)
	}
}

func TestController_ActuatorFailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateClosed))
	h.clock = at(10, 0)
	h.actuator.err = errors.New("motor stalled")

	err := h.controller.Iterate(context.Background())
	if err == nil {
		t.Fatal("Iterate() = nil, want actuation error")
	}

	// The record still says closed: the door did not move.
	if got, _ := h.stateSlot.Read(); got != string(StateClosed) {
		t.Errorf("persisted state = %q after failed actuation, want %q", got, "closed")
	}

	// The failure is transient: once the motor recovers, the next
	// iteration retries and succeeds.
	h.actuator.err = nil
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() after recovery error = %v", err)
	}
	if got, _ := h.stateSlot.Read(); got != string(StateOpen) {
		t.Errorf("persisted state = %q after retry, want %q", got, "open")
	}
}

func TestController_NotReadyActuatorSkipsMovement(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateClosed))
	h.clock = at(10, 0)
	h.actuator.err = ErrActuatorNotReady

	// Not-ready is a no-op, not an iteration failure.
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v, want nil for not-ready actuator", err)
	}
	if got, _ := h.stateSlot.Read(); got != string(StateClosed) {
		t.Errorf("persisted state = %q, want unchanged %q", got, "closed")
	}
}

func TestController_ModeChangeAloneDoesNotActuate(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeManual))
	h.persist(t, h.stateSlot, string(StateOpen))

	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	// Flip the mode record; the state record is untouched, so nothing moves.
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.clock = at(10, 0) // daylight, door already open
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	opens, closes := h.actuator.counts()
	if opens != 0 || closes != 0 {
		t.Errorf("opens, closes = %d, %d, want no movement from mode change", opens, closes)
	}
	if h.controller.Mode() != ModeAuto {
		t.Errorf("Mode() = %v, want auto", h.controller.Mode())
	}
}

func TestController_RunStopsOnCancellation(t *testing.T) {
	h := newHarness(t)
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateOpen))
	h.clock = at(10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.controller.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}

func TestController_DegradedWindowDoesNotStopLoop(t *testing.T) {
	h := newHarness(t)
	h.calc.err = solar.ErrInvalidTimeOfDay
	h.persist(t, h.modeSlot, string(ModeAuto))
	h.persist(t, h.stateSlot, string(StateClosed))
	h.clock = at(10, 0)

	// The degraded window is still applied; daylight still opens the door.
	if err := h.controller.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if opens, _ := h.actuator.counts(); opens != 1 {
		t.Errorf("opens = %d with degraded window, want 1", opens)
	}
}
