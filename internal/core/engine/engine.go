package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"timepunch/internal/core/model"
	"timepunch/internal/core/timerclock"
)

// Engine errors.
var (
	// ErrInvalidTransition indicates a command issued from a state that
	// does not support it. This is a caller bug, not a retryable failure.
	ErrInvalidTransition = errors.New("invalid timer transition")

	// ErrBusy indicates a remote open or close call is already in flight.
	ErrBusy = errors.New("remote operation in progress")

	// ErrDescriptionRequired indicates Stop was called in the confirmed
	// flow without a description.
	ErrDescriptionRequired = errors.New("description required")

	// ErrTaskRequired indicates Start was called without a task.
	ErrTaskRequired = errors.New("task required")

	// ErrRemoteRejected indicates the store answered with a non-success code.
	ErrRemoteRejected = errors.New("time record store rejected the request")
)

// RecordStore opens and closes authoritative timer records.
// A Status of zero on Open is the only acceptable success.
type RecordStore interface {
	Open(ctx context.Context, taskID string) (model.OpenResult, error)
	Close(ctx context.Context, req model.CloseRequest) error
}

// SnapshotStore is the durable scope used for local crash recovery.
// Load returns nil with no error when no snapshot is stored.
type SnapshotStore interface {
	Load() (*model.TimerSnapshot, error)
	Save(snapshot *model.TimerSnapshot) error
	Clear() error
}

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration

	// Now overrides the wall clock. Nil means time.Now.
	Now func() time.Time
}

// Engine owns the single process-wide timer: it applies commands,
// drives the display tick while running, mirrors every mutation into
// the durable scope, and talks to the remote store at start and stop.
type Engine struct {
	mu       sync.Mutex
	snapshot model.TimerSnapshot
	store    RecordStore
	scope    SnapshotStore
	options  Config
	now      func() time.Time
	events   []chan Event
	stopTick chan struct{}
	busy     bool
	closeKey string
}

// New creates an Engine backed by the given record store and durable scope.
func New(store RecordStore, scope SnapshotStore, options Config) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:   store,
		scope:   scope,
		options: options,
		now:     now,
	}
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Shutdown cancels the tick and closes observer channels.
// The snapshot is left in the durable scope for recovery.
func (engine *Engine) Shutdown() {
	engine.mu.Lock()
	engine.stopTickingLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Recover adopts a snapshot left in the durable scope by a previous
// process. Timestamps are absolute, so the snapshot is taken verbatim;
// the remote store is not contacted.
func (engine *Engine) Recover() error {
	engine.mu.Lock()
	if engine.snapshot.Active() {
		engine.mu.Unlock()
		return fmt.Errorf("%w: recover with active timer", ErrInvalidTransition)
	}

	snapshot, err := engine.scope.Load()
	if err != nil {
		engine.mu.Unlock()
		return fmt.Errorf("load timer snapshot: %w", err)
	}
	if snapshot == nil || !snapshot.Active() {
		engine.mu.Unlock()
		return nil
	}

	engine.snapshot = *snapshot
	if !engine.snapshot.IsPaused {
		engine.startTickingLocked()
	}
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	return nil
}

// Start opens a record for the task and begins timing.
// Valid only from Idle; the engine stays Idle if the store refuses.
func (engine *Engine) Start(ctx context.Context, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return ErrTaskRequired
	}

	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if engine.snapshot.Active() {
		engine.mu.Unlock()
		return fmt.Errorf("%w: start while active", ErrInvalidTransition)
	}
	engine.busy = true
	engine.mu.Unlock()

	result, err := engine.store.Open(ctx, taskID)

	engine.mu.Lock()
	engine.busy = false
	if err != nil {
		engine.mu.Unlock()
		return fmt.Errorf("open time record: %w", err)
	}
	if result.Status != 0 || result.RecordID == "" {
		engine.mu.Unlock()
		return fmt.Errorf("%w: open status %d", ErrRemoteRejected, result.Status)
	}

	engine.snapshot = model.TimerSnapshot{
		RecordID:  result.RecordID,
		TaskID:    taskID,
		StartedAt: engine.now(),
	}
	persistErr := engine.persistLocked()
	engine.startTickingLocked()
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	return persistErr
}

// Pause freezes the billable counter. Valid only from Running.
func (engine *Engine) Pause() error {
	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if !engine.snapshot.Active() || engine.snapshot.IsPaused {
		engine.mu.Unlock()
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, engine.stateLocked())
	}

	engine.snapshot.IsPaused = true
	engine.snapshot.PauseStartedAt = engine.now()
	persistErr := engine.persistLocked()
	engine.stopTickingLocked()
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	return persistErr
}

// Resume closes the open pause interval and continues timing.
// Valid only from Paused.
func (engine *Engine) Resume() error {
	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if !engine.snapshot.Active() || !engine.snapshot.IsPaused {
		engine.mu.Unlock()
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, engine.stateLocked())
	}

	engine.closePauseLocked(engine.now())
	persistErr := engine.persistLocked()
	engine.startTickingLocked()
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	return persistErr
}

// AdjustMinutes applies a manual correction to the billable duration.
// Positive minutes reduce billable time, negative minutes credit it,
// with a floor of zero at reporting time. Valid from Running or Paused.
func (engine *Engine) AdjustMinutes(minutes int) error {
	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if !engine.snapshot.Active() {
		engine.mu.Unlock()
		return fmt.Errorf("%w: adjust while idle", ErrInvalidTransition)
	}

	engine.snapshot.AdjustmentSeconds += int64(minutes) * 60
	persistErr := engine.persistLocked()
	event := engine.tickEventLocked(engine.now())
	engine.mu.Unlock()

	engine.emit(event)
	return persistErr
}

// Stop computes the final billable duration, closes the remote record,
// and resets to Idle. Valid from Running or Paused.
//
// With saveImmediately the description is discarded and the record is
// finalized with whatever is on the clock (abrupt teardown, e.g. task
// switch). Otherwise a non-empty description is required before the
// close call is issued.
//
// The snapshot keeps its pre-stop state while the close call is in
// flight: a failed close leaves the engine exactly as it was so the
// operator can retry without losing time.
func (engine *Engine) Stop(ctx context.Context, saveImmediately bool, description string) error {
	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if !engine.snapshot.Active() {
		engine.mu.Unlock()
		return fmt.Errorf("%w: stop while idle", ErrInvalidTransition)
	}
	if saveImmediately {
		description = ""
	} else if strings.TrimSpace(description) == "" {
		engine.mu.Unlock()
		return ErrDescriptionRequired
	}

	now := engine.now()
	final := engine.snapshot
	if final.IsPaused {
		closed := now.Sub(final.PauseStartedAt).Seconds()
		if closed > 0 {
			final.TotalPausedSeconds += closed
		}
		final.IsPaused = false
		final.PauseStartedAt = time.Time{}
	}

	// The key outlives a failed close so the retry cannot double-charge.
	if engine.closeKey == "" {
		engine.closeKey = uuid.NewString()
	}
	request := model.CloseRequest{
		RecordID:        final.RecordID,
		BillableSeconds: int64(math.Round(timerclock.BillableSeconds(final, now))),
		Description:     description,
		SaveImmediately: saveImmediately,
		IdempotencyKey:  engine.closeKey,
	}
	engine.busy = true
	engine.mu.Unlock()

	err := engine.store.Close(ctx, request)

	engine.mu.Lock()
	engine.busy = false
	if err != nil {
		engine.mu.Unlock()
		return fmt.Errorf("close time record: %w", err)
	}

	engine.resetLocked()
	clearErr := engine.scope.Clear()
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	if clearErr != nil {
		return fmt.Errorf("clear timer snapshot: %w", clearErr)
	}
	return nil
}

// Discard drops the local timer without calling the remote store.
// Valid from any non-Idle state. Callers own the decision between
// Discard and Stop; this never closes the server-side record.
func (engine *Engine) Discard() error {
	engine.mu.Lock()
	if engine.busy {
		engine.mu.Unlock()
		return ErrBusy
	}
	if !engine.snapshot.Active() {
		engine.mu.Unlock()
		return fmt.Errorf("%w: discard while idle", ErrInvalidTransition)
	}

	engine.resetLocked()
	clearErr := engine.scope.Clear()
	event := engine.stateEventLocked()
	engine.mu.Unlock()

	engine.emit(event)
	if clearErr != nil {
		return fmt.Errorf("clear timer snapshot: %w", clearErr)
	}
	return nil
}

// State returns the current timer state.
func (engine *Engine) State() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.stateLocked()
}

// IsActive reports whether a timer is running or paused.
func (engine *Engine) IsActive() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshot.Active()
}

// IsPaused reports whether the timer is paused.
func (engine *Engine) IsPaused() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshot.Active() && engine.snapshot.IsPaused
}

// Snapshot returns a copy of the current timer snapshot.
func (engine *Engine) Snapshot() model.TimerSnapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshot
}

// ElapsedSeconds returns wall-clock seconds since start, or zero when idle.
func (engine *Engine) ElapsedSeconds(now time.Time) float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.snapshot.Active() {
		return 0
	}
	return timerclock.ElapsedSeconds(engine.snapshot, now)
}

// BillableSeconds returns the current adjusted duration, or zero when idle.
func (engine *Engine) BillableSeconds(now time.Time) float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.snapshot.Active() {
		return 0
	}
	return timerclock.BillableSeconds(engine.snapshot, now)
}

func (engine *Engine) stateLocked() State {
	switch {
	case !engine.snapshot.Active():
		return StateIdle
	case engine.snapshot.IsPaused:
		return StatePaused
	default:
		return StateRunning
	}
}

func (engine *Engine) closePauseLocked(now time.Time) {
	closed := now.Sub(engine.snapshot.PauseStartedAt).Seconds()
	if closed > 0 {
		engine.snapshot.TotalPausedSeconds += closed
	}
	engine.snapshot.IsPaused = false
	engine.snapshot.PauseStartedAt = time.Time{}
}

func (engine *Engine) resetLocked() {
	engine.stopTickingLocked()
	engine.snapshot = model.TimerSnapshot{}
	engine.closeKey = ""
}

func (engine *Engine) persistLocked() error {
	snapshot := engine.snapshot
	if err := engine.scope.Save(&snapshot); err != nil {
		return fmt.Errorf("save timer snapshot: %w", err)
	}
	return nil
}

func (engine *Engine) startTickingLocked() {
	if engine.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	engine.stopTick = stop
	go engine.run(stop)
}

func (engine *Engine) stopTickingLocked() {
	if engine.stopTick == nil {
		return
	}
	close(engine.stopTick)
	engine.stopTick = nil
}

func (engine *Engine) run(stop chan struct{}) {
	ticker := time.NewTicker(engine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			engine.tick()
		}
	}
}

func (engine *Engine) tick() {
	engine.mu.Lock()
	if !engine.snapshot.Active() || engine.snapshot.IsPaused {
		engine.mu.Unlock()
		return
	}
	event := engine.tickEventLocked(engine.now())
	engine.mu.Unlock()

	engine.emit(event)
}

func (engine *Engine) stateEventLocked() Event {
	now := engine.now()
	return engine.eventLocked(EventStateChange, now)
}

func (engine *Engine) tickEventLocked(now time.Time) Event {
	return engine.eventLocked(EventTick, now)
}

func (engine *Engine) eventLocked(eventType EventType, now time.Time) Event {
	event := Event{
		Type:   eventType,
		State:  engine.stateLocked(),
		TaskID: engine.snapshot.TaskID,
		At:     now,
	}
	if engine.snapshot.Active() {
		event.ElapsedSeconds = timerclock.ElapsedSeconds(engine.snapshot, now)
		event.BillableSeconds = timerclock.BillableSeconds(engine.snapshot, now)
	}
	event.Elapsed = timerclock.FormatHMS(event.ElapsedSeconds)
	event.Billable = timerclock.FormatHMS(event.BillableSeconds)
	return event
}

func (engine *Engine) emit(event Event) {
	engine.mu.Lock()
	events := append([]chan Event(nil), engine.events...)
	engine.mu.Unlock()

	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
