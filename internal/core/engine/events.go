package engine

import "time"

// State represents the current timer mode.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
)

// Event represents an engine update for observers.
type Event struct {
	Type            EventType
	State           State
	TaskID          string
	ElapsedSeconds  float64
	BillableSeconds float64
	Elapsed         string
	Billable        string
	At              time.Time
}
