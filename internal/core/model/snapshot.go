package model

import "time"

// TimerSnapshot is the complete state of the single active timer.
// Timestamps are absolute wall-clock values so a snapshot restored
// after a process restart stays valid without clock-rate assumptions.
type TimerSnapshot struct {
	// RecordID identifies the open record in the remote store.
	// Empty means no timer is active.
	RecordID string `json:"record_id"`

	// TaskID is the task this timer measures. Set at start, fixed until stop.
	TaskID string `json:"task_id"`

	// StartedAt is when the timer was opened (local clock, not server clock).
	StartedAt time.Time `json:"started_at"`

	// IsPaused reports whether a pause interval is currently open.
	IsPaused bool `json:"is_paused"`

	// PauseStartedAt is the moment the current pause began.
	// Zero whenever IsPaused is false.
	PauseStartedAt time.Time `json:"pause_started_at,omitempty"`

	// TotalPausedSeconds accumulates all completed pause intervals.
	// The currently open pause, if any, is not included.
	TotalPausedSeconds float64 `json:"total_paused_seconds"`

	// AdjustmentSeconds is the operator correction, stored as seconds
	// subtracted from the raw elapsed count: a positive value reduces
	// billable time, a negative value credits it.
	AdjustmentSeconds int64 `json:"adjustment_seconds"`
}

// Active reports whether a remote record is open for this snapshot.
func (snapshot TimerSnapshot) Active() bool {
	return snapshot.RecordID != ""
}

// OpenResult is the remote store's answer to opening a record.
type OpenResult struct {
	// RecordID is the handle for the newly opened record.
	RecordID string

	// Status is the store's result code. Zero is the only success.
	Status int
}

// CloseRequest carries the final accounting for a record being closed.
type CloseRequest struct {
	// RecordID is the handle returned by Open.
	RecordID string

	// BillableSeconds is the final billable duration, passed to the store
	// as the adjustment to subtract from its own elapsed count.
	BillableSeconds int64

	// Description is the operator's summary of the work. Empty when
	// SaveImmediately is set.
	Description string

	// SaveImmediately finalizes with the current duration and no description.
	SaveImmediately bool

	// IdempotencyKey is fixed per stop intent so a retried close after a
	// failure cannot double-charge time.
	IdempotencyKey string
}
