package timerclock

import (
	"fmt"
	"time"

	"timepunch/internal/core/model"
)

// ElapsedSeconds returns the wall-clock seconds since the timer opened,
// including all pauses. Clamped to zero if the clock moved backwards.
func ElapsedSeconds(snapshot model.TimerSnapshot, now time.Time) float64 {
	elapsed := now.Sub(snapshot.StartedAt).Seconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// CurrentPauseSeconds returns the length of the currently open pause
// interval, or zero when the timer is not paused.
func CurrentPauseSeconds(snapshot model.TimerSnapshot, now time.Time) float64 {
	if !snapshot.IsPaused {
		return 0
	}
	paused := now.Sub(snapshot.PauseStartedAt).Seconds()
	if paused < 0 {
		return 0
	}
	return paused
}

// BillableSeconds returns the adjusted duration reported for billing:
// elapsed time minus completed pauses, minus the open pause, minus the
// manual adjustment. Never negative.
func BillableSeconds(snapshot model.TimerSnapshot, now time.Time) float64 {
	billable := ElapsedSeconds(snapshot, now) -
		snapshot.TotalPausedSeconds -
		CurrentPauseSeconds(snapshot, now) -
		float64(snapshot.AdjustmentSeconds)
	if billable < 0 {
		return 0
	}
	return billable
}

// FormatHMS renders a second count as zero-padded HH:MM:SS.
// Hours are unbounded; negative input renders as 00:00:00.
func FormatHMS(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
