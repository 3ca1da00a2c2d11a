package timerclock

import (
	"testing"
	"time"

	"timepunch/internal/core/model"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func runningSnapshot() model.TimerSnapshot {
	return model.TimerSnapshot{
		RecordID:  "rec-1",
		TaskID:    "task-1",
		StartedAt: baseTime,
	}
}

func TestElapsedSeconds(t *testing.T) {
	snapshot := runningSnapshot()

	if got := ElapsedSeconds(snapshot, baseTime.Add(90*time.Second)); got != 90 {
		t.Errorf("ElapsedSeconds() = %v, want 90", got)
	}
	if got := ElapsedSeconds(snapshot, baseTime); got != 0 {
		t.Errorf("ElapsedSeconds() at start = %v, want 0", got)
	}
}

func TestElapsedSecondsClockSkew(t *testing.T) {
	snapshot := runningSnapshot()

	// now before startedAt clamps to zero instead of going negative
	if got := ElapsedSeconds(snapshot, baseTime.Add(-10*time.Second)); got != 0 {
		t.Errorf("ElapsedSeconds() with skewed clock = %v, want 0", got)
	}
}

func TestCurrentPauseSeconds(t *testing.T) {
	snapshot := runningSnapshot()
	now := baseTime.Add(60 * time.Second)

	if got := CurrentPauseSeconds(snapshot, now); got != 0 {
		t.Errorf("CurrentPauseSeconds() while running = %v, want 0", got)
	}

	snapshot.IsPaused = true
	snapshot.PauseStartedAt = baseTime.Add(40 * time.Second)
	if got := CurrentPauseSeconds(snapshot, now); got != 20 {
		t.Errorf("CurrentPauseSeconds() = %v, want 20", got)
	}
}

func TestBillableSeconds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.TimerSnapshot)
		at     time.Duration
		want   float64
	}{
		{
			name:   "NoPausesNoAdjustment",
			mutate: func(*model.TimerSnapshot) {},
			at:     120 * time.Second,
			want:   120,
		},
		{
			name: "CompletedPauseSubtracted",
			mutate: func(snapshot *model.TimerSnapshot) {
				snapshot.TotalPausedSeconds = 30
			},
			at:   120 * time.Second,
			want: 90,
		},
		{
			name: "OpenPauseSubtracted",
			mutate: func(snapshot *model.TimerSnapshot) {
				snapshot.IsPaused = true
				snapshot.PauseStartedAt = baseTime.Add(100 * time.Second)
			},
			at:   120 * time.Second,
			want: 100,
		},
		{
			name: "PositiveAdjustmentReduces",
			mutate: func(snapshot *model.TimerSnapshot) {
				snapshot.AdjustmentSeconds = 360
			},
			at:   600 * time.Second,
			want: 240,
		},
		{
			name: "NegativeAdjustmentCredits",
			mutate: func(snapshot *model.TimerSnapshot) {
				snapshot.AdjustmentSeconds = -360
			},
			at:   600 * time.Second,
			want: 960,
		},
		{
			name: "ClampedAtZero",
			mutate: func(snapshot *model.TimerSnapshot) {
				snapshot.AdjustmentSeconds = 360
			},
			at:   120 * time.Second,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := runningSnapshot()
			tt.mutate(&snapshot)
			got := BillableSeconds(snapshot, baseTime.Add(tt.at))
			if got != tt.want {
				t.Errorf("BillableSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBillableNeverExceedsElapsed(t *testing.T) {
	// Pauses and a positive adjustment only ever subtract, so billable
	// stays within [0, elapsed] at every instant, skewed clocks included.
	snapshot := runningSnapshot()
	snapshot.TotalPausedSeconds = 15
	snapshot.AdjustmentSeconds = 5

	for _, offset := range []time.Duration{-time.Minute, 0, time.Second, time.Minute, time.Hour} {
		now := baseTime.Add(offset)
		elapsed := ElapsedSeconds(snapshot, now)
		billable := BillableSeconds(snapshot, now)
		if elapsed < 0 || billable < 0 {
			t.Errorf("negative duration at offset %v: elapsed=%v billable=%v", offset, elapsed, billable)
		}
		if billable > elapsed {
			t.Errorf("billable %v exceeds elapsed %v at offset %v", billable, elapsed, offset)
		}
	}
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3599, "00:59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
		{90.7, "00:01:30"},
	}

	for _, tt := range tests {
		if got := FormatHMS(tt.seconds); got != tt.want {
			t.Errorf("FormatHMS(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
