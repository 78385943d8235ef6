package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveTemporalStatus(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	base := EventTime{
		StartAt:         start,
		DurationMinutes: 120,
		CutoffMinutes:   30,
	}

	tests := []struct {
		name string
		time EventTime
		now  time.Time
		want TemporalStatus
	}{
		{
			name: "well before lock window",
			time: base,
			now:  start.Add(-24 * time.Hour),
			want: TemporalUpcoming,
		},
		{
			name: "one second before lock window",
			time: base,
			now:  start.Add(-30*time.Minute - time.Second),
			want: TemporalUpcoming,
		},
		{
			name: "exactly at lock start",
			time: base,
			now:  start.Add(-30 * time.Minute),
			want: TemporalLocked,
		},
		{
			name: "inside lock window",
			time: base,
			now:  start.Add(-time.Minute),
			want: TemporalLocked,
		},
		{
			name: "exactly at start",
			time: base,
			now:  start,
			want: TemporalInProgress,
		},
		{
			name: "mid event",
			time: base,
			now:  start.Add(time.Hour),
			want: TemporalInProgress,
		},
		{
			name: "exactly at end",
			time: base,
			now:  start.Add(2 * time.Hour),
			want: TemporalPassed,
		},
		{
			name: "long after end",
			time: base,
			now:  start.Add(48 * time.Hour),
			want: TemporalPassed,
		},
		{
			name: "cancelled wins over upcoming",
			time: EventTime{StartAt: start, DurationMinutes: 120, CutoffMinutes: 30, Cancelled: true},
			now:  start.Add(-24 * time.Hour),
			want: TemporalCancelled,
		},
		{
			name: "cancelled wins over passed",
			time: EventTime{StartAt: start, DurationMinutes: 120, CutoffMinutes: 30, Cancelled: true},
			now:  start.Add(48 * time.Hour),
			want: TemporalCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemporalStatus(tt.time, tt.now))
		})
	}
}

func TestResolveTemporalStatusDefaults(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	et := EventTime{StartAt: start} // no duration, no cutoff

	// Default cutoff is 30 minutes.
	assert.Equal(t, TemporalUpcoming, ResolveTemporalStatus(et, start.Add(-31*time.Minute)))
	assert.Equal(t, TemporalLocked, ResolveTemporalStatus(et, start.Add(-29*time.Minute)))

	// Default duration is 120 minutes.
	assert.Equal(t, TemporalInProgress, ResolveTemporalStatus(et, start.Add(119*time.Minute)))
	assert.Equal(t, TemporalPassed, ResolveTemporalStatus(et, start.Add(120*time.Minute)))
}

func TestEndPrefersExplicitEndTime(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	et := EventTime{StartAt: start, EndAt: &end, DurationMinutes: 120}

	assert.Equal(t, end, et.End())
	assert.Equal(t, TemporalPassed, ResolveTemporalStatus(et, start.Add(time.Hour)))
}

func TestIsJoinable(t *testing.T) {
	assert.True(t, TemporalUpcoming.IsJoinable())
	assert.False(t, TemporalLocked.IsJoinable())
	assert.False(t, TemporalInProgress.IsJoinable())
	assert.False(t, TemporalPassed.IsJoinable())
	assert.False(t, TemporalCancelled.IsJoinable())
}
