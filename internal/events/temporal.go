package events

import (
	"fmt"
	"time"
)

// TemporalStatus is the time-derived lifecycle stage of an event,
// independent of attendance.
type TemporalStatus string

const (
	TemporalUpcoming   TemporalStatus = "UPCOMING"
	TemporalLocked     TemporalStatus = "LOCKED"
	TemporalInProgress TemporalStatus = "IN_PROGRESS"
	TemporalPassed     TemporalStatus = "PASSED"
	TemporalCancelled  TemporalStatus = "CANCELLED"
)

const (
	DefaultDurationMinutes = 120
	DefaultCutoffMinutes   = 30
)

// EventTime carries the time fields needed to derive temporal status.
// All instants are UTC; Timezone is display-only and never affects derivation.
type EventTime struct {
	StartAt         time.Time
	EndAt           *time.Time
	DurationMinutes int
	CutoffMinutes   int
	Cancelled       bool
	Timezone        string
}

// End returns the explicit end time, or start + duration when absent.
func (t EventTime) End() time.Time {
	if t.EndAt != nil {
		return *t.EndAt
	}
	duration := t.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	return t.StartAt.Add(time.Duration(duration) * time.Minute)
}

// Cutoff returns the join-freeze window length.
func (t EventTime) Cutoff() time.Duration {
	cutoff := t.CutoffMinutes
	if cutoff <= 0 {
		cutoff = DefaultCutoffMinutes
	}
	return time.Duration(cutoff) * time.Minute
}

// LockStart returns the instant joins freeze: start − cutoff.
// Cutoff is always measured from start, never from end.
func (t EventTime) LockStart() time.Time {
	return t.StartAt.Add(-t.Cutoff())
}

// ResolveTemporalStatus derives the temporal status of an event at a given
// instant. Pure and total: the same inputs always yield the same status, which
// the allocation engine relies on for its idempotency checks. Cancellation is
// terminal and checked before any time comparison.
func ResolveTemporalStatus(t EventTime, now time.Time) TemporalStatus {
	if t.Cancelled {
		return TemporalCancelled
	}
	switch {
	case now.Before(t.LockStart()):
		return TemporalUpcoming
	case now.Before(t.StartAt):
		return TemporalLocked
	case now.Before(t.End()):
		return TemporalInProgress
	default:
		return TemporalPassed
	}
}

// IsJoinable reports whether new seats or waitlist entries may be created.
func (s TemporalStatus) IsJoinable() bool {
	return s == TemporalUpcoming
}

// BlockedReason returns the user-facing explanation for a non-joinable status.
func BlockedReason(status TemporalStatus, cutoffMinutes int) string {
	if cutoffMinutes <= 0 {
		cutoffMinutes = DefaultCutoffMinutes
	}
	switch status {
	case TemporalCancelled:
		return "This event has been cancelled"
	case TemporalPassed:
		return "This event has already ended"
	case TemporalInProgress:
		return "Event is currently in progress"
	case TemporalLocked:
		return fmt.Sprintf("Joins are locked %d minutes before the event starts", cutoffMinutes)
	default:
		return ""
	}
}
