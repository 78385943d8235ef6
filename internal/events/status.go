package events

// EventStatus is the display-level projection combining temporal status,
// cancellation and attendance. It is derived, never stored.
type EventStatus string

const (
	EventStatusPending   EventStatus = "PENDING"
	EventStatusConfirmed EventStatus = "CONFIRMED"
	EventStatusLocked    EventStatus = "LOCKED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusEnded     EventStatus = "ENDED"
)

// ResolveEventStatus projects an event's display status. Cancellation
// overrides everything; temporal end/freeze states come next; otherwise any
// attendee at all marks the event confirmed.
func ResolveEventStatus(attendeeCount int, cancelled bool, temporal TemporalStatus) EventStatus {
	if cancelled || temporal == TemporalCancelled {
		return EventStatusCancelled
	}
	if temporal == TemporalPassed {
		return EventStatusEnded
	}
	if temporal == TemporalLocked || temporal == TemporalInProgress {
		return EventStatusLocked
	}
	if attendeeCount > 0 {
		return EventStatusConfirmed
	}
	return EventStatusPending
}
