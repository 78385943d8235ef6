package memberships

import (
	"fmt"
	"time"

	"gameon/internal/events"
)

// Outcome is the closed set of join-eligibility results.
type Outcome string

const (
	OutcomeAttend                Outcome = "ATTEND"
	OutcomeWaitlist              Outcome = "WAITLIST"
	OutcomeRequest               Outcome = "REQUEST"
	OutcomeAlreadyAttending      Outcome = "ALREADY_ATTENDING"
	OutcomeAlreadyWaitlisted     Outcome = "ALREADY_WAITLISTED"
	OutcomeAlreadyRequested      Outcome = "ALREADY_REQUESTED"
	OutcomeBlocked               Outcome = "BLOCKED"
	OutcomeBlockedEventClosed    Outcome = "BLOCKED_EVENT_CLOSED"
	OutcomeBlockedJoinsLocked    Outcome = "BLOCKED_JOINS_LOCKED"
	OutcomeBlockedInviteRequired Outcome = "BLOCKED_INVITE_REQUIRED"
)

// Eligibility is the answer to "what happens if this user taps join now".
type Eligibility struct {
	Outcome Outcome `json:"outcome"`
	CanAct  bool    `json:"can_act"`
	Reason  string  `json:"reason"`
	CTA     string  `json:"cta"`
}

// ResolveEligibility combines temporal status, current membership, visibility
// and capacity into a single outcome. Pure: it never mutates state. It is
// consulted before every user-facing affordance and re-applied inside the
// engine at execution time as a defense against stale reads.
//
// Precedence, first match wins: cancelled, passed, locked (unless the user
// already holds a membership), existing membership state, invite gate,
// request gate, capacity.
func ResolveEligibility(event *events.Event, m Membership, attendeeCount int, isInvited bool, now time.Time) Eligibility {
	temporal := event.StatusAt(now)

	switch temporal {
	case events.TemporalCancelled:
		return Eligibility{
			Outcome: OutcomeBlockedEventClosed,
			Reason:  "Event was cancelled",
			CTA:     "Cancelled",
		}
	case events.TemporalPassed:
		return Eligibility{
			Outcome: OutcomeBlockedEventClosed,
			Reason:  "Event has ended",
			CTA:     "Ended",
		}
	case events.TemporalLocked, events.TemporalInProgress:
		if m.State == StateNone {
			return Eligibility{
				Outcome: OutcomeBlockedJoinsLocked,
				Reason:  events.BlockedReason(events.TemporalLocked, event.CutoffMinutes),
				CTA:     "Locked",
			}
		}
	}

	switch m.State {
	case StateAttending:
		return Eligibility{
			Outcome: OutcomeAlreadyAttending,
			CanAct:  true, // can tap to leave
			Reason:  "You are already attending this event",
			CTA:     "Leave",
		}
	case StateWaitlisted:
		return Eligibility{
			Outcome: OutcomeAlreadyWaitlisted,
			CanAct:  true, // can tap to leave the waitlist
			Reason:  "You are on the waitlist",
			CTA:     "Leave Waitlist",
		}
	case StateRequested:
		return Eligibility{
			Outcome: OutcomeAlreadyRequested,
			Reason:  "Your request to join is pending host approval",
			CTA:     "Requested",
		}
	case StateBlocked:
		return Eligibility{
			Outcome: OutcomeBlocked,
			Reason:  "You cannot join this event",
			CTA:     "Blocked",
		}
	}

	if event.Visibility == events.VisibilityInviteAuto && !isInvited {
		return Eligibility{
			Outcome: OutcomeBlockedInviteRequired,
			Reason:  "You need an invite to join this event",
			CTA:     "Invite Required",
		}
	}

	if event.Visibility == events.VisibilityInviteManual {
		return Eligibility{
			Outcome: OutcomeRequest,
			CanAct:  true,
			Reason:  "Request permission to join this event",
			CTA:     "Request to Join",
		}
	}

	if attendeeCount < event.MaxSlots {
		return Eligibility{
			Outcome: OutcomeAttend,
			CanAct:  true,
			Reason:  "Tap to join this event",
			CTA:     "Join",
		}
	}
	return Eligibility{
		Outcome: OutcomeWaitlist,
		CanAct:  true,
		Reason:  "This event is full. Tap to join the waitlist.",
		CTA:     "Join Waitlist",
	}
}

// waitlistMessage renders the position copy shown on waitlist transitions.
func waitlistMessage(position int) string {
	return fmt.Sprintf("Event full — you're #%d on waitlist", position)
}
