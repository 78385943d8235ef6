package memberships

import (
	"testing"
	"time"

	"gameon/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveEligibility(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	eventID, userID := uuid.New(), uuid.New()

	upcoming := func(maxSlots int, visibility events.Visibility) *events.Event {
		return &events.Event{
			ID:              eventID,
			MaxSlots:        maxSlots,
			Visibility:      visibility,
			StartAt:         now.Add(4 * time.Hour),
			DurationMinutes: 120,
			CutoffMinutes:   30,
			HostID:          uuid.New(),
		}
	}
	member := func(state State) Membership {
		return Membership{EventID: eventID, UserID: userID, State: state}
	}

	t.Run("cancelled blocks regardless of capacity", func(t *testing.T) {
		event := upcoming(10, events.VisibilityPublic)
		event.Cancelled = true
		got := ResolveEligibility(event, member(StateNone), 0, false, now)
		assert.Equal(t, OutcomeBlockedEventClosed, got.Outcome)
		assert.False(t, got.CanAct)
		assert.Equal(t, "Cancelled", got.CTA)
	})

	t.Run("passed blocks", func(t *testing.T) {
		event := upcoming(10, events.VisibilityPublic)
		event.StartAt = now.Add(-3 * time.Hour)
		got := ResolveEligibility(event, member(StateNone), 0, false, now)
		assert.Equal(t, OutcomeBlockedEventClosed, got.Outcome)
		assert.Equal(t, "Ended", got.CTA)
	})

	t.Run("locked blocks a non member", func(t *testing.T) {
		event := upcoming(10, events.VisibilityPublic)
		event.StartAt = now.Add(10 * time.Minute)
		got := ResolveEligibility(event, member(StateNone), 0, false, now)
		assert.Equal(t, OutcomeBlockedJoinsLocked, got.Outcome)
		assert.False(t, got.CanAct)
	})

	t.Run("locked still reports an existing membership", func(t *testing.T) {
		event := upcoming(10, events.VisibilityPublic)
		event.StartAt = now.Add(10 * time.Minute)
		got := ResolveEligibility(event, member(StateAttending), 5, false, now)
		assert.Equal(t, OutcomeAlreadyAttending, got.Outcome)
		assert.True(t, got.CanAct)
	})

	t.Run("existing states short circuit capacity", func(t *testing.T) {
		event := upcoming(1, events.VisibilityPublic)

		got := ResolveEligibility(event, member(StateWaitlisted), 1, false, now)
		assert.Equal(t, OutcomeAlreadyWaitlisted, got.Outcome)
		assert.True(t, got.CanAct)

		got = ResolveEligibility(event, member(StateRequested), 1, false, now)
		assert.Equal(t, OutcomeAlreadyRequested, got.Outcome)
		assert.False(t, got.CanAct)

		got = ResolveEligibility(event, member(StateBlocked), 0, false, now)
		assert.Equal(t, OutcomeBlocked, got.Outcome)
		assert.False(t, got.CanAct)
	})

	t.Run("invite_auto gates on the invite", func(t *testing.T) {
		event := upcoming(10, events.VisibilityInviteAuto)

		got := ResolveEligibility(event, member(StateNone), 0, false, now)
		assert.Equal(t, OutcomeBlockedInviteRequired, got.Outcome)
		assert.False(t, got.CanAct)

		got = ResolveEligibility(event, member(StateNone), 0, true, now)
		assert.Equal(t, OutcomeAttend, got.Outcome)
		assert.True(t, got.CanAct)
	})

	t.Run("invite_manual routes to request", func(t *testing.T) {
		event := upcoming(10, events.VisibilityInviteManual)
		got := ResolveEligibility(event, member(StateNone), 0, false, now)
		assert.Equal(t, OutcomeRequest, got.Outcome)
		assert.True(t, got.CanAct)
		assert.Equal(t, "Request to Join", got.CTA)
	})

	t.Run("capacity decides attend versus waitlist", func(t *testing.T) {
		event := upcoming(2, events.VisibilityPublic)

		got := ResolveEligibility(event, member(StateNone), 1, false, now)
		assert.Equal(t, OutcomeAttend, got.Outcome)
		assert.True(t, got.CanAct)

		got = ResolveEligibility(event, member(StateNone), 2, false, now)
		assert.Equal(t, OutcomeWaitlist, got.Outcome)
		assert.True(t, got.CanAct)
		assert.Equal(t, "Join Waitlist", got.CTA)
	})
}
