package memberships

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gameon/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testEvent(maxSlots int, visibility events.Visibility) *events.Event {
	return &events.Event{
		ID:              uuid.New(),
		Title:           "Tuesday Futsal",
		MaxSlots:        maxSlots,
		Visibility:      visibility,
		StartAt:         testNow.Add(4 * time.Hour),
		DurationMinutes: 120,
		CutoffMinutes:   30,
		Timezone:        "UTC",
		HostID:          uuid.New(),
	}
}

func newTestEngine(store Store) *Engine {
	return NewEngine(store, WithClock(func() time.Time { return testNow }))
}

func TestClaimSeatFillsThenWaitlists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := newTestEngine(store)
	event := testEvent(2, events.VisibilityPublic)

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	res, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)
	assert.False(t, res.Confirmed)
	assert.Equal(t, "Successfully joined!", res.Message)

	// Second seat fills the event.
	res, err = engine.ClaimSeat(ctx, event, bob, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Confirmed)
	assert.Equal(t, "Event confirmed! You're in!", res.Message)

	// Third joiner overflows onto the waitlist.
	res, err = engine.ClaimSeat(ctx, event, carol, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateWaitlisted, res.State)
	assert.Equal(t, 1, res.WaitlistPosition)
	assert.Equal(t, "Event full — you're #1 on waitlist", res.Message)

	attendees, err := store.CountAttending(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, attendees)
}

func TestClaimSeatIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(1, events.VisibilityPublic)

	alice, bob := uuid.New(), uuid.New()

	_, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)

	// Repeat claim while attending is a successful no-op.
	res, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeAlreadyAttending, res.Outcome)
	assert.Equal(t, "You are already attending this event", res.Message)

	_, err = engine.ClaimSeat(ctx, event, bob, false)
	require.NoError(t, err)

	// Repeat claim while waitlisted reports the current position, no new ticket.
	res, err = engine.ClaimSeat(ctx, event, bob, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeAlreadyWaitlisted, res.Outcome)
	assert.Equal(t, 1, res.WaitlistPosition)

	maxOrder, err := engine.store.MaxWaitlistOrder(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, maxOrder)
}

func TestConcurrentClaimsSingleSeat(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := newTestEngine(store)
	event := testEvent(1, events.VisibilityPublic)

	const claimers = 8
	results := make([]*Result, claimers)
	errs := make([]error, claimers)

	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.ClaimSeat(ctx, event, uuid.New(), false)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	attending := 0
	positions := make(map[int]bool)
	for _, res := range results {
		assert.True(t, res.Success)
		switch res.State {
		case StateAttending:
			attending++
		case StateWaitlisted:
			positions[res.WaitlistPosition] = true
		}
	}

	// Exactly one winner; everyone else holds a distinct waitlist position.
	assert.Equal(t, 1, attending)
	assert.Len(t, positions, claimers-1)
	for p := 1; p < claimers; p++ {
		assert.True(t, positions[p], "missing waitlist position %d", p)
	}

	count, err := store.CountAttending(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeaveSeatPromotesInOrder(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(1, events.VisibilityPublic)

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	for _, u := range []uuid.UUID{alice, bob, carol} {
		_, err := engine.ClaimSeat(ctx, event, u, false)
		require.NoError(t, err)
	}

	res, err := engine.LeaveSeat(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Left event. A waitlisted member was promoted!", res.Message)
	require.NotNil(t, res.PromotedUserID)
	assert.Equal(t, bob, *res.PromotedUserID)

	m, err := engine.store.Get(ctx, event.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, StateAttending, m.State)
	assert.Nil(t, m.WaitlistOrder)

	// Carol moves up to position 1 without her ticket being reissued.
	position, err := engine.store.WaitlistPosition(ctx, event.ID, carol)
	require.NoError(t, err)
	assert.Equal(t, 1, position)

	carolRecord, err := engine.store.Get(ctx, event.ID, carol)
	require.NoError(t, err)
	require.NotNil(t, carolRecord.WaitlistOrder)
	assert.Equal(t, 2, *carolRecord.WaitlistOrder)
}

func TestLeaveSeatNoOpWhenNotAttending(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)

	res, err := engine.LeaveSeat(ctx, event, uuid.New())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateNone, res.State)
	assert.Equal(t, "You are not attending this event", res.Message)
}

func TestLeaveSeatReleasesCapacity(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(1, events.VisibilityPublic)
	alice := uuid.New()

	_, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)

	res, err := engine.LeaveSeat(ctx, event, alice)
	require.NoError(t, err)
	assert.Equal(t, "Successfully left event.", res.Message)
	assert.Nil(t, res.PromotedUserID)

	// The freed seat is claimable again, including by the same user.
	res, err = engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)
}

func TestLeaveWaitlistKeepsRemainingOrders(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(1, events.VisibilityPublic)

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	for _, u := range []uuid.UUID{alice, bob, carol} {
		_, err := engine.ClaimSeat(ctx, event, u, false)
		require.NoError(t, err)
	}

	res, err := engine.LeaveWaitlist(ctx, event, bob)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully left waitlist", res.Message)

	// Carol's rank shrinks to 1; her ticket stays at 2.
	position, err := engine.store.WaitlistPosition(ctx, event.ID, carol)
	require.NoError(t, err)
	assert.Equal(t, 1, position)

	m, err := engine.store.Get(ctx, event.ID, carol)
	require.NoError(t, err)
	require.NotNil(t, m.WaitlistOrder)
	assert.Equal(t, 2, *m.WaitlistOrder)

	// Alice's seat is untouched.
	count, err := engine.store.CountAttending(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeaveWaitlistNoOpWhenNotWaitlisted(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)
	alice := uuid.New()

	res, err := engine.LeaveWaitlist(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "You are not on the waitlist", res.Message)

	_, err = engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)

	res, err = engine.LeaveWaitlist(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)
	assert.Equal(t, fmt.Sprintf("You are %s (not waitlisted)", StateAttending), res.Message)
}

func TestClaimSeatCancelledEvent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)
	event.Cancelled = true

	res, err := engine.ClaimSeat(ctx, event, uuid.New(), false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedEventClosed, res.Outcome)
	assert.Equal(t, "This event has been cancelled", res.Message)
}

func TestClaimSeatInsideLockWindow(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)
	event.StartAt = testNow.Add(10 * time.Minute) // inside the 30 minute cutoff

	res, err := engine.ClaimSeat(ctx, event, uuid.New(), false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedJoinsLocked, res.Outcome)
	assert.Equal(t, "Joins are locked 30 minutes before the event starts", res.Message)
}

func TestClaimSeatPassedEvent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)
	event.StartAt = testNow.Add(-3 * time.Hour)

	res, err := engine.ClaimSeat(ctx, event, uuid.New(), false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedEventClosed, res.Outcome)
	assert.Equal(t, "This event has already ended", res.Message)
}

func TestNoPromotionAfterLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	clock := testNow
	engine := NewEngine(store, WithClock(func() time.Time { return clock }))
	event := testEvent(1, events.VisibilityPublic)

	alice, bob := uuid.New(), uuid.New()
	_, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	_, err = engine.ClaimSeat(ctx, event, bob, false)
	require.NoError(t, err)

	// Advance into the lock window; leaving still works but the roster is frozen.
	clock = event.StartAt.Add(-5 * time.Minute)

	res, err := engine.LeaveSeat(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully left event.", res.Message)
	assert.Nil(t, res.PromotedUserID)

	m, err := store.Get(ctx, event.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, StateWaitlisted, m.State)
}

func TestClaimSeatInviteAutoRequiresInvite(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityInviteAuto)
	alice := uuid.New()

	res, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedInviteRequired, res.Outcome)

	res, err = engine.ClaimSeat(ctx, event, alice, true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)
}

func TestRequestToJoin(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityInviteManual)
	alice := uuid.New()

	res, err := engine.RequestToJoin(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateRequested, res.State)
	assert.Equal(t, "Request submitted successfully", res.Message)

	// Repeat request is a successful no-op.
	res, err = engine.RequestToJoin(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeAlreadyRequested, res.Outcome)
}

func TestRequestToJoinRejectsNonManualEvent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(2, events.VisibilityPublic)

	res, err := engine.RequestToJoin(ctx, event, uuid.New())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "This event does not require requests", res.Message)
}

func TestAcceptRequest(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(NewMemoryStore())
	event := testEvent(1, events.VisibilityInviteManual)

	alice, bob := uuid.New(), uuid.New()

	// Accepting a user who never requested fails.
	res, err := engine.AcceptRequest(ctx, event, alice)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "User has not requested to join this event", res.Message)

	_, err = engine.RequestToJoin(ctx, event, alice)
	require.NoError(t, err)
	_, err = engine.RequestToJoin(ctx, event, bob)
	require.NoError(t, err)

	res, err = engine.AcceptRequest(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)
	assert.Equal(t, "User joined successfully", res.Message)
	assert.True(t, res.Confirmed)

	// Accepting while full lands the user on the waitlist.
	res, err = engine.AcceptRequest(ctx, event, bob)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateWaitlisted, res.State)
	assert.Equal(t, "User added to waitlist (accepted while full)", res.Message)
	assert.Equal(t, 1, res.WaitlistPosition)

	m, err := engine.store.Get(ctx, event.ID, bob)
	require.NoError(t, err)
	assert.Nil(t, m.RequestedAt)
}

func TestAcceptRequestBlockedAfterLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	clock := testNow
	engine := NewEngine(store, WithClock(func() time.Time { return clock }))
	event := testEvent(2, events.VisibilityInviteManual)
	alice := uuid.New()

	_, err := engine.RequestToJoin(ctx, event, alice)
	require.NoError(t, err)

	clock = event.StartAt.Add(-5 * time.Minute)

	res, err := engine.AcceptRequest(ctx, event, alice)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedJoinsLocked, res.Outcome)
	assert.Equal(t, StateRequested, res.State)
}

func TestThrottleRejectsRapidRetry(t *testing.T) {
	ctx := context.Background()

	throttle := NewThrottle(3 * time.Second)
	throttle.now = func() time.Time { return testNow }

	engine := NewEngine(NewMemoryStore(),
		WithClock(func() time.Time { return testNow }),
		WithThrottle(throttle),
	)
	event := testEvent(2, events.VisibilityPublic)
	alice := uuid.New()

	res, err := engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = engine.ClaimSeat(ctx, event, alice, false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, throttledMessage, res.Message)

	// The cooldown is per operation: leaving is not throttled by the claim.
	res, err = engine.LeaveSeat(ctx, event, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully left event.", res.Message)
}
