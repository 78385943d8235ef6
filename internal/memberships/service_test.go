package memberships

import (
	"context"
	"errors"
	"testing"
	"time"

	"gameon/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventService struct {
	events map[uuid.UUID]*events.Event
}

func (f *fakeEventService) GetEventModel(_ context.Context, id uuid.UUID) (*events.Event, error) {
	if event, ok := f.events[id]; ok {
		return event, nil
	}
	return nil, events.ErrEventNotFound
}

type fakeInviteChecker struct {
	invited map[uuid.UUID]bool
}

func (f *fakeInviteChecker) IsInvited(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	return f.invited[userID], nil
}

type notification struct {
	kind    string
	eventID uuid.UUID
	userID  uuid.UUID
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (f *fakeNotifier) NotifyWaitlistPromoted(_ context.Context, eventID, userID uuid.UUID) error {
	f.sent = append(f.sent, notification{"waitlist_promoted", eventID, userID})
	return f.err
}

func (f *fakeNotifier) NotifyRequestAccepted(_ context.Context, eventID, userID uuid.UUID) error {
	f.sent = append(f.sent, notification{"request_accepted", eventID, userID})
	return f.err
}

func (f *fakeNotifier) NotifyEventConfirmed(_ context.Context, eventID, hostID uuid.UUID) error {
	f.sent = append(f.sent, notification{"event_confirmed", eventID, hostID})
	return f.err
}

func newTestService(event *events.Event, invited map[uuid.UUID]bool) (Service, *fakeNotifier) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	eventService := &fakeEventService{events: map[uuid.UUID]*events.Event{event.ID: event}}

	svc := NewService(engine, store, eventService, &fakeInviteChecker{invited: invited})
	svc.(*service).now = func() time.Time { return testNow }
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)
	return svc, notifier
}

func TestServiceNotifiesEventConfirmed(t *testing.T) {
	ctx := context.Background()
	event := testEvent(1, events.VisibilityPublic)
	svc, notifier := newTestService(event, nil)

	res, err := svc.ClaimSeat(ctx, event.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, res.Confirmed)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "event_confirmed", notifier.sent[0].kind)
	assert.Equal(t, event.HostID, notifier.sent[0].userID)
}

func TestServiceNotifiesWaitlistPromotion(t *testing.T) {
	ctx := context.Background()
	event := testEvent(1, events.VisibilityPublic)
	svc, notifier := newTestService(event, nil)

	alice, bob := uuid.New(), uuid.New()
	_, err := svc.ClaimSeat(ctx, event.ID, alice)
	require.NoError(t, err)
	_, err = svc.ClaimSeat(ctx, event.ID, bob)
	require.NoError(t, err)

	notifier.sent = nil

	res, err := svc.LeaveSeat(ctx, event.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, res.PromotedUserID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "waitlist_promoted", notifier.sent[0].kind)
	assert.Equal(t, bob, notifier.sent[0].userID)
}

func TestServiceAcceptRequest(t *testing.T) {
	ctx := context.Background()
	event := testEvent(1, events.VisibilityInviteManual)
	svc, notifier := newTestService(event, nil)

	alice := uuid.New()
	_, err := svc.RequestToJoin(ctx, event.ID, alice)
	require.NoError(t, err)

	// Only the host may accept.
	_, err = svc.AcceptRequest(ctx, event.ID, uuid.New(), alice)
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Empty(t, notifier.sent)

	res, err := svc.AcceptRequest(ctx, event.ID, event.HostID, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Confirmed)

	// Acceptance notifies the member; the confirming seat also notifies the host.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "request_accepted", notifier.sent[0].kind)
	assert.Equal(t, alice, notifier.sent[0].userID)
	assert.Equal(t, "event_confirmed", notifier.sent[1].kind)
}

func TestServiceNotificationFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	event := testEvent(1, events.VisibilityPublic)
	svc, notifier := newTestService(event, nil)
	notifier.err = errors.New("broker unavailable")

	res, err := svc.ClaimSeat(ctx, event.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Confirmed)
}

func TestServiceInviteAutoGate(t *testing.T) {
	ctx := context.Background()
	event := testEvent(2, events.VisibilityInviteAuto)
	alice, bob := uuid.New(), uuid.New()
	svc, _ := newTestService(event, map[uuid.UUID]bool{alice: true})

	res, err := svc.ClaimSeat(ctx, event.ID, alice)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StateAttending, res.State)

	res, err = svc.ClaimSeat(ctx, event.ID, bob)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeBlockedInviteRequired, res.Outcome)
}

func TestServiceGetMembership(t *testing.T) {
	ctx := context.Background()
	event := testEvent(1, events.VisibilityPublic)
	svc, _ := newTestService(event, nil)

	alice, bob := uuid.New(), uuid.New()
	_, err := svc.ClaimSeat(ctx, event.ID, alice)
	require.NoError(t, err)
	_, err = svc.ClaimSeat(ctx, event.ID, bob)
	require.NoError(t, err)

	status, err := svc.GetMembership(ctx, event.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, StateWaitlisted, status.State)
	assert.Equal(t, 1, status.WaitlistPosition)
	assert.Equal(t, events.TemporalUpcoming, status.TemporalStatus)
	assert.Equal(t, events.EventStatusConfirmed, status.EventStatus)
	assert.Equal(t, OutcomeAlreadyWaitlisted, status.Eligibility.Outcome)

	// A stranger sees the waitlist affordance on the full event.
	status, err = svc.GetMembership(ctx, event.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StateNone, status.State)
	assert.Equal(t, OutcomeWaitlist, status.Eligibility.Outcome)

	_, err = svc.GetMembership(ctx, uuid.New(), alice)
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}
