package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetDefaultsToNone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m, err := store.Get(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StateNone, m.State)
	assert.Nil(t, m.JoinedAt)
	assert.Nil(t, m.WaitlistOrder)
}

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	eventID, userID := uuid.New(), uuid.New()

	joinedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, Membership{
		EventID:  eventID,
		UserID:   userID,
		State:    StateAttending,
		JoinedAt: &joinedAt,
	}))

	m, err := store.Get(ctx, eventID, userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, StateAttending, m.State)
	require.NotNil(t, m.JoinedAt)
	assert.Equal(t, joinedAt, *m.JoinedAt)

	// Put overwrites the same (event, user) key rather than adding a row.
	m.State = StateNone
	m.JoinedAt = nil
	require.NoError(t, store.Put(ctx, m))

	count, err := store.CountAttending(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	eventID, otherEventID := uuid.New(), uuid.New()

	put := func(eventID uuid.UUID, state State, order *int) {
		require.NoError(t, store.Put(ctx, Membership{
			EventID:       eventID,
			UserID:        uuid.New(),
			State:         state,
			WaitlistOrder: order,
		}))
	}
	orderOf := func(n int) *int { return &n }

	put(eventID, StateAttending, nil)
	put(eventID, StateAttending, nil)
	put(eventID, StateWaitlisted, orderOf(1))
	put(eventID, StateRequested, nil)
	put(otherEventID, StateAttending, nil)

	attending, err := store.CountAttending(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, attending)

	waitlisted, err := store.CountWaitlisted(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, waitlisted)
}

func TestMemoryStoreWaitlistOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	eventID := uuid.New()

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	for i, userID := range []uuid.UUID{first, second, third} {
		order := i + 1
		require.NoError(t, store.Put(ctx, Membership{
			EventID:       eventID,
			UserID:        userID,
			State:         StateWaitlisted,
			WaitlistOrder: &order,
		}))
	}

	maxOrder, err := store.MaxWaitlistOrder(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, maxOrder)

	next, err := store.NextWaitlisted(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, first, next.UserID)

	position, err := store.WaitlistPosition(ctx, eventID, third)
	require.NoError(t, err)
	assert.Equal(t, 3, position)

	// Removing the head shifts ranks without touching surviving orders.
	head, err := store.Get(ctx, eventID, first)
	require.NoError(t, err)
	head.State = StateNone
	head.WaitlistOrder = nil
	require.NoError(t, store.Put(ctx, head))

	next, err = store.NextWaitlisted(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, second, next.UserID)

	position, err = store.WaitlistPosition(ctx, eventID, third)
	require.NoError(t, err)
	assert.Equal(t, 2, position)

	remaining, err := store.Get(ctx, eventID, third)
	require.NoError(t, err)
	require.NotNil(t, remaining.WaitlistOrder)
	assert.Equal(t, 3, *remaining.WaitlistOrder)
}

func TestMemoryStoreWaitlistEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	eventID := uuid.New()

	maxOrder, err := store.MaxWaitlistOrder(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, maxOrder)

	next, err := store.NextWaitlisted(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, next)

	position, err := store.WaitlistPosition(ctx, eventID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, position)
}

func TestMemoryStoreListByUserSkipsNone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	userID := uuid.New()

	require.NoError(t, store.Put(ctx, Membership{
		EventID: uuid.New(), UserID: userID, State: StateAttending,
	}))
	require.NoError(t, store.Put(ctx, Membership{
		EventID: uuid.New(), UserID: userID, State: StateNone,
	}))
	require.NoError(t, store.Put(ctx, Membership{
		EventID: uuid.New(), UserID: uuid.New(), State: StateAttending,
	}))

	memberships, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, StateAttending, memberships[0].State)
	assert.Equal(t, userID, memberships[0].UserID)
}
