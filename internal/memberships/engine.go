package memberships

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gameon/internal/events"
	"gameon/pkg/logger"

	"github.com/google/uuid"
)

// Operation names used for throttle keys.
const (
	opClaimSeat     = "claim_seat"
	opLeaveSeat     = "leave_seat"
	opLeaveWaitlist = "leave_waitlist"
	opRequestToJoin = "request_to_join"
	opAcceptRequest = "accept_request"
)

const throttledMessage = "Please wait a moment before trying again"

// Engine is the seat allocation state machine. Every operation is idempotent:
// re-invoking against unchanged state returns the same result without a
// duplicate effect. Capacity is a property of the whole event, so every
// read-capacity/decide/write sequence runs under a per-event lock — including
// the promotion that follows a seat release, so a concurrent claim cannot
// steal the freed seat from the next waitlisted member.
type Engine struct {
	store    Store
	locks    eventLocks
	throttle *Throttle
	log      *logger.Logger
	now      func() time.Time
}

type EngineOption func(*Engine)

// WithThrottle enables the advisory per-(user, event, operation) cooldown.
func WithThrottle(t *Throttle) EngineOption {
	return func(e *Engine) { e.throttle = t }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store: store,
		log:   logger.GetDefault(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// eventLocks hands out one mutex per event ID. Locks are held only across an
// in-memory decide-and-write, never across external I/O beyond the store.
type eventLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *eventLocks) lock(eventID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	return m
}

func (e *Engine) allow(userID, eventID uuid.UUID, operation string) bool {
	if e.throttle == nil {
		return true
	}
	return e.throttle.Allow(userID, eventID, operation)
}

// ClaimSeat attempts to attend the event, or joins the waitlist when full.
// Preconditions, in order: the event must be UPCOMING; invite_auto events
// require an invite; an existing ATTENDING/WAITLISTED/REQUESTED membership is
// returned unchanged as a successful no-op, and BLOCKED fails.
func (e *Engine) ClaimSeat(ctx context.Context, event *events.Event, userID uuid.UUID, isInvited bool) (*Result, error) {
	if !e.allow(userID, event.ID, opClaimSeat) {
		e.log.LogThrottledOperation(ctx, event.ID.String(), userID.String(), opClaimSeat)
		return &Result{State: StateNone, Message: throttledMessage}, nil
	}

	lock := e.locks.lock(event.ID)
	lock.Lock()
	defer lock.Unlock()

	m, err := e.store.Get(ctx, event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	now := e.now()
	if blocked := temporalRejection(event, m.State, now); blocked != nil {
		return blocked, nil
	}

	attendees, err := e.store.CountAttending(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}

	// Re-derive eligibility at execution time; the caller's earlier read may
	// be stale.
	eligibility := ResolveEligibility(event, m, attendees, isInvited, now)
	switch eligibility.Outcome {
	case OutcomeBlockedInviteRequired:
		return &Result{State: m.State, Outcome: eligibility.Outcome, Message: eligibility.Reason}, nil
	case OutcomeBlocked:
		return &Result{State: m.State, Outcome: eligibility.Outcome, Message: eligibility.Reason}, nil
	case OutcomeAlreadyAttending:
		return &Result{
			Success: true,
			State:   StateAttending,
			Outcome: eligibility.Outcome,
			Message: "You are already attending this event",
		}, nil
	case OutcomeAlreadyWaitlisted:
		position, err := e.store.WaitlistPosition(ctx, event.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute waitlist position: %w", err)
		}
		return &Result{
			Success:          true,
			State:            StateWaitlisted,
			Outcome:          eligibility.Outcome,
			Message:          fmt.Sprintf("You are already on the waitlist (position %d)", position),
			WaitlistPosition: position,
		}, nil
	case OutcomeAlreadyRequested:
		return &Result{
			Success: true,
			State:   StateRequested,
			Outcome: eligibility.Outcome,
			Message: "You have already requested to join this event",
		}, nil
	}

	return e.seatOrWaitlist(ctx, event, m, attendees, now)
}

// LeaveSeat stops attending. A non-attending caller gets a successful no-op
// with their actual state. Releasing a seat promotes the lowest-ordered
// waitlisted member, but only while the event is still UPCOMING — never into a
// locked or ended event — and within the same critical section as the release.
func (e *Engine) LeaveSeat(ctx context.Context, event *events.Event, userID uuid.UUID) (*Result, error) {
	if !e.allow(userID, event.ID, opLeaveSeat) {
		return &Result{State: StateNone, Message: throttledMessage}, nil
	}

	lock := e.locks.lock(event.ID)
	lock.Lock()
	defer lock.Unlock()

	m, err := e.store.Get(ctx, event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	if m.State != StateAttending {
		message := "You are not attending this event"
		if m.State != StateNone {
			message = fmt.Sprintf("You are %s (not attending)", m.State)
		}
		return &Result{Success: true, State: m.State, Message: message}, nil
	}

	m.State = StateNone
	m.JoinedAt = nil
	if err := e.store.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to release seat: %w", err)
	}
	e.log.LogMembershipTransition(ctx, event.ID.String(), userID.String(), string(StateAttending), string(StateNone))

	result := &Result{Success: true, State: StateNone, Message: "Successfully left event."}

	if event.StatusAt(e.now()).IsJoinable() {
		promoted, err := e.promoteNext(ctx, event)
		if err != nil {
			return nil, err
		}
		if promoted != nil {
			result.Message = "Left event. A waitlisted member was promoted!"
			result.PromotedUserID = &promoted.UserID
		}
	}
	return result, nil
}

// LeaveWaitlist removes the caller from the waitlist. No seat is freed, so no
// promotion runs, and surviving entries keep their orders — rank is computed
// at read time.
func (e *Engine) LeaveWaitlist(ctx context.Context, event *events.Event, userID uuid.UUID) (*Result, error) {
	if !e.allow(userID, event.ID, opLeaveWaitlist) {
		return &Result{State: StateNone, Message: throttledMessage}, nil
	}

	lock := e.locks.lock(event.ID)
	lock.Lock()
	defer lock.Unlock()

	m, err := e.store.Get(ctx, event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	if m.State != StateWaitlisted {
		message := "You are not on the waitlist"
		if m.State != StateNone {
			message = fmt.Sprintf("You are %s (not waitlisted)", m.State)
		}
		return &Result{Success: true, State: m.State, Message: message}, nil
	}

	m.State = StateNone
	m.WaitlistedAt = nil
	m.WaitlistOrder = nil
	if err := e.store.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to leave waitlist: %w", err)
	}
	e.log.LogMembershipTransition(ctx, event.ID.String(), userID.String(), string(StateWaitlisted), string(StateNone))

	return &Result{Success: true, State: StateNone, Message: "Successfully left waitlist"}, nil
}

// RequestToJoin files a join request on an invite_manual event. Idempotent
// against existing REQUESTED/ATTENDING/WAITLISTED states.
func (e *Engine) RequestToJoin(ctx context.Context, event *events.Event, userID uuid.UUID) (*Result, error) {
	if !e.allow(userID, event.ID, opRequestToJoin) {
		return &Result{State: StateNone, Message: throttledMessage}, nil
	}

	if event.Visibility != events.VisibilityInviteManual {
		return &Result{State: StateNone, Message: "This event does not require requests"}, nil
	}

	lock := e.locks.lock(event.ID)
	lock.Lock()
	defer lock.Unlock()

	m, err := e.store.Get(ctx, event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	switch m.State {
	case StateRequested:
		return &Result{
			Success: true,
			State:   StateRequested,
			Outcome: OutcomeAlreadyRequested,
			Message: "You have already requested to join this event",
		}, nil
	case StateAttending:
		return &Result{
			Success: true,
			State:   StateAttending,
			Outcome: OutcomeAlreadyAttending,
			Message: "You are already attending this event",
		}, nil
	case StateWaitlisted:
		return &Result{
			Success: true,
			State:   StateWaitlisted,
			Outcome: OutcomeAlreadyWaitlisted,
			Message: "You are already on the waitlist",
		}, nil
	case StateBlocked:
		return &Result{State: StateBlocked, Outcome: OutcomeBlocked, Message: "You cannot join this event"}, nil
	}

	now := e.now()
	if blocked := temporalRejection(event, m.State, now); blocked != nil {
		return blocked, nil
	}

	requestedAt := now
	m.State = StateRequested
	m.RequestedAt = &requestedAt
	if err := e.store.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to store join request: %w", err)
	}
	e.log.LogMembershipTransition(ctx, event.ID.String(), userID.String(), string(StateNone), string(StateRequested))

	return &Result{Success: true, State: StateRequested, Message: "Request submitted successfully"}, nil
}

// AcceptRequest is the host-side approval of a pending request. It requires an
// existing REQUESTED membership: silently succeeding on a missing request
// would hide a host error, so that case fails. The seat/waitlist branching
// mirrors ClaimSeat, and the same UPCOMING-only freeze applies.
func (e *Engine) AcceptRequest(ctx context.Context, event *events.Event, userID uuid.UUID) (*Result, error) {
	if !e.allow(userID, event.ID, opAcceptRequest) {
		return &Result{State: StateNone, Message: throttledMessage}, nil
	}

	lock := e.locks.lock(event.ID)
	lock.Lock()
	defer lock.Unlock()

	m, err := e.store.Get(ctx, event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	now := e.now()
	if blocked := temporalRejection(event, m.State, now); blocked != nil {
		return blocked, nil
	}

	if m.State != StateRequested {
		return &Result{State: m.State, Message: "User has not requested to join this event"}, nil
	}

	attendees, err := e.store.CountAttending(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}

	m.RequestedAt = nil
	result, err := e.seatOrWaitlist(ctx, event, m, attendees, now)
	if err != nil {
		return nil, err
	}
	if result.Success {
		if result.State == StateAttending {
			result.Message = "User joined successfully"
		} else {
			result.Message = "User added to waitlist (accepted while full)"
		}
	}
	return result, nil
}

// seatOrWaitlist performs the capacity branch shared by ClaimSeat and
// AcceptRequest. Must be called with the event lock held.
func (e *Engine) seatOrWaitlist(ctx context.Context, event *events.Event, m Membership, attendees int, now time.Time) (*Result, error) {
	from := m.State

	if attendees < event.MaxSlots {
		joinedAt := now
		m.State = StateAttending
		m.JoinedAt = &joinedAt
		m.WaitlistedAt = nil
		m.WaitlistOrder = nil
		if err := e.store.Put(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to claim seat: %w", err)
		}
		e.log.LogMembershipTransition(ctx, event.ID.String(), m.UserID.String(), string(from), string(StateAttending))

		confirmed := attendees+1 == event.MaxSlots
		message := "Successfully joined!"
		if confirmed {
			message = "Event confirmed! You're in!"
		}
		return &Result{
			Success:   true,
			State:     StateAttending,
			Message:   message,
			Confirmed: confirmed,
		}, nil
	}

	maxOrder, err := e.store.MaxWaitlistOrder(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read waitlist order: %w", err)
	}
	order := maxOrder + 1
	waitlistedAt := now
	m.State = StateWaitlisted
	m.WaitlistedAt = &waitlistedAt
	m.WaitlistOrder = &order
	m.JoinedAt = nil
	if err := e.store.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to join waitlist: %w", err)
	}
	e.log.LogMembershipTransition(ctx, event.ID.String(), m.UserID.String(), string(from), string(StateWaitlisted))

	position, err := e.store.WaitlistPosition(ctx, event.ID, m.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute waitlist position: %w", err)
	}
	return &Result{
		Success:          true,
		State:            StateWaitlisted,
		Message:          waitlistMessage(position),
		WaitlistPosition: position,
	}, nil
}

// promoteNext moves the lowest-ordered waitlisted member into the freed seat.
// Must be called with the event lock held and only for UPCOMING events.
func (e *Engine) promoteNext(ctx context.Context, event *events.Event) (*Membership, error) {
	attendees, err := e.store.CountAttending(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}
	if attendees >= event.MaxSlots {
		return nil, nil
	}

	next, err := e.store.NextWaitlisted(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read waitlist head: %w", err)
	}
	if next == nil {
		return nil, nil
	}

	joinedAt := e.now()
	next.State = StateAttending
	next.JoinedAt = &joinedAt
	next.WaitlistedAt = nil
	next.WaitlistOrder = nil
	if err := e.store.Put(ctx, *next); err != nil {
		return nil, fmt.Errorf("failed to promote waitlisted member: %w", err)
	}

	e.log.LogWaitlistPromotion(ctx, event.ID.String(), next.UserID.String())
	return next, nil
}

// temporalRejection maps a non-UPCOMING temporal status to its policy
// rejection; nil means the event is open for joins.
func temporalRejection(event *events.Event, current State, now time.Time) *Result {
	status := event.StatusAt(now)
	if status.IsJoinable() {
		return nil
	}

	outcome := OutcomeBlockedJoinsLocked
	if status == events.TemporalCancelled || status == events.TemporalPassed {
		outcome = OutcomeBlockedEventClosed
	}
	return &Result{
		State:   current,
		Outcome: outcome,
		Message: events.BlockedReason(status, event.CutoffMinutes),
	}
}
