package memberships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameon/internal/events"
	"gameon/pkg/logger"

	"github.com/google/uuid"
)

var ErrNotHost = errors.New("only the host may accept join requests")

// EventService supplies event records to the membership layer.
type EventService interface {
	GetEventModel(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

// InviteChecker reports whether a user holds an invite for an event,
// implemented by the invites service.
type InviteChecker interface {
	IsInvited(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// Notifier fans membership transitions out to the notification pipeline.
// Delivery failures are logged, never surfaced to the caller.
type Notifier interface {
	NotifyWaitlistPromoted(ctx context.Context, eventID, userID uuid.UUID) error
	NotifyRequestAccepted(ctx context.Context, eventID, userID uuid.UUID) error
	NotifyEventConfirmed(ctx context.Context, eventID, hostID uuid.UUID) error
}

type Service interface {
	SetNotifier(notifier Notifier)

	GetMembership(ctx context.Context, eventID, userID uuid.UUID) (*MembershipStatusResponse, error)
	ListUserMemberships(ctx context.Context, userID uuid.UUID) ([]MembershipView, error)

	ClaimSeat(ctx context.Context, eventID, userID uuid.UUID) (*Result, error)
	LeaveSeat(ctx context.Context, eventID, userID uuid.UUID) (*Result, error)
	LeaveWaitlist(ctx context.Context, eventID, userID uuid.UUID) (*Result, error)
	RequestToJoin(ctx context.Context, eventID, userID uuid.UUID) (*Result, error)
	AcceptRequest(ctx context.Context, eventID, hostID, targetUserID uuid.UUID) (*Result, error)
}

type service struct {
	engine       *Engine
	store        Store
	eventService EventService
	invites      InviteChecker
	notifier     Notifier
	log          *logger.Logger
	now          func() time.Time
}

func NewService(engine *Engine, store Store, eventService EventService, invites InviteChecker) Service {
	return &service{
		engine:       engine,
		store:        store,
		eventService: eventService,
		invites:      invites,
		log:          logger.GetDefault(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// GetMembership is the read side: current state plus the eligibility outcome.
// Side-effect free.
func (s *service) GetMembership(ctx context.Context, eventID, userID uuid.UUID) (*MembershipStatusResponse, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.Get(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	attendees, err := s.store.CountAttending(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}

	isInvited, err := s.isInvited(ctx, event, userID)
	if err != nil {
		return nil, err
	}

	position := 0
	if m.State == StateWaitlisted {
		position, err = s.store.WaitlistPosition(ctx, eventID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute waitlist position: %w", err)
		}
	}

	now := s.now()
	temporal := event.StatusAt(now)

	return &MembershipStatusResponse{
		EventID:          eventID,
		UserID:           userID,
		State:            m.State,
		JoinedAt:         m.JoinedAt,
		RequestedAt:      m.RequestedAt,
		WaitlistedAt:     m.WaitlistedAt,
		WaitlistPosition: position,
		TemporalStatus:   temporal,
		EventStatus:      events.ResolveEventStatus(attendees, event.Cancelled, temporal),
		Eligibility:      ResolveEligibility(event, m, attendees, isInvited, now),
	}, nil
}

func (s *service) ListUserMemberships(ctx context.Context, userID uuid.UUID) ([]MembershipView, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	views := make([]MembershipView, 0, len(items))
	for _, m := range items {
		view := MembershipView{
			EventID:      m.EventID,
			State:        m.State,
			JoinedAt:     m.JoinedAt,
			RequestedAt:  m.RequestedAt,
			WaitlistedAt: m.WaitlistedAt,
		}
		if m.State == StateWaitlisted {
			position, err := s.store.WaitlistPosition(ctx, m.EventID, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to compute waitlist position: %w", err)
			}
			view.WaitlistPosition = position
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) ClaimSeat(ctx context.Context, eventID, userID uuid.UUID) (*Result, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}

	isInvited, err := s.isInvited(ctx, event, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.ClaimSeat(ctx, event, userID, isInvited)
	if err != nil {
		return nil, err
	}

	if result.Confirmed {
		s.notify(ctx, "event confirmed", func(n Notifier) error {
			return n.NotifyEventConfirmed(ctx, eventID, event.HostID)
		})
	}
	return result, nil
}

func (s *service) LeaveSeat(ctx context.Context, eventID, userID uuid.UUID) (*Result, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.LeaveSeat(ctx, event, userID)
	if err != nil {
		return nil, err
	}

	if result.PromotedUserID != nil {
		promoted := *result.PromotedUserID
		s.notify(ctx, "waitlist promotion", func(n Notifier) error {
			return n.NotifyWaitlistPromoted(ctx, eventID, promoted)
		})
	}
	return result, nil
}

func (s *service) LeaveWaitlist(ctx context.Context, eventID, userID uuid.UUID) (*Result, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.engine.LeaveWaitlist(ctx, event, userID)
}

func (s *service) RequestToJoin(ctx context.Context, eventID, userID uuid.UUID) (*Result, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.engine.RequestToJoin(ctx, event, userID)
}

func (s *service) AcceptRequest(ctx context.Context, eventID, hostID, targetUserID uuid.UUID) (*Result, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotHost
	}

	result, err := s.engine.AcceptRequest(ctx, event, targetUserID)
	if err != nil {
		return nil, err
	}

	if result.Success {
		s.notify(ctx, "request accepted", func(n Notifier) error {
			return n.NotifyRequestAccepted(ctx, eventID, targetUserID)
		})
		if result.Confirmed {
			s.notify(ctx, "event confirmed", func(n Notifier) error {
				return n.NotifyEventConfirmed(ctx, eventID, event.HostID)
			})
		}
	}
	return result, nil
}

func (s *service) isInvited(ctx context.Context, event *events.Event, userID uuid.UUID) (bool, error) {
	if event.Visibility != events.VisibilityInviteAuto || s.invites == nil {
		return false, nil
	}
	invited, err := s.invites.IsInvited(ctx, event.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check invite: %w", err)
	}
	return invited, nil
}

// notify publishes best-effort: a transition already committed must not be
// rolled back because the notification pipeline is down.
func (s *service) notify(ctx context.Context, kind string, publish func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := publish(s.notifier); err != nil {
		s.log.ErrorWithContext(ctx, "notification publish failed", err, map[string]interface{}{
			"kind": kind,
		})
	}
}
