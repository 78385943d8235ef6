package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameon/internal/events"
	"gameon/pkg/logger"

	"github.com/google/uuid"
)

var ErrNotHost = errors.New("only the host may invite users")

// EventService is the slice of the events layer the invite service needs.
type EventService interface {
	GetEventModel(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

type Service interface {
	InviteUser(ctx context.Context, eventID, hostID, userID uuid.UUID) (*Invite, error)
	IsInvited(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	ListInvites(ctx context.Context, eventID uuid.UUID) ([]Invite, error)
}

type service struct {
	repo         Repository
	eventService EventService
	log          *logger.Logger
}

func NewService(repo Repository, eventService EventService) Service {
	return &service{
		repo:         repo,
		eventService: eventService,
		log:          logger.GetDefault(),
	}
}

func (s *service) InviteUser(ctx context.Context, eventID, hostID, userID uuid.UUID) (*Invite, error) {
	event, err := s.eventService.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotHost
	}

	invite := &Invite{
		EventID:   eventID,
		UserID:    userID,
		InvitedBy: hostID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to save invite: %w", err)
	}

	s.log.InfoWithContext(ctx, "user invited to event", map[string]interface{}{
		"event_id":   eventID.String(),
		"user_id":    userID.String(),
		"invited_by": hostID.String(),
	})
	return invite, nil
}

func (s *service) IsInvited(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, eventID, userID)
}

func (s *service) ListInvites(ctx context.Context, eventID uuid.UUID) ([]Invite, error) {
	return s.repo.ListByEvent(ctx, eventID)
}
