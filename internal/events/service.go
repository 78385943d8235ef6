package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameon/pkg/cache"
	"gameon/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotHost       = errors.New("only the host may perform this action")
	ErrInvalidTimes  = errors.New("end time must be after start time")
	ErrStartInPast   = errors.New("start time must be in the future")
	ErrBadVisibility = errors.New("invalid visibility policy")
)

const detailCacheTTL = 30 * time.Second

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetMembershipCounter(counter MembershipCounter)

	CreateEvent(ctx context.Context, hostID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetEventModel(ctx context.Context, id uuid.UUID) (*Event, error)
	GetUpcomingEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	CancelEvent(ctx context.Context, id, callerID uuid.UUID) (*EventResponse, error)
}

// MembershipCounter reports per-event attendance, implemented by the
// membership store. Declared here to avoid an import cycle.
type MembershipCounter interface {
	CountAttending(ctx context.Context, eventID uuid.UUID) (int, error)
	CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	counter      MembershipCounter
	log          *logger.Logger
	now          func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		log:  logger.GetDefault(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetMembershipCounter(counter MembershipCounter) {
	s.counter = counter
}

func (s *service) CreateEvent(ctx context.Context, hostID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	now := s.now()

	if !req.StartAt.After(now) {
		return nil, ErrStartInPast
	}
	if req.EndAt != nil && !req.EndAt.After(req.StartAt) {
		return nil, ErrInvalidTimes
	}

	visibility := Visibility(req.Visibility)
	if req.Visibility == "" {
		visibility = VisibilityPublic
	}
	if !visibility.IsValid() {
		return nil, ErrBadVisibility
	}

	event := &Event{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Activity:        req.Activity,
		MaxSlots:        req.MaxSlots,
		Visibility:      visibility,
		StartAt:         req.StartAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		CutoffMinutes:   req.CutoffMinutes,
		Timezone:        req.Timezone,
		HostID:          hostID,
	}
	if req.EndAt != nil {
		end := req.EndAt.UTC()
		event.EndAt = &end
	}
	if event.DurationMinutes == 0 {
		event.DurationMinutes = DefaultDurationMinutes
	}
	if event.CutoffMinutes == 0 {
		event.CutoffMinutes = DefaultCutoffMinutes
	}
	if event.Timezone == "" {
		event.Timezone = "UTC"
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.log.LogEventCreated(ctx, event.ID.String(), hostID.String())

	return s.project(ctx, event)
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	cacheKey := eventDetailCacheKey(id)
	if s.cacheService != nil {
		var cached EventResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.GetEventModel(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.project(ctx, event)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, resp, detailCacheTTL); err != nil {
			s.log.DebugWithContext(ctx, "event detail cache write failed", map[string]interface{}{
				"event_id": id.String(), "error": err.Error(),
			})
		}
	}
	return resp, nil
}

func (s *service) GetEventModel(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return event, nil
}

func (s *service) GetUpcomingEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	items, total, err := s.repo.GetUpcoming(ctx, s.now(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	responses := make([]EventResponse, 0, len(items))
	for i := range items {
		resp, err := s.project(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}
	return &PaginatedEvents{
		Events:     responses,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// CancelEvent flips the one-way cancellation flag. Only the host may cancel,
// and cancelling an already-cancelled event succeeds unchanged.
func (s *service) CancelEvent(ctx context.Context, id, callerID uuid.UUID) (*EventResponse, error) {
	event, err := s.GetEventModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.HostID != callerID {
		return nil, ErrNotHost
	}

	if !event.Cancelled {
		if err := s.repo.MarkCancelled(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to cancel event: %w", err)
		}
		event.Cancelled = true
		s.log.LogEventCancelled(ctx, id.String(), callerID.String())
	}

	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, eventDetailCacheKey(id)); err != nil {
			s.log.DebugWithContext(ctx, "event detail cache invalidation failed", map[string]interface{}{
				"event_id": id.String(), "error": err.Error(),
			})
		}
	}

	return s.project(ctx, event)
}

// project builds the display view: derived statuses plus live counts.
func (s *service) project(ctx context.Context, event *Event) (*EventResponse, error) {
	var attendees, waitlisted int
	if s.counter != nil {
		var err error
		attendees, err = s.counter.CountAttending(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attendees: %w", err)
		}
		waitlisted, err = s.counter.CountWaitlisted(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count waitlist: %w", err)
		}
	}

	temporal := event.StatusAt(s.now())

	return &EventResponse{
		ID:              event.ID,
		Title:           event.Title,
		Description:     event.Description,
		Location:        event.Location,
		Activity:        event.Activity,
		MaxSlots:        event.MaxSlots,
		Visibility:      event.Visibility,
		Cancelled:       event.Cancelled,
		StartAt:         event.StartAt,
		EndAt:           event.Time().End(),
		DurationMinutes: event.DurationMinutes,
		CutoffMinutes:   event.CutoffMinutes,
		Timezone:        event.Timezone,
		HostID:          event.HostID,
		TemporalStatus:  temporal,
		Status:          ResolveEventStatus(attendees, event.Cancelled, temporal),
		AttendeeCount:   attendees,
		WaitlistCount:   waitlisted,
		CreatedAt:       event.CreatedAt,
	}, nil
}

func eventDetailCacheKey(id uuid.UUID) string {
	return "gameon:events:detail:" + id.String()
}
