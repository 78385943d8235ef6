package notifications

import (
	"context"

	"gameon/pkg/logger"

	"github.com/google/uuid"
)

// Service publishes membership transition notifications. With a nil producer
// (Kafka disabled) every publish is a logged no-op, so callers never branch
// on whether the pipeline is up.
type Service interface {
	NotifyWaitlistPromoted(ctx context.Context, eventID, userID uuid.UUID) error
	NotifyRequestAccepted(ctx context.Context, eventID, userID uuid.UUID) error
	NotifyEventConfirmed(ctx context.Context, eventID, hostID uuid.UUID) error
}

type service struct {
	producer Producer
	log      *logger.Logger
}

func NewService(producer Producer) Service {
	return &service{
		producer: producer,
		log:      logger.GetDefault(),
	}
}

func (s *service) NotifyWaitlistPromoted(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.publish(ctx, NewNotification(
		NotificationTypeWaitlistPromoted, userID, eventID,
		"A seat opened up and you're in! See you there.",
	))
}

func (s *service) NotifyRequestAccepted(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.publish(ctx, NewNotification(
		NotificationTypeRequestAccepted, userID, eventID,
		"The host accepted your request to join.",
	))
}

func (s *service) NotifyEventConfirmed(ctx context.Context, eventID, hostID uuid.UUID) error {
	return s.publish(ctx, NewNotification(
		NotificationTypeEventConfirmed, hostID, eventID,
		"Your event is full and confirmed!",
	))
}

func (s *service) publish(ctx context.Context, n *Notification) error {
	if s.producer == nil {
		s.log.DebugWithContext(ctx, "notification skipped, producer disabled", map[string]interface{}{
			"type":         string(n.Type),
			"recipient_id": n.RecipientID.String(),
		})
		return nil
	}
	return s.producer.Publish(ctx, n)
}
