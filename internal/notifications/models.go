package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeWaitlistPromoted NotificationType = "WAITLIST_PROMOTED"
	NotificationTypeEventConfirmed   NotificationType = "EVENT_CONFIRMED"
	NotificationTypeRequestAccepted  NotificationType = "REQUEST_ACCEPTED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

// Notification is the wire payload published for a membership transition.
type Notification struct {
	ID          uuid.UUID            `json:"id"`
	Type        NotificationType     `json:"type"`
	Priority    NotificationPriority `json:"priority"`
	RecipientID uuid.UUID            `json:"recipient_id"`
	EventID     uuid.UUID            `json:"event_id"`
	Message     string               `json:"message"`
	CreatedAt   time.Time            `json:"created_at"`
}

func NewNotification(notType NotificationType, recipientID, eventID uuid.UUID, message string) *Notification {
	return &Notification{
		ID:          uuid.New(),
		Type:        notType,
		Priority:    defaultPriority(notType),
		RecipientID: recipientID,
		EventID:     eventID,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
}

func defaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeWaitlistPromoted:
		return NotificationPriorityHigh
	case NotificationTypeRequestAccepted:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityLow
	}
}

// GetPartitionKey keys messages by recipient so each user's notifications
// stay ordered within a partition.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientID.String()
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
