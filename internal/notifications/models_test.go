package notifications

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotificationAssignsPriority(t *testing.T) {
	recipient, event := uuid.New(), uuid.New()

	n := NewNotification(NotificationTypeWaitlistPromoted, recipient, event, "You got a seat!")
	assert.Equal(t, NotificationPriorityHigh, n.Priority)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	n = NewNotification(NotificationTypeRequestAccepted, recipient, event, "Request accepted")
	assert.Equal(t, NotificationPriorityMedium, n.Priority)

	n = NewNotification(NotificationTypeEventConfirmed, recipient, event, "Event confirmed")
	assert.Equal(t, NotificationPriorityLow, n.Priority)
}

func TestNotificationPartitionKeyIsRecipient(t *testing.T) {
	recipient := uuid.New()
	n := NewNotification(NotificationTypeEventConfirmed, recipient, uuid.New(), "Event confirmed")
	assert.Equal(t, recipient.String(), n.GetPartitionKey())
}

func TestNotificationToJSON(t *testing.T) {
	n := NewNotification(NotificationTypeWaitlistPromoted, uuid.New(), uuid.New(), "You got a seat!")

	data, err := n.ToJSON()
	require.NoError(t, err)

	var decoded Notification
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, n.Type, decoded.Type)
	assert.Equal(t, n.RecipientID, decoded.RecipientID)
	assert.Equal(t, "You got a seat!", decoded.Message)
}
