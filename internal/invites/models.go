package invites

import (
	"time"

	"github.com/google/uuid"
)

// Invite grants a user entry to an invite-gated event. One row per
// (event, user) pair; re-inviting is a no-op.
type Invite struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_invites_event_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_invites_event_user"`
	InvitedBy uuid.UUID `json:"invited_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
