package memberships

import (
	"time"

	"github.com/google/uuid"
)

// State is the closed set of membership states. Absence of a record is
// equivalent to StateNone.
type State string

const (
	StateNone       State = "NONE"
	StateRequested  State = "REQUESTED"
	StateAttending  State = "ATTENDING"
	StateWaitlisted State = "WAITLISTED"
	StateBlocked    State = "BLOCKED"
)

func (s State) IsValid() bool {
	switch s {
	case StateNone, StateRequested, StateAttending, StateWaitlisted, StateBlocked:
		return true
	}
	return false
}

// Membership is the relationship between one user and one event. Exactly one
// record per (event, user) pair; records are transitioned back to NONE rather
// than deleted.
type Membership struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID uuid.UUID `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_event_user"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_event_user"`
	State   State     `json:"state" gorm:"type:varchar(16);not null;default:'NONE'"`

	JoinedAt     *time.Time `json:"joined_at,omitempty"`
	RequestedAt  *time.Time `json:"requested_at,omitempty"`
	WaitlistedAt *time.Time `json:"waitlisted_at,omitempty"`

	// WaitlistOrder is unique and monotonic per event in join order. It is an
	// allocation ticket, not a rank: removing an entry never renumbers the
	// rest, and position is always recomputed from the surviving orders.
	WaitlistOrder *int `json:"waitlist_order,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// newNone returns the default record for a pair with no prior interaction.
func newNone(eventID, userID uuid.UUID) Membership {
	return Membership{
		EventID: eventID,
		UserID:  userID,
		State:   StateNone,
	}
}

// Result is the structured outcome of an engine operation. Business policy
// rejections are carried here with Success=false; Go errors are reserved for
// infrastructure failures.
type Result struct {
	Success          bool       `json:"success"`
	State            State      `json:"state"`
	Outcome          Outcome    `json:"outcome,omitempty"`
	Message          string     `json:"message"`
	Confirmed        bool       `json:"confirmed,omitempty"`
	WaitlistPosition int        `json:"waitlist_position,omitempty"`
	PromotedUserID   *uuid.UUID `json:"promoted_user_id,omitempty"`
}
