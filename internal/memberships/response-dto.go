package memberships

import (
	"time"

	"gameon/internal/events"

	"github.com/google/uuid"
)

// MembershipStatusResponse is the read-side payload: stored membership state
// plus everything derived at request time.
type MembershipStatusResponse struct {
	EventID          uuid.UUID             `json:"event_id"`
	UserID           uuid.UUID             `json:"user_id"`
	State            State                 `json:"state"`
	JoinedAt         *time.Time            `json:"joined_at,omitempty"`
	RequestedAt      *time.Time            `json:"requested_at,omitempty"`
	WaitlistedAt     *time.Time            `json:"waitlisted_at,omitempty"`
	WaitlistPosition int                   `json:"waitlist_position,omitempty"`
	TemporalStatus   events.TemporalStatus `json:"temporal_status"`
	EventStatus      events.EventStatus    `json:"event_status"`
	Eligibility      Eligibility           `json:"eligibility"`
}

// MembershipView is one row of a user's membership listing.
type MembershipView struct {
	EventID          uuid.UUID  `json:"event_id"`
	State            State      `json:"state"`
	JoinedAt         *time.Time `json:"joined_at,omitempty"`
	RequestedAt      *time.Time `json:"requested_at,omitempty"`
	WaitlistedAt     *time.Time `json:"waitlisted_at,omitempty"`
	WaitlistPosition int        `json:"waitlist_position,omitempty"`
}
