package events

import (
	"time"

	"github.com/google/uuid"
)

// EventResponse is the detail view: stored fields plus the derived temporal
// and display statuses and the current counts.
type EventResponse struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Location        string         `json:"location"`
	Activity        string         `json:"activity"`
	MaxSlots        int            `json:"max_slots"`
	Visibility      Visibility     `json:"visibility"`
	Cancelled       bool           `json:"cancelled"`
	StartAt         time.Time      `json:"start_at"`
	EndAt           time.Time      `json:"end_at"`
	DurationMinutes int            `json:"duration_minutes"`
	CutoffMinutes   int            `json:"cutoff_minutes"`
	Timezone        string         `json:"timezone"`
	HostID          uuid.UUID      `json:"host_id"`
	TemporalStatus  TemporalStatus `json:"temporal_status"`
	Status          EventStatus    `json:"status"`
	AttendeeCount   int            `json:"attendee_count"`
	WaitlistCount   int            `json:"waitlist_count"`
	CreatedAt       time.Time      `json:"created_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}
