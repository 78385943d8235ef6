package events

import (
	"time"

	"github.com/google/uuid"
)

// Visibility controls which join path applies to an event.
type Visibility string

const (
	VisibilityPublic       Visibility = "public"
	VisibilityInviteAuto   Visibility = "invite_auto"
	VisibilityInviteManual Visibility = "invite_manual"
)

func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityInviteAuto, VisibilityInviteManual:
		return true
	}
	return false
}

type Event struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255"`
	Description string     `json:"description" gorm:"type:text"`
	Location    string     `json:"location" gorm:"size:255"`
	Activity    string     `json:"activity" gorm:"size:100"`
	MaxSlots    int        `json:"max_slots" gorm:"not null;check:max_slots >= 1"`
	Visibility  Visibility `json:"visibility" gorm:"type:varchar(20);not null;default:'public'"`
	Cancelled   bool       `json:"cancelled" gorm:"not null;default:false"`

	// Time fields: StartAt/EndAt are UTC instants, Timezone is display-only.
	StartAt         time.Time  `json:"start_at" gorm:"not null"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;default:120"`
	CutoffMinutes   int        `json:"cutoff_minutes" gorm:"not null;default:30"`
	Timezone        string     `json:"timezone" gorm:"size:64;not null;default:'UTC'"`

	HostID    uuid.UUID `json:"host_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Time assembles the temporal resolver input from the stored fields.
func (e *Event) Time() EventTime {
	return EventTime{
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		DurationMinutes: e.DurationMinutes,
		CutoffMinutes:   e.CutoffMinutes,
		Cancelled:       e.Cancelled,
		Timezone:        e.Timezone,
	}
}

// StatusAt derives the event's temporal status at the given instant.
func (e *Event) StatusAt(now time.Time) TemporalStatus {
	return ResolveTemporalStatus(e.Time(), now)
}
