package events

import "time"

type CreateEventRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Description     string     `json:"description" binding:"max=2000"`
	Location        string     `json:"location" binding:"max=255"`
	Activity        string     `json:"activity" binding:"max=100"`
	MaxSlots        int        `json:"max_slots" binding:"required,min=1,max=10000"`
	Visibility      string     `json:"visibility" binding:"omitempty,oneof=public invite_auto invite_manual"`
	StartAt         time.Time  `json:"start_at" binding:"required"`
	EndAt           *time.Time `json:"end_at"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	CutoffMinutes   int        `json:"cutoff_minutes" binding:"omitempty,min=0,max=1440"`
	Timezone        string     `json:"timezone" binding:"max=64"`
}

type EventListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
