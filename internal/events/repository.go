package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetUpcoming(ctx context.Context, now time.Time, query EventListQuery) ([]Event, int64, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetUpcoming returns events whose join window is still open at the given
// instant, i.e. now < start_at − cutoff, soonest first. The cutoff varies per
// row, so the comparison happens in SQL.
func (r *repository) GetUpcoming(ctx context.Context, now time.Time, query EventListQuery) ([]Event, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	base := r.db.WithContext(ctx).Model(&Event{}).
		Where("cancelled = false AND start_at - make_interval(mins => cutoff_minutes) > ?", now)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Event
	err := base.Order("start_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkCancelled flips the one-way cancellation flag. Re-cancelling is a no-op.
func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Update("cancelled", true).Error
}
