package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. Each method is a single-key read or
// write; the engine's per-event lock provides the compound serialization.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, eventID, userID uuid.UUID) (Membership, error) {
	var m Membership
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newNone(eventID, userID), nil
		}
		return Membership{}, err
	}
	return m, nil
}

func (s *GormStore) Put(ctx context.Context, m Membership) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state", "joined_at", "requested_at", "waitlisted_at", "waitlist_order", "updated_at",
		}),
	}).Create(&m).Error
}

func (s *GormStore) CountAttending(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.countByState(ctx, eventID, StateAttending)
}

func (s *GormStore) CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.countByState(ctx, eventID, StateWaitlisted)
}

func (s *GormStore) countByState(ctx context.Context, eventID uuid.UUID, state State) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Membership{}).
		Where("event_id = ? AND state = ?", eventID, state).
		Count(&count).Error
	return int(count), err
}

func (s *GormStore) MaxWaitlistOrder(ctx context.Context, eventID uuid.UUID) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&Membership{}).
		Where("event_id = ? AND state = ?", eventID, StateWaitlisted).
		Select("COALESCE(MAX(waitlist_order), 0)").
		Scan(&max).Error
	return max, err
}

func (s *GormStore) NextWaitlisted(ctx context.Context, eventID uuid.UUID) (*Membership, error) {
	var m Membership
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND state = ?", eventID, StateWaitlisted).
		Order("waitlist_order ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// WaitlistPosition counts surviving entries at or below the user's order, so
// departures ahead in line shrink the rank without any renumbering write.
func (s *GormStore) WaitlistPosition(ctx context.Context, eventID, userID uuid.UUID) (int, error) {
	m, err := s.Get(ctx, eventID, userID)
	if err != nil {
		return 0, err
	}
	if m.State != StateWaitlisted || m.WaitlistOrder == nil {
		return 0, nil
	}

	var ahead int64
	err = s.db.WithContext(ctx).Model(&Membership{}).
		Where("event_id = ? AND state = ? AND waitlist_order <= ?", eventID, StateWaitlisted, *m.WaitlistOrder).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead), nil
}

func (s *GormStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	var items []Membership
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND state <> ?", userID, StateNone).
		Order("updated_at ASC").
		Find(&items).Error
	return items, err
}
