package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints the engine's invariants lean on
func MigrateConstraints(db *gorm.DB) error {
	// One membership record per (event, user) pair
	err := db.Exec(`
		ALTER TABLE memberships
		ADD CONSTRAINT IF NOT EXISTS unique_membership_per_event
		UNIQUE (event_id, user_id);
	`).Error
	if err != nil {
		return err
	}

	// Waitlist order tickets are unique within an event
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_event_waitlist_order
		ON memberships (event_id, waitlist_order)
		WHERE waitlist_order IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// Index for attendee counts and waitlist scans by event
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_memberships_event_state
		ON memberships (event_id, state);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
