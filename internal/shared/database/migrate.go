package database

import (
	"gameon/internal/events"
	"gameon/internal/invites"
	"gameon/internal/memberships"
	"gameon/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&memberships.Membership{},
		&invites.Invite{},
	)
}
