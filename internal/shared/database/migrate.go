package database

import (
	"fmt"

	"concertly/internal/auth"
	"concertly/internal/concerts"
	"concertly/internal/reservations"
	"concertly/internal/scheduler"
)

// Migrate auto-migrates the schema for all registered models.
func (db *DB) Migrate() error {
	err := db.PostgreSQL.AutoMigrate(
		&auth.AdminUser{},
		&concerts.Concert{},
		&reservations.Reservation{},
		&scheduler.ReminderLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
