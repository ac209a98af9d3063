package database

import "fmt"

// ApplyConstraints adds the inventory CHECK constraints the application
// relies on as a last line of defense. The lock plus transaction already
// serialize bookings; these make an inventory bug impossible to persist.
func (db *DB) ApplyConstraints(maxQuantity int) error {
	statements := []string{
		`ALTER TABLE concerts DROP CONSTRAINT IF EXISTS chk_concerts_available_non_negative`,
		`ALTER TABLE concerts ADD CONSTRAINT chk_concerts_available_non_negative
			CHECK (available_tickets >= 0)`,
		`ALTER TABLE concerts DROP CONSTRAINT IF EXISTS chk_concerts_available_within_total`,
		`ALTER TABLE concerts ADD CONSTRAINT chk_concerts_available_within_total
			CHECK (available_tickets <= total_tickets)`,
		`ALTER TABLE reservations DROP CONSTRAINT IF EXISTS chk_reservations_quantity_range`,
		fmt.Sprintf(`ALTER TABLE reservations ADD CONSTRAINT chk_reservations_quantity_range
			CHECK (quantity >= 1 AND quantity <= %d)`, maxQuantity),
	}
	for _, stmt := range statements {
		if err := db.PostgreSQL.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint statement failed: %w", err)
		}
	}
	return nil
}
