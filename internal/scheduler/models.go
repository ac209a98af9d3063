package scheduler

import "time"

// ReminderLog records that a reminder email was sent for a reservation, so
// repeated scheduler runs within the window do not resend it.
type ReminderLog struct {
	ID            uint      `gorm:"primaryKey"`
	ReservationID string    `gorm:"size:50;not null;uniqueIndex"`
	SentAt        time.Time `gorm:"not null"`
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}

// ReminderCandidate is a confirmed reservation whose concert falls inside
// the reminder window and has not been reminded yet.
type ReminderCandidate struct {
	ReservationID string
	ConcertName   string
	ConcertDate   time.Time
	Venue         string
	CustomerName  string
	CustomerEmail string
	Quantity      int
}
