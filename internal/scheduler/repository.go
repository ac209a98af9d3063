package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	ListReminderCandidates(ctx context.Context, window time.Duration) ([]ReminderCandidate, error)
	MarkReminded(ctx context.Context, reservationID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListReminderCandidates(ctx context.Context, window time.Duration) ([]ReminderCandidate, error) {
	now := time.Now().UTC()
	var candidates []ReminderCandidate
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select(`reservations.id AS reservation_id,
			concerts.name AS concert_name,
			concerts.date AS concert_date,
			concerts.venue,
			reservations.customer_name,
			reservations.customer_email,
			reservations.quantity`).
		Joins("JOIN concerts ON concerts.id = reservations.concert_id").
		Joins("LEFT JOIN reminder_logs ON reminder_logs.reservation_id = reservations.id").
		Where("reservations.status = ?", "confirmed").
		Where("concerts.date BETWEEN ? AND ?", now, now.Add(window)).
		Where("reminder_logs.id IS NULL").
		Scan(&candidates).Error
	return candidates, err
}

func (r *repository) MarkReminded(ctx context.Context, reservationID string) error {
	return r.db.WithContext(ctx).Create(&ReminderLog{
		ReservationID: reservationID,
		SentAt:        time.Now().UTC(),
	}).Error
}
