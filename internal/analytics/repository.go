package analytics

import (
	"context"

	"gorm.io/gorm"

	"concertly/internal/concerts"
	"concertly/internal/reservations"
)

type Repository interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ConcertStats: []ConcertStats{}}
	db := r.db.WithContext(ctx)

	if err := db.Model(&concerts.Concert{}).Count(&stats.TotalConcerts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&concerts.Concert{}).
		Where("status = ?", concerts.StatusOpen).
		Count(&stats.ActiveConcerts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&reservations.Reservation{}).Count(&stats.TotalReservations).Error; err != nil {
		return nil, err
	}

	var totals struct {
		TicketsSold int64
		Revenue     float64
	}
	err := db.Model(&reservations.Reservation{}).
		Select("COALESCE(SUM(quantity), 0) AS tickets_sold, COALESCE(SUM(total_price), 0) AS revenue").
		Where("status <> ?", reservations.StatusCancelled).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalTicketsSold = totals.TicketsSold
	stats.TotalRevenue = totals.Revenue

	err = db.Table("concerts").
		Select(`concerts.id AS concert_id,
			concerts.name AS concert_name,
			concerts.total_tickets,
			concerts.available_tickets,
			concerts.status,
			COALESCE(SUM(r.quantity), 0) AS tickets_sold,
			COALESCE(SUM(r.total_price), 0) AS revenue`).
		Joins("LEFT JOIN reservations r ON r.concert_id = concerts.id AND r.status <> ?", reservations.StatusCancelled).
		Group("concerts.id, concerts.name, concerts.total_tickets, concerts.available_tickets, concerts.status").
		Order("concerts.id ASC").
		Scan(&stats.ConcertStats).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
