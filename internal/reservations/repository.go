package reservations

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"concertly/internal/concerts"
)

type Repository interface {
	CreateReservation(ctx context.Context, reservation *Reservation) (*concerts.Concert, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	GetAll(ctx context.Context) ([]Reservation, error)
	GetByEmail(ctx context.Context, email string) ([]Reservation, error)
	UpdateStatusWithInventoryAdjust(ctx context.Context, id string, newStatus Status) (*Reservation, *concerts.Concert, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateReservation runs the check-then-decrement booking inside a single
// transaction. The concert row is locked FOR UPDATE so concurrent
// transactions from other processes serialize on the same row. The
// reservation's ConcertName, TotalPrice and ReservedAt are filled from the
// locked concert state. Returns the concert snapshot after the decrement.
func (r *repository) CreateReservation(ctx context.Context, reservation *Reservation) (*concerts.Concert, error) {
	var snapshot *concerts.Concert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var concert concerts.Concert
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&concert, reservation.ConcertID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return concerts.ErrConcertNotFound
			}
			return err
		}

		if !concert.IsOpen() {
			return ErrBookingClosed
		}
		if concert.AvailableTickets < reservation.Quantity {
			return &AvailabilityError{Available: concert.AvailableTickets}
		}

		reservation.ConcertName = concert.Name
		reservation.TotalPrice = concert.Price * float64(reservation.Quantity)
		reservation.ReservedAt = time.Now().UTC()
		reservation.Status = StatusConfirmed

		concert.AvailableTickets -= reservation.Quantity
		if err := tx.Model(&concerts.Concert{}).
			Where("id = ?", concert.ID).
			Update("available_tickets", concert.AvailableTickets).Error; err != nil {
			return err
		}

		if err := tx.Create(reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateID
			}
			return err
		}

		snapshot = &concert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).Order("reserved_at DESC").Find(&reservations).Error
	return reservations, err
}

func (r *repository) GetByEmail(ctx context.Context, email string) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("LOWER(customer_email) = LOWER(?)", email).
		Order("reserved_at DESC").
		Find(&reservations).Error
	return reservations, err
}

// UpdateStatusWithInventoryAdjust transitions a reservation's status and
// compensates concert inventory in the same transaction: moving into
// cancelled returns the tickets, moving out of cancelled takes them back
// (subject to availability). Same-status transitions are no-ops, which
// keeps repeated cancellations idempotent. Returns the updated reservation
// and, when inventory changed, the adjusted concert snapshot.
func (r *repository) UpdateStatusWithInventoryAdjust(ctx context.Context, id string, newStatus Status) (*Reservation, *concerts.Concert, error) {
	var (
		updated  *Reservation
		snapshot *concerts.Concert
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reservation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		if reservation.Status == newStatus {
			updated = &reservation
			return nil
		}

		intoCancelled := newStatus == StatusCancelled
		outOfCancelled := reservation.Status == StatusCancelled

		if intoCancelled || outOfCancelled {
			var concert concerts.Concert
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&concert, reservation.ConcertID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return concerts.ErrConcertNotFound
				}
				return err
			}

			if intoCancelled {
				concert.AvailableTickets += reservation.Quantity
				if concert.AvailableTickets > concert.TotalTickets {
					concert.AvailableTickets = concert.TotalTickets
				}
			} else {
				if concert.AvailableTickets < reservation.Quantity {
					return &AvailabilityError{Available: concert.AvailableTickets}
				}
				concert.AvailableTickets -= reservation.Quantity
			}

			if err := tx.Model(&concerts.Concert{}).
				Where("id = ?", concert.ID).
				Update("available_tickets", concert.AvailableTickets).Error; err != nil {
				return err
			}
			snapshot = &concert
		}

		reservation.Status = newStatus
		if err := tx.Model(&Reservation{}).
			Where("id = ?", reservation.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}

		updated = &reservation
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, snapshot, nil
}

func (r *repository) ListStalePending(ctx context.Context, olderThan time.Time) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND reserved_at < ?", StatusPending, olderThan).
		Find(&reservations).Error
	return reservations, err
}
