package concerts

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"concertly/internal/shared/validation"
)

type Repository interface {
	Create(ctx context.Context, concert *Concert) error
	GetByID(ctx context.Context, id uint) (*Concert, error)
	GetAll(ctx context.Context) ([]Concert, error)
	UpdateGuarded(ctx context.Context, id uint, req UpdateConcertRequest) (*Concert, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, concert *Concert) error {
	return r.db.WithContext(ctx).Create(concert).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Concert, error) {
	var concert Concert
	err := r.db.WithContext(ctx).First(&concert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	return &concert, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Concert, error) {
	var concerts []Concert
	err := r.db.WithContext(ctx).Order("date ASC, id ASC").Find(&concerts).Error
	return concerts, err
}

// UpdateGuarded applies a partial update inside a transaction with the
// concert row locked. A total-tickets decrease below the booked count is
// rejected; otherwise available tickets shift by the same delta as the total.
func (r *repository) UpdateGuarded(ctx context.Context, id uint, req UpdateConcertRequest) (*Concert, error) {
	var updated *Concert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var concert Concert
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&concert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConcertNotFound
			}
			return err
		}

		if req.TotalTickets != nil && *req.TotalTickets != concert.TotalTickets {
			booked := concert.BookedTickets()
			if *req.TotalTickets < booked {
				return &CapacityReductionError{BookedTickets: booked}
			}
			concert.AvailableTickets = *req.TotalTickets - booked
			concert.TotalTickets = *req.TotalTickets
		}

		if req.Name != nil {
			concert.Name = *req.Name
		}
		if req.Artist != nil {
			concert.Artist = *req.Artist
		}
		if req.Date != nil {
			d, err := time.Parse(validation.DateLayout, *req.Date)
			if err != nil {
				return err
			}
			concert.Date = d
		}
		if req.Venue != nil {
			concert.Venue = *req.Venue
		}
		if req.Price != nil {
			concert.Price = *req.Price
		}
		if req.Status != nil {
			concert.Status = Status(*req.Status)
		}
		if req.ImageURL != nil {
			concert.ImageURL = *req.ImageURL
		}

		if err := tx.Save(&concert).Error; err != nil {
			return err
		}
		updated = &concert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Concert{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcertNotFound
	}
	return nil
}
