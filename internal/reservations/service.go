package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concertly/internal/concerts"
	"concertly/internal/shared/config"
	"concertly/internal/shared/constants"
	"concertly/pkg/cache"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
)

// BookingNotification carries the details the notification pipeline needs
// to confirm a booking to the customer.
type BookingNotification struct {
	ReservationID string
	ConcertName   string
	CustomerName  string
	CustomerEmail string
	Quantity      int
	TotalPrice    float64
	ReservedAt    time.Time
}

// Notifier delivers booking confirmations. Implemented by the
// notifications service adapter.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, notification BookingNotification) error
}

// AvailabilityBroadcaster publishes ticket availability changes.
type AvailabilityBroadcaster interface {
	PublishAvailability(ctx context.Context, concertID uint, availableTickets int) error
}

type Service interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error)
	GetReservationsByEmail(ctx context.Context, email string) ([]ReservationResponse, error)
	GetAllReservations(ctx context.Context) ([]ReservationResponse, error)
	CancelReservation(ctx context.Context, id string) (*ReservationResponse, error)
	UpdateReservationStatus(ctx context.Context, id string, newStatus Status) (*ReservationResponse, error)
	CancelStalePending(ctx context.Context, maxAge time.Duration) (int, error)
}

type service struct {
	repo        Repository
	locks       *keylock.Registry
	cache       cache.Service
	notifier    Notifier
	broadcaster AvailabilityBroadcaster
	cfg         *config.Config
	log         *logger.Logger
}

func NewService(repo Repository, locks *keylock.Registry, cacheSvc cache.Service, notifier Notifier, broadcaster AvailabilityBroadcaster, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		locks:       locks,
		cache:       cacheSvc,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
	}
}

// CreateReservation books tickets while holding the concert's lock, so
// within this process only one booking for a given concert runs at a time.
// ID generation is retried a bounded number of times on a primary key
// collision.
func (s *service) CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.Quantity < 1 || req.Quantity > s.cfg.Booking.MaxQuantity {
		return nil, &QuantityError{Max: s.cfg.Booking.MaxQuantity}
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Booking.LockAcquireTimeout)
	defer cancel()

	var (
		created  *Reservation
		snapshot *concerts.Concert
	)
	lockStart := time.Now()
	err := s.locks.WithLock(lockCtx, keylock.ConcertKey(req.ConcertID), func() error {
		if waited := time.Since(lockStart); waited > 100*time.Millisecond {
			s.log.LogLockWait(ctx, keylock.ConcertKey(req.ConcertID), waited)
		}

		for attempt := 0; attempt < s.cfg.Booking.IDRetries; attempt++ {
			id, err := NewReservationID()
			if err != nil {
				return err
			}
			reservation := &Reservation{
				ID:            id,
				ConcertID:     req.ConcertID,
				CustomerName:  req.CustomerName,
				CustomerEmail: req.CustomerEmail,
				Quantity:      req.Quantity,
				GoogleAuth:    req.GoogleAuth,
			}
			concert, err := s.repo.CreateReservation(ctx, reservation)
			if err != nil {
				if errors.Is(err, ErrDuplicateID) {
					continue
				}
				return err
			}
			created = reservation
			snapshot = concert
			return nil
		}
		return fmt.Errorf("could not allocate a unique reservation ID after %d attempts", s.cfg.Booking.IDRetries)
	})
	if err != nil {
		return nil, err
	}

	s.log.LogReservationCreated(ctx, created.ID, created.ConcertID, created.Quantity, created.GoogleAuth)
	s.invalidateConcertCache(ctx)
	s.broadcastAvailability(snapshot.ID, snapshot.AvailableTickets)
	s.notifyConfirmed(created)

	resp := ToReservationResponse(created)
	return &resp, nil
}

func (s *service) GetReservationsByEmail(ctx context.Context, email string) ([]ReservationResponse, error) {
	reservations, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return ToReservationResponses(reservations), nil
}

func (s *service) GetAllReservations(ctx context.Context) ([]ReservationResponse, error) {
	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToReservationResponses(reservations), nil
}

// CancelReservation marks a reservation cancelled and returns its tickets
// to the concert pool. Cancelling an already-cancelled reservation is a
// no-op rather than an error.
func (s *service) CancelReservation(ctx context.Context, id string) (*ReservationResponse, error) {
	return s.UpdateReservationStatus(ctx, id, StatusCancelled)
}

func (s *service) UpdateReservationStatus(ctx context.Context, id string, newStatus Status) (*ReservationResponse, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("invalid reservation status %q", newStatus)
	}

	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Booking.LockAcquireTimeout)
	defer cancel()

	oldStatus := reservation.Status
	var (
		updated  *Reservation
		snapshot *concerts.Concert
	)
	err = s.locks.WithLock(lockCtx, keylock.ConcertKey(reservation.ConcertID), func() error {
		var err error
		updated, snapshot, err = s.repo.UpdateStatusWithInventoryAdjust(ctx, id, newStatus)
		return err
	})
	if err != nil {
		return nil, err
	}

	if snapshot != nil {
		returned := 0
		if newStatus == StatusCancelled {
			returned = updated.Quantity
		}
		s.log.LogReservationStatusChanged(ctx, updated.ID, string(oldStatus), string(newStatus), returned)
		s.invalidateConcertCache(ctx)
		s.broadcastAvailability(snapshot.ID, snapshot.AvailableTickets)
	}

	resp := ToReservationResponse(updated)
	return &resp, nil
}

// CancelStalePending cancels pending reservations older than maxAge,
// returning their tickets. Used by the background cleanup job.
func (s *service) CancelStalePending(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range stale {
		if _, err := s.UpdateReservationStatus(ctx, stale[i].ID, StatusCancelled); err != nil {
			s.log.LogSideEffectFailure(ctx, "stale_pending_cleanup", err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *service) invalidateConcertCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_CONCERTS); err != nil {
		s.log.LogSideEffectFailure(ctx, "cache_invalidation", err)
	}
}

func (s *service) broadcastAvailability(concertID uint, available int) {
	if s.broadcaster == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.broadcaster.PublishAvailability(ctx, concertID, available); err != nil {
		s.log.LogSideEffectFailure(ctx, "availability_broadcast", err)
	}
}

func (s *service) notifyConfirmed(reservation *Reservation) {
	if s.notifier == nil {
		return
	}
	go func(r Reservation) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.notifier.NotifyBookingConfirmed(ctx, BookingNotification{
			ReservationID: r.ID,
			ConcertName:   r.ConcertName,
			CustomerName:  r.CustomerName,
			CustomerEmail: r.CustomerEmail,
			Quantity:      r.Quantity,
			TotalPrice:    r.TotalPrice,
			ReservedAt:    r.ReservedAt,
		})
		if err != nil {
			s.log.LogSideEffectFailure(ctx, "booking_confirmation", err)
		}
	}(*reservation)
}
