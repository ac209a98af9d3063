package concerts

import (
	"context"
	"fmt"
	"time"

	"concertly/internal/shared/config"
	"concertly/internal/shared/constants"
	"concertly/internal/shared/validation"
	"concertly/pkg/cache"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
)

const defaultImageURL = "https://images.unsplash.com/photo-1501386761578-eac5c94b800a?w=800"

// AvailabilityBroadcaster publishes ticket availability changes to
// interested subscribers. Implemented by the realtime publisher.
type AvailabilityBroadcaster interface {
	PublishAvailability(ctx context.Context, concertID uint, availableTickets int) error
}

type Service interface {
	CreateConcert(ctx context.Context, req CreateConcertRequest) (*ConcertResponse, error)
	GetConcert(ctx context.Context, id uint) (*ConcertResponse, error)
	GetConcerts(ctx context.Context) ([]ConcertResponse, error)
	UpdateConcert(ctx context.Context, id uint, req UpdateConcertRequest) (*ConcertResponse, error)
	DeleteConcert(ctx context.Context, id uint) error
}

type service struct {
	repo        Repository
	locks       *keylock.Registry
	cache       cache.Service
	broadcaster AvailabilityBroadcaster
	cfg         *config.Config
	log         *logger.Logger
}

func NewService(repo Repository, locks *keylock.Registry, cacheSvc cache.Service, broadcaster AvailabilityBroadcaster, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		locks:       locks,
		cache:       cacheSvc,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
	}
}

func (s *service) CreateConcert(ctx context.Context, req CreateConcertRequest) (*ConcertResponse, error) {
	date, err := time.Parse(validation.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid concert date: %w", err)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = defaultImageURL
	}

	concert := &Concert{
		Name:             req.Name,
		Artist:           req.Artist,
		Date:             date,
		Venue:            req.Venue,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		Price:            req.Price,
		Status:           StatusOpen,
		ImageURL:         imageURL,
	}

	if err := s.repo.Create(ctx, concert); err != nil {
		return nil, fmt.Errorf("failed to create concert: %w", err)
	}

	s.invalidateCache(ctx)

	resp := ToConcertResponse(concert)
	return &resp, nil
}

func (s *service) GetConcert(ctx context.Context, id uint) (*ConcertResponse, error) {
	key := constants.BuildConcertDetailKey(fmt.Sprintf("%d", id))

	var resp ConcertResponse
	err := s.cache.GetOrSet(ctx, key, s.cfg.Redis.ConcertDetailTTL, func() (interface{}, error) {
		concert, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return ToConcertResponse(concert), nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) GetConcerts(ctx context.Context) ([]ConcertResponse, error) {
	var resp []ConcertResponse
	err := s.cache.GetOrSet(ctx, constants.KEY_CONCERT_LIST, s.cfg.Redis.ConcertListTTL, func() (interface{}, error) {
		concerts, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		return ToConcertResponses(concerts), nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateConcert applies an admin update while holding the concert lock so
// capacity changes cannot interleave with in-flight reservations.
func (s *service) UpdateConcert(ctx context.Context, id uint, req UpdateConcertRequest) (*ConcertResponse, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Booking.LockAcquireTimeout)
	defer cancel()

	var updated *Concert
	err := s.locks.WithLock(lockCtx, keylock.ConcertKey(id), func() error {
		var err error
		updated, err = s.repo.UpdateGuarded(ctx, id, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.LogConcertUpdated(ctx, updated.ID, updated.TotalTickets, updated.AvailableTickets)
	s.invalidateCache(ctx)
	s.broadcastAvailability(updated.ID, updated.AvailableTickets)

	resp := ToConcertResponse(updated)
	return &resp, nil
}

func (s *service) DeleteConcert(ctx context.Context, id uint) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Booking.LockAcquireTimeout)
	defer cancel()

	err := s.locks.WithLock(lockCtx, keylock.ConcertKey(id), func() error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *service) invalidateCache(ctx context.Context) {
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
