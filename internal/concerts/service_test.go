package concerts

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertly/internal/shared/config"
	"concertly/pkg/cache"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
)

type fakeConcertRepo struct {
	mu       sync.Mutex
	concerts map[uint]*Concert
	nextID   uint
}

func newFakeConcertRepo(cs ...*Concert) *fakeConcertRepo {
	repo := &fakeConcertRepo{concerts: make(map[uint]*Concert), nextID: 1}
	for _, c := range cs {
		repo.concerts[c.ID] = c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (f *fakeConcertRepo) Create(ctx context.Context, concert *Concert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	concert.ID = f.nextID
	f.nextID++
	stored := *concert
	f.concerts[concert.ID] = &stored
	return nil
}

func (f *fakeConcertRepo) GetByID(ctx context.Context, id uint) (*Concert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concerts[id]
	if !ok {
		return nil, ErrConcertNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeConcertRepo) GetAll(ctx context.Context) ([]Concert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Concert, 0, len(f.concerts))
	for _, c := range f.concerts {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeConcertRepo) UpdateGuarded(ctx context.Context, id uint, req UpdateConcertRequest) (*Concert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concerts[id]
	if !ok {
		return nil, ErrConcertNotFound
	}
	if req.TotalTickets != nil && *req.TotalTickets != c.TotalTickets {
		booked := c.BookedTickets()
		if *req.TotalTickets < booked {
			return nil, &CapacityReductionError{BookedTickets: booked}
		}
		c.AvailableTickets = *req.TotalTickets - booked
		c.TotalTickets = *req.TotalTickets
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Status != nil {
		c.Status = Status(*req.Status)
	}
	out := *c
	return &out, nil
}

func (f *fakeConcertRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.concerts[id]; !ok {
		return ErrConcertNotFound
	}
	delete(f.concerts, id)
	return nil
}

// fakeCache is an in-memory stand-in for the Redis JSON cache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	purges  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string][]byte)
	f.purges++
	return nil
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := f.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return f.Get(ctx, key, dest)
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func concertTestConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			LockAcquireTimeout: 5 * time.Second,
			MaxQuantity:        10,
			IDRetries:          3,
		},
		Redis: config.RedisConfig{
			ConcertListTTL:   time.Minute,
			ConcertDetailTTL: 5 * time.Minute,
		},
	}
}

func newConcertService(repo Repository, cacheSvc cache.Service) Service {
	return NewService(repo, keylock.New(), cacheSvc, nil, concertTestConfig(), logger.GetDefault())
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func soldConcert(id uint, total, available int) *Concert {
	return &Concert{
		ID:               id,
		Name:             "Arena Night",
		Artist:           "The Band",
		Date:             time.Now().AddDate(0, 2, 0),
		Venue:            "Arena",
		TotalTickets:     total,
		AvailableTickets: available,
		Price:            80,
		Status:           StatusOpen,
	}
}

func TestCreateConcertStartsFullyAvailable(t *testing.T) {
	repo := newFakeConcertRepo()
	svc := newConcertService(repo, newFakeCache())

	resp, err := svc.CreateConcert(context.Background(), CreateConcertRequest{
		Name:         "Summer Fest",
		Artist:       "Various",
		Date:         "2026-07-01",
		Venue:        "Park",
		TotalTickets: 300,
		Price:        45,
	})
	require.NoError(t, err)

	assert.Equal(t, 300, resp.TotalTickets)
	assert.Equal(t, 300, resp.AvailableTickets)
	assert.Equal(t, 0, resp.BookedTickets)
	assert.Equal(t, string(StatusOpen), resp.Status)
	assert.NotEmpty(t, resp.ImageURL)
	assert.Equal(t, "2026-07-01", resp.Date)
}

func TestGetConcertUsesCache(t *testing.T) {
	repo := newFakeConcertRepo(soldConcert(1, 100, 100))
	cacheSvc := newFakeCache()
	svc := newConcertService(repo, cacheSvc)

	first, err := svc.GetConcert(context.Background(), 1)
	require.NoError(t, err)

	// Mutate the store behind the cache: the second read must still see the
	// cached value.
	repo.mu.Lock()
	repo.concerts[1].AvailableTickets = 5
	repo.mu.Unlock()

	second, err := svc.GetConcert(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first.AvailableTickets, second.AvailableTickets)
}

func TestGetConcertNotFound(t *testing.T) {
	svc := newConcertService(newFakeConcertRepo(), newFakeCache())

	_, err := svc.GetConcert(context.Background(), 99)
	assert.ErrorIs(t, err, ErrConcertNotFound)
}

func TestUpdateConcertShiftsAvailabilityWithTotal(t *testing.T) {
	repo := newFakeConcertRepo(soldConcert(1, 100, 60))
	svc := newConcertService(repo, newFakeCache())

	resp, err := svc.UpdateConcert(context.Background(), 1, UpdateConcertRequest{
		TotalTickets: intPtr(150),
	})
	require.NoError(t, err)

	assert.Equal(t, 150, resp.TotalTickets)
	assert.Equal(t, 110, resp.AvailableTickets)
	assert.Equal(t, 40, resp.BookedTickets)
}

func TestUpdateConcertRejectsReductionBelowBooked(t *testing.T) {
	repo := newFakeConcertRepo(soldConcert(1, 100, 60))
	svc := newConcertService(repo, newFakeCache())

	_, err := svc.UpdateConcert(context.Background(), 1, UpdateConcertRequest{
		TotalTickets: intPtr(30),
	})

	var capErr *CapacityReductionError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 40, capErr.BookedTickets)

	unchanged, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, unchanged.TotalTickets)
	assert.Equal(t, 60, unchanged.AvailableTickets)
}

func TestUpdateConcertInvalidatesCache(t *testing.T) {
	repo := newFakeConcertRepo(soldConcert(1, 100, 100))
	cacheSvc := newFakeCache()
	svc := newConcertService(repo, cacheSvc)

	_, err := svc.GetConcert(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.UpdateConcert(context.Background(), 1, UpdateConcertRequest{
		Status: strPtr(string(StatusClosed)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cacheSvc.purges)

	refreshed, err := svc.GetConcert(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(StatusClosed), refreshed.Status)
}

func TestDeleteConcertNotFound(t *testing.T) {
	svc := newConcertService(newFakeConcertRepo(), newFakeCache())

	err := svc.DeleteConcert(context.Background(), 7)
	assert.ErrorIs(t, err, ErrConcertNotFound)
}
