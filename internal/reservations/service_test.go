package reservations

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertly/internal/concerts"
	"concertly/internal/shared/config"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
)

// fakeRepository keeps concerts and reservations in maps. The window
// between the availability check and the decrement deliberately yields the
// scheduler, so callers that are not serialized by the concert lock would
// oversell.
type fakeRepository struct {
	mu           sync.Mutex
	concerts     map[uint]*concerts.Concert
	reservations map[string]*Reservation
	duplicates   int
}

func newFakeRepository(cs ...*concerts.Concert) *fakeRepository {
	repo := &fakeRepository{
		concerts:     make(map[uint]*concerts.Concert),
		reservations: make(map[string]*Reservation),
	}
	for _, c := range cs {
		repo.concerts[c.ID] = c
	}
	return repo
}

func (f *fakeRepository) CreateReservation(ctx context.Context, reservation *Reservation) (*concerts.Concert, error) {
	f.mu.Lock()
	if f.duplicates > 0 {
		f.duplicates--
		f.mu.Unlock()
		return nil, ErrDuplicateID
	}
	concert, ok := f.concerts[reservation.ConcertID]
	if !ok {
		f.mu.Unlock()
		return nil, concerts.ErrConcertNotFound
	}
	if !concert.IsOpen() {
		f.mu.Unlock()
		return nil, ErrBookingClosed
	}
	available := concert.AvailableTickets
	f.mu.Unlock()

	if available < reservation.Quantity {
		return nil, &AvailabilityError{Available: available}
	}

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	concert.AvailableTickets = available - reservation.Quantity
	reservation.ConcertName = concert.Name
	reservation.TotalPrice = concert.Price * float64(reservation.Quantity)
	reservation.ReservedAt = time.Now().UTC()
	reservation.Status = StatusConfirmed
	stored := *reservation
	f.reservations[reservation.ID] = &stored
	snapshot := *concert
	return &snapshot, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeRepository) GetAll(ctx context.Context) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepository) GetByEmail(ctx context.Context, email string) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if strings.EqualFold(r.CustomerEmail, email) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateStatusWithInventoryAdjust(ctx context.Context, id string, newStatus Status) (*Reservation, *concerts.Concert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, nil, ErrReservationNotFound
	}
	if r.Status == newStatus {
		out := *r
		return &out, nil, nil
	}
	concert := f.concerts[r.ConcertID]
	var snapshot *concerts.Concert
	if newStatus == StatusCancelled {
		concert.AvailableTickets += r.Quantity
		if concert.AvailableTickets > concert.TotalTickets {
			concert.AvailableTickets = concert.TotalTickets
		}
		s := *concert
		snapshot = &s
	} else if r.Status == StatusCancelled {
		if concert.AvailableTickets < r.Quantity {
			return nil, nil, &AvailabilityError{Available: concert.AvailableTickets}
		}
		concert.AvailableTickets -= r.Quantity
		s := *concert
		snapshot = &s
	}
	r.Status = newStatus
	out := *r
	return &out, snapshot, nil
}

func (f *fakeRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.Status == StatusPending && r.ReservedAt.Before(olderThan) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepository) available(id uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.concerts[id].AvailableTickets
}

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			LockAcquireTimeout: 5 * time.Second,
			MaxQuantity:        10,
			IDRetries:          3,
		},
	}
}

func newTestService(repo Repository) (Service, *keylock.Registry) {
	locks := keylock.New()
	svc := NewService(repo, locks, nil, nil, nil, testConfig(), logger.GetDefault())
	return svc, locks
}

func openConcert(id uint, available int) *concerts.Concert {
	return &concerts.Concert{
		ID:               id,
		Name:             "Test Concert",
		Artist:           "Test Artist",
		Date:             time.Now().AddDate(0, 1, 0),
		Venue:            "Test Venue",
		TotalTickets:     available,
		AvailableTickets: available,
		Price:            50,
		Status:           concerts.StatusOpen,
	}
}

func bookingRequest(concertID uint, quantity int) CreateReservationRequest {
	return CreateReservationRequest{
		ConcertID:     concertID,
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Quantity:      quantity,
	}
}

func TestCreateReservationDecrementsAvailability(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 100))
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 3))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Contains(t, resp.ID, "RES")
	assert.Equal(t, "Test Concert", resp.ConcertName)
	assert.Equal(t, 150.0, resp.TotalPrice)
	assert.Equal(t, string(StatusConfirmed), resp.Status)
	assert.Equal(t, 97, repo.available(1))
}

func TestCreateReservationConcertNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), bookingRequest(42, 1))
	assert.ErrorIs(t, err, concerts.ErrConcertNotFound)
}

func TestCreateReservationBookingClosed(t *testing.T) {
	c := openConcert(1, 100)
	c.Status = concerts.StatusClosed
	repo := newFakeRepository(c)
	svc, _ := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), bookingRequest(1, 1))
	assert.ErrorIs(t, err, ErrBookingClosed)
	assert.Equal(t, 100, repo.available(1))
}

func TestCreateReservationInsufficientTickets(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 2))
	svc, _ := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), bookingRequest(1, 5))
	var availErr *AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, 2, availErr.Available)
	assert.Equal(t, 2, repo.available(1))
}

func TestCreateReservationEnforcesConfiguredMaxQuantity(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 100))
	cfg := testConfig()
	cfg.Booking.MaxQuantity = 4
	svc := NewService(repo, keylock.New(), nil, nil, nil, cfg, logger.GetDefault())

	_, err := svc.CreateReservation(context.Background(), bookingRequest(1, 5))
	var qtyErr *QuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, 4, qtyErr.Max)
	assert.Equal(t, 100, repo.available(1))

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 4))
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Quantity)
	assert.Equal(t, 96, repo.available(1))
}

func TestCreateReservationRetriesDuplicateID(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	repo.duplicates = 2
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 9, repo.available(1))
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	const (
		initial    = 20
		goroutines = 50
		quantity   = 2
	)
	repo := newFakeRepository(openConcert(1, initial))
	svc, locks := newTestService(repo)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		soldOut   atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateReservation(context.Background(), bookingRequest(1, quantity))
			if err == nil {
				succeeded.Add(1)
				return
			}
			var availErr *AvailabilityError
			if assert.ErrorAs(t, err, &availErr) {
				soldOut.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(initial/quantity), succeeded.Load())
	assert.Equal(t, int32(goroutines-initial/quantity), soldOut.Load())
	assert.Equal(t, 0, repo.available(1))
	assert.Equal(t, 0, locks.Len())
}

func TestCompetingRequestsExactlyOneWins(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 6))
	svc, _ := newTestService(repo)

	var wg sync.WaitGroup
	results := make([]error, 2)
	quantities := []int{5, 4}
	for i := range quantities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateReservation(context.Background(), bookingRequest(1, quantities[i]))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for i, err := range results {
		if err == nil {
			wins++
			continue
		}
		var availErr *AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.Equal(t, 6-quantities[1-i], availErr.Available)
		losses++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestLockReleasedAfterFailedBooking(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 1))
	svc, locks := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), bookingRequest(1, 5))
	require.Error(t, err)
	assert.Equal(t, 0, locks.Len())

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 1))
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 0, locks.Len())
}

func TestCancelRestoresAvailability(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 4))
	require.NoError(t, err)
	require.Equal(t, 6, repo.available(1))

	cancelled, err := svc.CancelReservation(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), cancelled.Status)
	assert.Equal(t, 10, repo.available(1))
}

func TestCancelIsIdempotent(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 4))
	require.NoError(t, err)

	_, err = svc.CancelReservation(context.Background(), resp.ID)
	require.NoError(t, err)
	_, err = svc.CancelReservation(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.available(1))
}

func TestCancelUnknownReservation(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	_, err := svc.CancelReservation(context.Background(), "RES-missing")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReinstateCancelledChecksAvailability(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 6))
	require.NoError(t, err)
	_, err = svc.CancelReservation(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, 10, repo.available(1))

	// Someone else takes most of the returned tickets.
	_, err = svc.CreateReservation(context.Background(), bookingRequest(1, 8))
	require.NoError(t, err)

	_, err = svc.UpdateReservationStatus(context.Background(), resp.ID, StatusConfirmed)
	var availErr *AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, 2, availErr.Available)
}

func TestGetReservationsByEmailIsCaseInsensitive(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	_, err := svc.CreateReservation(context.Background(), bookingRequest(1, 2))
	require.NoError(t, err)

	found, err := svc.GetReservationsByEmail(context.Background(), "ALICE@Example.COM")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCancelStalePending(t *testing.T) {
	repo := newFakeRepository(openConcert(1, 10))
	svc, _ := newTestService(repo)

	resp, err := svc.CreateReservation(context.Background(), bookingRequest(1, 3))
	require.NoError(t, err)

	repo.mu.Lock()
	r := repo.reservations[resp.ID]
	r.Status = StatusPending
	r.ReservedAt = time.Now().UTC().Add(-2 * time.Hour)
	repo.mu.Unlock()

	cancelled, err := svc.CancelStalePending(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, 10, repo.available(1))
}

func TestNewReservationIDFormat(t *testing.T) {
	id, err := NewReservationID()
	require.NoError(t, err)
	assert.True(t, len(id) > 12)
	assert.Equal(t, "RES", id[:3])

	other, err := NewReservationID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}
