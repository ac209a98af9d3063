package reservations

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"concertly/internal/concerts"
)

// These tests run against a real PostgreSQL instance and are skipped unless
// TEST_DATABASE_DSN is set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&concerts.Concert{}, &Reservation{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM reservations")
		db.Exec("DELETE FROM concerts")
	})
	return db
}

func seedTestConcert(t *testing.T, db *gorm.DB, available int, status concerts.Status) *concerts.Concert {
	t.Helper()
	concert := &concerts.Concert{
		Name:             "Integration Night",
		Artist:           "Test Artist",
		Date:             time.Now().AddDate(0, 1, 0),
		Venue:            "Test Hall",
		TotalTickets:     available,
		AvailableTickets: available,
		Price:            100,
		Status:           status,
	}
	require.NoError(t, db.Create(concert).Error)
	return concert
}

func newTestReservation(t *testing.T, concertID uint, quantity int) *Reservation {
	t.Helper()
	id, err := NewReservationID()
	require.NoError(t, err)
	return &Reservation{
		ID:            id,
		ConcertID:     concertID,
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Quantity:      quantity,
	}
}

func TestRepositoryCreateReservation(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 50, concerts.StatusOpen)

	reservation := newTestReservation(t, concert.ID, 3)
	snapshot, err := repo.CreateReservation(context.Background(), reservation)
	require.NoError(t, err)

	assert.Equal(t, 47, snapshot.AvailableTickets)
	assert.Equal(t, "Integration Night", reservation.ConcertName)
	assert.Equal(t, 300.0, reservation.TotalPrice)
	assert.Equal(t, StatusConfirmed, reservation.Status)
	assert.False(t, reservation.ReservedAt.IsZero())
}

func TestRepositoryCreateReservationInsufficient(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 2, concerts.StatusOpen)

	_, err := repo.CreateReservation(context.Background(), newTestReservation(t, concert.ID, 5))
	var availErr *AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, 2, availErr.Available)

	var stored concerts.Concert
	require.NoError(t, db.First(&stored, concert.ID).Error)
	assert.Equal(t, 2, stored.AvailableTickets)
}

func TestRepositoryCreateReservationClosedConcert(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 50, concerts.StatusClosed)

	_, err := repo.CreateReservation(context.Background(), newTestReservation(t, concert.ID, 1))
	assert.ErrorIs(t, err, ErrBookingClosed)
}

func TestRepositoryAbortedBookingLeavesNoTrace(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 50, concerts.StatusOpen)

	first := newTestReservation(t, concert.ID, 2)
	_, err := repo.CreateReservation(context.Background(), first)
	require.NoError(t, err)

	// Reusing the same primary key makes the insert fail after the
	// decrement has already run inside the transaction. Both writes
	// must roll back together.
	clash := newTestReservation(t, concert.ID, 5)
	clash.ID = first.ID
	_, err = repo.CreateReservation(context.Background(), clash)
	require.ErrorIs(t, err, ErrDuplicateID)

	var stored concerts.Concert
	require.NoError(t, db.First(&stored, concert.ID).Error)
	assert.Equal(t, 48, stored.AvailableTickets)

	var count int64
	require.NoError(t, db.Model(&Reservation{}).Where("concert_id = ?", concert.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryConcurrentCreateDoesNotOversell(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 10, concerts.StatusOpen)

	const attempts = 20
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func(n int) {
			r := &Reservation{
				ID:            fmt.Sprintf("RESCONCURRENT%04d", n),
				ConcertID:     concert.ID,
				CustomerName:  "Load Tester",
				CustomerEmail: "load@example.com",
				Quantity:      1,
			}
			_, err := repo.CreateReservation(context.Background(), r)
			errs <- err
		}(i)
	}

	succeeded := 0
	for i := 0; i < attempts; i++ {
		if err := <-errs; err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded)

	var stored concerts.Concert
	require.NoError(t, db.First(&stored, concert.ID).Error)
	assert.Equal(t, 0, stored.AvailableTickets)
}

func TestRepositoryCancelReturnsTickets(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 20, concerts.StatusOpen)

	reservation := newTestReservation(t, concert.ID, 4)
	_, err := repo.CreateReservation(context.Background(), reservation)
	require.NoError(t, err)

	updated, snapshot, err := repo.UpdateStatusWithInventoryAdjust(context.Background(), reservation.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	require.NotNil(t, snapshot)
	assert.Equal(t, 20, snapshot.AvailableTickets)

	// Repeating the cancellation changes nothing.
	_, snapshot, err = repo.UpdateStatusWithInventoryAdjust(context.Background(), reservation.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestRepositoryGetByEmailCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	concert := seedTestConcert(t, db, 20, concerts.StatusOpen)

	reservation := newTestReservation(t, concert.ID, 1)
	_, err := repo.CreateReservation(context.Background(), reservation)
	require.NoError(t, err)

	found, err := repo.GetByEmail(context.Background(), "ALICE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
