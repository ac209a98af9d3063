package reservations

import (
	"errors"
	"fmt"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrBookingClosed       = errors.New("booking is closed for this concert")
	ErrDuplicateID         = errors.New("reservation ID already exists")
)

// AvailabilityError is returned when a reservation asks for more tickets
// than the concert has left. Available carries the remaining count so
// callers can surface it.
type AvailabilityError struct {
	Available int
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("not enough tickets available (%d remaining)", e.Available)
}

// QuantityError is returned when a booking asks for a quantity outside the
// configured per-reservation limit.
type QuantityError struct {
	Max int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity must be between 1 and %d", e.Max)
}
