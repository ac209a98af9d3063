package concerts

import (
	"errors"
	"fmt"
)

// ErrConcertNotFound is returned when a concert id does not exist.
var ErrConcertNotFound = errors.New("concert not found")

// CapacityReductionError rejects an admin update that would shrink
// TotalTickets below the tickets already booked.
type CapacityReductionError struct {
	BookedTickets int
}

func (e *CapacityReductionError) Error() string {
	return fmt.Sprintf("cannot reduce total tickets below booked tickets (%d booked)", e.BookedTickets)
}
