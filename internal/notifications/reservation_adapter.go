package notifications

import (
	"context"

	"concertly/internal/reservations"
)

// ReservationNotifierAdapter satisfies the reservations package's Notifier
// without that package importing this one.
type ReservationNotifierAdapter struct {
	service Service
}

func NewReservationNotifierAdapter(service Service) *ReservationNotifierAdapter {
	return &ReservationNotifierAdapter{service: service}
}

func (a *ReservationNotifierAdapter) NotifyBookingConfirmed(ctx context.Context, n reservations.BookingNotification) error {
	return a.service.SendBookingConfirmation(ctx, BookingConfirmation{
		ReservationID: n.ReservationID,
		ConcertName:   n.ConcertName,
		CustomerName:  n.CustomerName,
		CustomerEmail: n.CustomerEmail,
		Quantity:      n.Quantity,
		TotalPrice:    n.TotalPrice,
	})
}
