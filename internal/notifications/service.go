package notifications

import (
	"context"
	"fmt"

	"concertly/pkg/logger"
)

// BookingConfirmation holds the template data for a confirmation email.
type BookingConfirmation struct {
	ReservationID string
	ConcertName   string
	CustomerName  string
	CustomerEmail string
	Quantity      int
	TotalPrice    float64
}

// ConcertReminder holds the template data for an upcoming-concert email.
type ConcertReminder struct {
	ReservationID string
	ConcertName   string
	ConcertDate   string
	Venue         string
	CustomerName  string
	CustomerEmail string
	Quantity      int
}

// Service is the notification entry point. With a producer configured,
// notifications go through Kafka and the consumer workers deliver them;
// without one they are delivered inline.
type Service interface {
	SendBookingConfirmation(ctx context.Context, confirmation BookingConfirmation) error
	SendConcertReminder(ctx context.Context, reminder ConcertReminder) error
	Close() error
}

type service struct {
	producer Producer
	email    EmailService
	log      *logger.Logger
}

func NewService(producer Producer, email EmailService, log *logger.Logger) Service {
	return &service{
		producer: producer,
		email:    email,
		log:      log,
	}
}

func (s *service) SendBookingConfirmation(ctx context.Context, confirmation BookingConfirmation) error {
	notification := NewNotification(
		TypeBookingConfirmation,
		confirmation.CustomerEmail,
		confirmation.CustomerName,
		fmt.Sprintf("Booking Confirmed: %s", confirmation.ConcertName),
		map[string]interface{}{
			"reservationId": confirmation.ReservationID,
			"concertName":   confirmation.ConcertName,
			"customerName":  confirmation.CustomerName,
			"quantity":      confirmation.Quantity,
			"totalPrice":    confirmation.TotalPrice,
		},
	)
	return s.dispatch(ctx, notification)
}

func (s *service) SendConcertReminder(ctx context.Context, reminder ConcertReminder) error {
	notification := NewNotification(
		TypeConcertReminder,
		reminder.CustomerEmail,
		reminder.CustomerName,
		fmt.Sprintf("Reminder: %s is coming up", reminder.ConcertName),
		map[string]interface{}{
			"reservationId": reminder.ReservationID,
			"concertName":   reminder.ConcertName,
			"concertDate":   reminder.ConcertDate,
			"venue":         reminder.Venue,
			"customerName":  reminder.CustomerName,
			"quantity":      reminder.Quantity,
		},
	)
	return s.dispatch(ctx, notification)
}

func (s *service) dispatch(ctx context.Context, notification *Notification) error {
	if s.producer != nil {
		return s.producer.Publish(ctx, notification)
	}
	return s.email.Send(ctx, notification)
}

func (s *service) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
