package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeBookingConfirmation NotificationType = "booking_confirmation"
	TypeConcertReminder     NotificationType = "concert_reminder"
)

type NotificationStatus string

const (
	StatusQueued  NotificationStatus = "queued"
	StatusSending NotificationStatus = "sending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// Notification is the message carried through the Kafka pipeline to the
// email workers.
type Notification struct {
	ID             uuid.UUID              `json:"id"`
	Type           NotificationType       `json:"type"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
	Subject        string                 `json:"subject"`
	Data           map[string]interface{} `json:"data"`
	Status         NotificationStatus     `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	LastError      string                 `json:"last_error,omitempty"`
}

func NewNotification(t NotificationType, email, name, subject string, data map[string]interface{}) *Notification {
	return &Notification{
		ID:             uuid.New(),
		Type:           t,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        subject,
		Data:           data,
		Status:         StatusQueued,
		CreatedAt:      time.Now().UTC(),
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all notifications for one recipient to the same
// partition, preserving per-recipient ordering.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientEmail
}

func (n *Notification) MarkSent() {
	n.Status = StatusSent
}

func (n *Notification) MarkFailed(err error) {
	n.Status = StatusFailed
	n.LastError = err.Error()
}
