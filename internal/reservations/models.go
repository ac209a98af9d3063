package reservations

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"concertly/internal/concerts"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID            string            `json:"id" gorm:"primaryKey;size:50"`
	ConcertID     uint              `json:"concertId" gorm:"not null;index"`
	Concert       *concerts.Concert `json:"-" gorm:"foreignKey:ConcertID;constraint:OnDelete:CASCADE"`
	ConcertName   string            `json:"concertName" gorm:"size:255;not null"`
	CustomerName  string            `json:"customerName" gorm:"size:255;not null"`
	CustomerEmail string            `json:"customerEmail" gorm:"size:255;not null;index"`
	Quantity      int               `json:"quantity" gorm:"not null"`
	TotalPrice    float64           `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	ReservedAt    time.Time         `json:"reservedAt" gorm:"not null"`
	Status        Status            `json:"status" gorm:"type:varchar(20);not null;default:'confirmed';index"`
	GoogleAuth    bool              `json:"googleAuth" gorm:"not null;default:false"`
	CreatedAt     time.Time         `json:"-"`
	UpdatedAt     time.Time         `json:"-"`
}

func (Reservation) TableName() string {
	return "reservations"
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReservationID builds a human-readable reservation identifier from the
// current millisecond timestamp plus a random base36 suffix.
func NewReservationID() (string, error) {
	suffix := make([]byte, 9)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate reservation ID: %w", err)
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return fmt.Sprintf("RES%d%s", time.Now().UnixMilli(), suffix), nil
}
