package concerts

import (
	"time"
)

// Status is the booking gate for a concert.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// IsValid reports whether s is a known concert status.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Concert is the inventory row guarded by the per-concert lock.
// AvailableTickets must stay within [0, TotalTickets]; both bounds are also
// enforced by CHECK constraints (see shared/database/constraints.go).
type Concert struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"not null;size:255"`
	Artist           string    `json:"artist" gorm:"not null;size:255"`
	Date             time.Time `json:"date" gorm:"type:date;not null"`
	Venue            string    `json:"venue" gorm:"not null;size:255"`
	TotalTickets     int       `json:"totalTickets" gorm:"not null"`
	AvailableTickets int       `json:"availableTickets" gorm:"not null"`
	Price            float64   `json:"price" gorm:"not null;type:decimal(10,2)"`
	Status           Status    `json:"status" gorm:"type:varchar(20);default:'open';index"`
	ImageURL         string    `json:"imageUrl" gorm:"size:500"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Concert) TableName() string {
	return "concerts"
}

// BookedTickets is the number of tickets currently sold.
func (c *Concert) BookedTickets() int {
	return c.TotalTickets - c.AvailableTickets
}

// IsOpen reports whether the concert accepts bookings.
func (c *Concert) IsOpen() bool {
	return c.Status == StatusOpen
}
