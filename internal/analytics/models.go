package analytics

// Stats is the admin dashboard rollup.
type Stats struct {
	TotalConcerts     int64          `json:"totalConcerts"`
	ActiveConcerts    int64          `json:"activeConcerts"`
	TotalReservations int64          `json:"totalReservations"`
	TotalTicketsSold  int64          `json:"totalTicketsSold"`
	TotalRevenue      float64        `json:"totalRevenue"`
	ConcertStats      []ConcertStats `json:"concertStats"`
}

// ConcertStats is a per-concert sales rollup. Cancelled reservations are
// excluded from the sold and revenue figures.
type ConcertStats struct {
	ConcertID        uint    `json:"concertId"`
	ConcertName      string  `json:"concertName"`
	TotalTickets     int     `json:"totalTickets"`
	AvailableTickets int     `json:"availableTickets"`
	TicketsSold      int64   `json:"ticketsSold"`
	Revenue          float64 `json:"revenue"`
	Status           string  `json:"status"`
}
