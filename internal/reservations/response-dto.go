package reservations

import "time"

// ReservationResponse is the public view of a reservation.
type ReservationResponse struct {
	ID            string    `json:"id"`
	ConcertID     uint      `json:"concertId"`
	ConcertName   string    `json:"concertName"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	Quantity      int       `json:"quantity"`
	TotalPrice    float64   `json:"totalPrice"`
	ReservedAt    time.Time `json:"reservedAt"`
	Status        string    `json:"status"`
	GoogleAuth    bool      `json:"googleAuth"`
}

func ToReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		ConcertID:     r.ConcertID,
		ConcertName:   r.ConcertName,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Quantity:      r.Quantity,
		TotalPrice:    r.TotalPrice,
		ReservedAt:    r.ReservedAt,
		Status:        string(r.Status),
		GoogleAuth:    r.GoogleAuth,
	}
}

func ToReservationResponses(reservations []Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, ToReservationResponse(&reservations[i]))
	}
	return out
}
