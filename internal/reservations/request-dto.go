package reservations

// CreateReservationRequest is the booking payload. The quantity upper
// bound is enforced by the service against the configured per-reservation
// maximum.
type CreateReservationRequest struct {
	ConcertID     uint   `json:"concertId" binding:"required"`
	CustomerName  string `json:"customerName" binding:"required,min=1,max=255"`
	CustomerEmail string `json:"customerEmail" binding:"required,email,max=255"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	GoogleAuth    bool   `json:"googleAuth"`
}

// UpdateReservationStatusRequest changes a reservation's lifecycle state.
type UpdateReservationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed pending cancelled"`
}
