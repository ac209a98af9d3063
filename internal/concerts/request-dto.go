package concerts

// CreateConcertRequest is the admin payload for a new concert.
type CreateConcertRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=255"`
	Artist       string  `json:"artist" binding:"required,min=1,max=255"`
	Date         string  `json:"date" binding:"required,concertdate"`
	Venue        string  `json:"venue" binding:"required,min=1,max=255"`
	TotalTickets int     `json:"totalTickets" binding:"required,min=1,max=1000000"`
	Price        float64 `json:"price" binding:"required,min=0"`
	ImageURL     string  `json:"imageUrl" binding:"omitempty,url"`
}

// UpdateConcertRequest is a partial admin update. A TotalTickets change
// shifts AvailableTickets by the same delta so the booked count is preserved.
type UpdateConcertRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Artist       *string  `json:"artist" binding:"omitempty,min=1,max=255"`
	Date         *string  `json:"date" binding:"omitempty,concertdate"`
	Venue        *string  `json:"venue" binding:"omitempty,min=1,max=255"`
	TotalTickets *int     `json:"totalTickets" binding:"omitempty,min=0,max=1000000"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	Status       *string  `json:"status" binding:"omitempty,oneof=open closed"`
	ImageURL     *string  `json:"imageUrl" binding:"omitempty,url"`
}
