package concerts

import "concertly/internal/shared/validation"

// ConcertResponse is the public view of a concert.
type ConcertResponse struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Artist           string  `json:"artist"`
	Date             string  `json:"date"`
	Venue            string  `json:"venue"`
	TotalTickets     int     `json:"totalTickets"`
	AvailableTickets int     `json:"availableTickets"`
	BookedTickets    int     `json:"bookedTickets"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	ImageURL         string  `json:"imageUrl,omitempty"`
}

func ToConcertResponse(c *Concert) ConcertResponse {
	return ConcertResponse{
		ID:               c.ID,
		Name:             c.Name,
		Artist:           c.Artist,
		Date:             c.Date.Format(validation.DateLayout),
		Venue:            c.Venue,
		TotalTickets:     c.TotalTickets,
		AvailableTickets: c.AvailableTickets,
		BookedTickets:    c.BookedTickets(),
		Price:            c.Price,
		Status:           string(c.Status),
		ImageURL:         c.ImageURL,
	}
}

func ToConcertResponses(concerts []Concert) []ConcertResponse {
	out := make([]ConcertResponse, 0, len(concerts))
	for i := range concerts {
		out = append(out, ToConcertResponse(&concerts[i]))
	}
	return out
}
