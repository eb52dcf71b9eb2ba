package domain

import "time"

type BookedFlight struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FlightID       string    `json:"flightId,omitempty"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureDate  Date      `json:"departureDate"`
	ReturnDate     *Date     `json:"returnDate,omitempty"`
	Price          float64   `json:"price"`
	PassengerCount int       `json:"passengerCount"`
	TripType       TripType  `json:"tripType"`
	Archived       bool      `json:"archived"`
	Deleted        bool      `json:"deleted"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// NewBookedFlight copies the bookable details of f into a fresh, active booking
// for passengers seats.
func NewBookedFlight(id, userID string, f *Flight, passengers int) *BookedFlight {
	b := &BookedFlight{
		ID:             id,
		UserID:         userID,
		FlightID:       f.ID,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureDate:  f.DepartureDate,
		Price:          f.Price,
		PassengerCount: passengers,
		TripType:       f.TripType,
	}
	if f.ReturnDate != nil {
		rd := *f.ReturnDate
		b.ReturnDate = &rd
	}
	return b
}

// BookedFlightFilter narrows a user's bookings. Nil fields are not applied.
type BookedFlightFilter struct {
	Archived *bool
	Deleted  *bool
}
