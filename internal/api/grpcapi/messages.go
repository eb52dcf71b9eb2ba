package grpcapi

import "github.com/Domenick1991/skysailor/internal/domain"

type Empty struct{}

type GetFlightRequest struct {
	ID string `json:"id"`
}

type FlightResponse struct {
	Flight *domain.Flight `json:"flight"`
}

type FlightList struct {
	Flights []domain.Flight `json:"flights"`
}

type BookRequest struct {
	FlightID   string `json:"flightId"`
	Passengers int    `json:"passengers"`
}

type BookingRequest struct {
	ID string `json:"id"`
}

type ArchiveRequest struct {
	ID       string `json:"id"`
	Archived bool   `json:"archived"`
}

type BookedFlightResponse struct {
	BookedFlight *domain.BookedFlight `json:"bookedFlight"`
}

type BookedFlightList struct {
	BookedFlights []domain.BookedFlight `json:"bookedFlights"`
}

type DeleteResponse struct {
	RowsAffected int64 `json:"rowsAffected"`
}
