package domain

type TripType string

const (
	TripTypeOneWay TripType = "One Way"
	TripTypeReturn TripType = "Return"
)

func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeReturn
}

type Flight struct {
	ID             string   `json:"id"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartureDate  Date     `json:"departureDate"`
	ReturnDate     *Date    `json:"returnDate,omitempty"`
	Price          float64  `json:"price"`
	PassengerCount int      `json:"passengerCount"`
	TripType       TripType `json:"tripType"`
	Archived       bool     `json:"archived"`
	// Version is bumped on every capacity change and guards the booking transaction.
	Version int64 `json:"-"`
}
