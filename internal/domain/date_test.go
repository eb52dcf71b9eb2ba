package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	type row struct {
		Departure Date  `json:"departureDate"`
		Return    *Date `json:"returnDate,omitempty"`
	}

	data, err := json.Marshal(row{Departure: NewDate(2024, time.May, 20)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"departureDate":"2024-05-20"}`, string(data))

	var decoded row
	require.NoError(t, json.Unmarshal([]byte(`{"departureDate":"2024-05-20","returnDate":"2024-05-27"}`), &decoded))
	assert.Equal(t, NewDate(2024, time.May, 20), decoded.Departure)
	require.NotNil(t, decoded.Return)
	assert.Equal(t, "2024-05-27", decoded.Return.String())

	assert.Error(t, json.Unmarshal([]byte(`{"departureDate":"20-05-2024"}`), &decoded))
}

func TestDate_Between(t *testing.T) {
	from := NewDate(2024, time.December, 30)
	to := from.AddDays(3)

	assert.Equal(t, "2025-01-02", to.String())
	assert.True(t, from.Between(from, to))
	assert.True(t, to.Between(from, to))
	assert.True(t, NewDate(2025, time.January, 1).Between(from, to))
	assert.False(t, from.AddDays(-1).Between(from, to))
	assert.False(t, to.AddDays(1).Between(from, to))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestNewBookedFlight_CopiesFlight(t *testing.T) {
	ret := NewDate(2024, time.May, 27)
	flightReturn := ret
	f := &Flight{
		ID: "f1", Origin: "NYC", Destination: "LAX",
		DepartureDate: NewDate(2024, time.May, 20), ReturnDate: &flightReturn,
		Price: 300, PassengerCount: 10, TripType: TripTypeReturn, Archived: true,
	}

	b := NewBookedFlight("b1", "u1", f, 2)

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "u1", b.UserID)
	assert.Equal(t, "f1", b.FlightID)
	assert.Equal(t, 2, b.PassengerCount)
	assert.Equal(t, 300.0, b.Price)
	assert.False(t, b.Archived)
	assert.False(t, b.Deleted)
	require.NotNil(t, b.ReturnDate)
	assert.Equal(t, ret, *b.ReturnDate)

	// the copy must not alias the flight's return date
	*f.ReturnDate = ret.AddDays(1)
	assert.Equal(t, ret, *b.ReturnDate)
}
