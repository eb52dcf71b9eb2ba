package localstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skysailor/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testFlight(id string) domain.Flight {
	return domain.Flight{
		ID:             id,
		Origin:         "NYC",
		Destination:    "LAX",
		DepartureDate:  domain.NewDate(2024, time.May, 20),
		Price:          300,
		PassengerCount: 10,
		TripType:       domain.TripTypeOneWay,
	}
}

func testBooked(id, userID string, archived bool) domain.BookedFlight {
	return domain.BookedFlight{
		ID:             id,
		UserID:         userID,
		FlightID:       "f1",
		Origin:         "NYC",
		Destination:    "LAX",
		DepartureDate:  domain.NewDate(2024, time.May, 20),
		Price:          300,
		PassengerCount: 2,
		TripType:       domain.TripTypeOneWay,
		Archived:       archived,
	}
}

func TestStore_UpdateFlight_PartialPatch(t *testing.T) {
	s := newTestStore(t)
	f := testFlight("f1")
	require.NoError(t, s.PutFlight(&f))

	price := 350.0
	rows, err := s.UpdateFlight("f1", FlightPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.GetFlight("f1")
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.Price)
	assert.Equal(t, "NYC", got.Origin)
	assert.Equal(t, "LAX", got.Destination)
	assert.Equal(t, 10, got.PassengerCount)
	assert.Equal(t, f.DepartureDate, got.DepartureDate)

	rows, err = s.UpdateFlight("missing", FlightPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestStore_PutFlights_ReplacesById(t *testing.T) {
	s := newTestStore(t)
	f1, f2 := testFlight("f1"), testFlight("f2")
	require.NoError(t, s.PutFlights([]domain.Flight{f1, f2}))

	f1.PassengerCount = 4
	require.NoError(t, s.PutFlights([]domain.Flight{f1}))

	flights, err := s.ListFlights()
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, "f1", flights[0].ID)
	assert.Equal(t, 4, flights[0].PassengerCount)
	assert.Equal(t, 10, flights[1].PassengerCount)
}

func TestStore_DeleteFlight(t *testing.T) {
	s := newTestStore(t)
	f := testFlight("f1")
	require.NoError(t, s.PutFlight(&f))

	rows, err := s.DeleteFlight("f1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = s.GetFlight("f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows, err = s.DeleteFlight("f1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestStore_SoftDeleteBookedFlight(t *testing.T) {
	s := newTestStore(t)
	archived := testBooked("b1", "u1", true)
	active := testBooked("b2", "u1", false)
	require.NoError(t, s.PutBookedFlights([]domain.BookedFlight{archived, active}))

	rows, err := s.SoftDeleteBookedFlight("b1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	got, err := s.GetBookedFlight("b1")
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	rows, err = s.SoftDeleteBookedFlight("b2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	got, err = s.GetBookedFlight("b2")
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}

func TestStore_ListBookedFlights_ByUser(t *testing.T) {
	s := newTestStore(t)
	b1 := testBooked("b1", "u1", false)
	b2 := testBooked("b2", "u2", false)
	require.NoError(t, s.PutBookedFlights([]domain.BookedFlight{b1, b2}))

	list, err := s.ListBookedFlights("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b1", list[0].ID)

	// moving a row to another user drops it from the old index
	b1.UserID = "u2"
	require.NoError(t, s.PutBookedFlight(&b1))

	list, err = s.ListBookedFlights("u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.ListBookedFlights("u2")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_UpdateBookedFlight(t *testing.T) {
	s := newTestStore(t)
	b := testBooked("b1", "u1", false)
	require.NoError(t, s.PutBookedFlight(&b))

	archived := true
	rows, err := s.UpdateBookedFlight("b1", BookedFlightPatch{Archived: &archived})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.GetBookedFlight("b1")
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Equal(t, 2, got.PassengerCount)
}

func TestStore_UpdateBookedFlight_DeletedStaysArchived(t *testing.T) {
	s := newTestStore(t)
	b := testBooked("b1", "u1", true)
	require.NoError(t, s.PutBookedFlight(&b))

	rows, err := s.SoftDeleteBookedFlight("b1")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	unarchive := false
	rows, err = s.UpdateBookedFlight("b1", BookedFlightPatch{Archived: &unarchive})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	got, err := s.GetBookedFlight("b1")
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.True(t, got.Deleted)

	// other fields of a deleted row can still change
	price := 410.0
	rows, err = s.UpdateBookedFlight("b1", BookedFlightPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}
