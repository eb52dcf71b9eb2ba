package localstore

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/Domenick1991/skysailor/internal/domain"
)

// FlightPatch is a partial update; nil fields keep their stored value.
type FlightPatch struct {
	Origin         *string          `json:"origin"`
	Destination    *string          `json:"destination"`
	DepartureDate  *domain.Date     `json:"departureDate"`
	ReturnDate     *domain.Date     `json:"returnDate"`
	Price          *float64         `json:"price"`
	PassengerCount *int             `json:"passengerCount"`
	TripType       *domain.TripType `json:"tripType"`
	Archived       *bool            `json:"archived"`
}

func (p FlightPatch) apply(f *domain.Flight) {
	if p.Origin != nil {
		f.Origin = *p.Origin
	}
	if p.Destination != nil {
		f.Destination = *p.Destination
	}
	if p.DepartureDate != nil {
		f.DepartureDate = *p.DepartureDate
	}
	if p.ReturnDate != nil {
		rd := *p.ReturnDate
		f.ReturnDate = &rd
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	if p.PassengerCount != nil {
		f.PassengerCount = *p.PassengerCount
	}
	if p.TripType != nil {
		f.TripType = *p.TripType
	}
	if p.Archived != nil {
		f.Archived = *p.Archived
	}
}

// PutFlight inserts f or replaces the row with the same id.
func (s *Store) PutFlight(f *domain.Flight) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, flightKey(f.ID), f)
	})
	return domain.NewStoreError("local put flight", err)
}

// PutFlights upserts a whole snapshot in one write batch.
func (s *Store) PutFlights(flights []domain.Flight) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range flights {
		data, err := json.Marshal(&flights[i])
		if err != nil {
			return domain.NewStoreError("local put flights", err)
		}
		if err := wb.Set(flightKey(flights[i].ID), data); err != nil {
			return domain.NewStoreError("local put flights", err)
		}
	}
	return domain.NewStoreError("local put flights", wb.Flush())
}

// UpdateFlight applies patch to the flight with id and reports rows affected.
func (s *Store) UpdateFlight(id string, patch FlightPatch) (int64, error) {
	var rows int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var f domain.Flight
		if err := getJSON(txn, flightKey(id), &f); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		patch.apply(&f)
		rows = 1
		return setJSON(txn, flightKey(id), &f)
	})
	if err != nil {
		return 0, domain.NewStoreError("local update flight", err)
	}
	return rows, nil
}

func (s *Store) DeleteFlight(id string) (int64, error) {
	var rows int64
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(flightKey(id)); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		rows = 1
		return txn.Delete(flightKey(id))
	})
	if err != nil {
		return 0, domain.NewStoreError("local delete flight", err)
	}
	return rows, nil
}

func (s *Store) GetFlight(id string) (*domain.Flight, error) {
	var f domain.Flight
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, flightKey(id), &f)
	})
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("local get flight", err)
	}
	return &f, nil
}

func (s *Store) ListFlights() ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: []byte(flightPrefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var f domain.Flight
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &f)
			}); err != nil {
				return err
			}
			flights = append(flights, f)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError("local list flights", err)
	}
	return flights, nil
}
