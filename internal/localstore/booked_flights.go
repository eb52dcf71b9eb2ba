package localstore

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/Domenick1991/skysailor/internal/domain"
)

// BookedFlightPatch is a partial update of a booked flight row.
type BookedFlightPatch struct {
	Origin         *string          `json:"origin"`
	Destination    *string          `json:"destination"`
	DepartureDate  *domain.Date     `json:"departureDate"`
	ReturnDate     *domain.Date     `json:"returnDate"`
	Price          *float64         `json:"price"`
	PassengerCount *int             `json:"passengerCount"`
	TripType       *domain.TripType `json:"tripType"`
	Archived       *bool            `json:"archived"`
}

func (p BookedFlightPatch) apply(b *domain.BookedFlight) {
	if p.Origin != nil {
		b.Origin = *p.Origin
	}
	if p.Destination != nil {
		b.Destination = *p.Destination
	}
	if p.DepartureDate != nil {
		b.DepartureDate = *p.DepartureDate
	}
	if p.ReturnDate != nil {
		rd := *p.ReturnDate
		b.ReturnDate = &rd
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.PassengerCount != nil {
		b.PassengerCount = *p.PassengerCount
	}
	if p.TripType != nil {
		b.TripType = *p.TripType
	}
	if p.Archived != nil {
		b.Archived = *p.Archived
	}
}

func putBooked(txn *badger.Txn, b *domain.BookedFlight) error {
	var prev domain.BookedFlight
	err := getJSON(txn, bookedKey(b.ID), &prev)
	switch {
	case err == nil && prev.UserID != b.UserID:
		if err := txn.Delete(bookedUserKey(prev.UserID, b.ID)); err != nil {
			return err
		}
	case err != nil && !isNotFound(err):
		return err
	}

	if err := setJSON(txn, bookedKey(b.ID), b); err != nil {
		return err
	}
	return txn.Set(bookedUserKey(b.UserID, b.ID), nil)
}

// PutBookedFlight inserts b or replaces the row with the same id.
func (s *Store) PutBookedFlight(b *domain.BookedFlight) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return putBooked(txn, b)
	})
	return domain.NewStoreError("local put booked flight", err)
}

// PutBookedFlights upserts a snapshot of bookings in one transaction.
func (s *Store) PutBookedFlights(booked []domain.BookedFlight) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range booked {
			if err := putBooked(txn, &booked[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return domain.NewStoreError("local put booked flights", err)
}

// UpdateBookedFlight applies patch to the booking with id. A deleted booking
// stays archived: a patch that would unarchive it matches no rows.
func (s *Store) UpdateBookedFlight(id string, patch BookedFlightPatch) (int64, error) {
	return s.modifyBooked("local update booked flight", id, func(b *domain.BookedFlight) bool {
		if b.Deleted && patch.Archived != nil && !*patch.Archived {
			return false
		}
		patch.apply(b)
		return true
	})
}

// SoftDeleteBookedFlight marks an archived booking deleted. Active bookings are
// left untouched and report zero rows.
func (s *Store) SoftDeleteBookedFlight(id string) (int64, error) {
	return s.modifyBooked("local soft delete booked flight", id, func(b *domain.BookedFlight) bool {
		if !b.Archived || b.Deleted {
			return false
		}
		b.Deleted = true
		return true
	})
}

func (s *Store) modifyBooked(op, id string, fn func(*domain.BookedFlight) bool) (int64, error) {
	var rows int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var b domain.BookedFlight
		if err := getJSON(txn, bookedKey(id), &b); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		if !fn(&b) {
			return nil
		}
		rows = 1
		return setJSON(txn, bookedKey(id), &b)
	})
	if err != nil {
		return 0, domain.NewStoreError(op, err)
	}
	return rows, nil
}

func (s *Store) GetBookedFlight(id string) (*domain.BookedFlight, error) {
	var b domain.BookedFlight
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, bookedKey(id), &b)
	})
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("local get booked flight", err)
	}
	return &b, nil
}

// ListBookedFlights returns every row owned by userID, deleted ones included.
func (s *Store) ListBookedFlights(userID string) ([]domain.BookedFlight, error) {
	booked := make([]domain.BookedFlight, 0)
	prefix := []byte(bookedUserPrefix + userID + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			var b domain.BookedFlight
			if err := getJSON(txn, bookedKey(id), &b); err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			booked = append(booked, b)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError("local list booked flights", err)
	}
	return booked, nil
}
