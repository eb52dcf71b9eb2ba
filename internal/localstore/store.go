package localstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Domenick1991/skysailor/internal/logger"
)

const (
	flightPrefix     = "flights/"
	bookedPrefix     = "bookedFlights/"
	bookedUserPrefix = "bookedFlightsByUser/"
)

// Store is the on-device cache: flights and booked flights as JSON rows keyed by id.
type Store struct {
	db *badger.DB
}

// Open opens the badger database in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(logger.NewBadger("localstore"))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func flightKey(id string) []byte {
	return []byte(flightPrefix + id)
}

func bookedKey(id string) []byte {
	return []byte(bookedPrefix + id)
}

func bookedUserKey(userID, id string) []byte {
	return []byte(bookedUserPrefix + userID + "/" + id)
}

func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func isNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}
