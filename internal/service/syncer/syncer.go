package syncer

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/changefeed"
	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/metrics"
	"github.com/Domenick1991/skysailor/internal/repository"
)

// LocalStore receives snapshots. Rows are replaced by id, never merged.
type LocalStore interface {
	PutFlights(flights []domain.Flight) error
	PutBookedFlights(booked []domain.BookedFlight) error
}

// Service mirrors remote collections into the local store.
type Service struct {
	flights repository.FlightRepository
	booked  repository.BookedFlightRepository
	local   LocalStore
	nc      *nats.Conn
	prefix  string
}

func NewService(flights repository.FlightRepository, booked repository.BookedFlightRepository, local LocalStore, nc *nats.Conn, prefix string) *Service {
	return &Service{flights: flights, booked: booked, local: local, nc: nc, prefix: prefix}
}

// SyncFlights applies every flights snapshot until ctx is done.
func (s *Service) SyncFlights(ctx context.Context) {
	sub := changefeed.Watch(s.nc, changefeed.FlightsSubject(s.prefix), s.flights.List)
	defer sub.Unsubscribe()

	for flights, err := range sub.Snapshots(ctx) {
		if err != nil {
			s.failed("flights", "", err)
			continue
		}
		if err := s.local.PutFlights(flights); err != nil {
			s.failed("flights", "", err)
			continue
		}
		metrics.SyncSnapshots.WithLabelValues("flights", metrics.ResultOK).Inc()
		log.Debug().Int("rows", len(flights)).Msg("flights synced")
	}
}

// SyncBookedFlights applies every snapshot of userID's bookings until ctx is done.
func (s *Service) SyncBookedFlights(ctx context.Context, userID string) {
	load := func(ctx context.Context) ([]domain.BookedFlight, error) {
		return s.booked.ListByUser(ctx, userID, domain.BookedFlightFilter{})
	}
	sub := changefeed.Watch(s.nc, changefeed.BookedFlightsSubject(s.prefix, userID), load)
	defer sub.Unsubscribe()

	for booked, err := range sub.Snapshots(ctx) {
		if err != nil {
			s.failed("booked_flights", userID, err)
			continue
		}
		if err := s.local.PutBookedFlights(booked); err != nil {
			s.failed("booked_flights", userID, err)
			continue
		}
		metrics.SyncSnapshots.WithLabelValues("booked_flights", metrics.ResultOK).Inc()
		log.Debug().Str("user_id", userID).Int("rows", len(booked)).Msg("booked flights synced")
	}
}

func (s *Service) failed(collection, userID string, err error) {
	metrics.SyncSnapshots.WithLabelValues(collection, metrics.ResultError).Inc()
	log.Error().Err(err).Str("collection", collection).Str("user_id", userID).Msg("snapshot not applied, keeping previous local rows")
}

// Tracker keeps at most one booked flights subscription per user.
type Tracker struct {
	svc    *Service
	parent context.Context

	mu    sync.Mutex
	users map[string]context.CancelFunc
	wg    sync.WaitGroup
}

func NewTracker(ctx context.Context, svc *Service) *Tracker {
	return &Tracker{svc: svc, parent: ctx, users: make(map[string]context.CancelFunc)}
}

// Ensure starts syncing userID's bookings unless it is already running.
// It reports whether a new subscription was started.
func (t *Tracker) Ensure(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.users[userID]; ok || t.users == nil {
		return false
	}
	ctx, cancel := context.WithCancel(t.parent)
	t.users[userID] = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.svc.SyncBookedFlights(ctx, userID)
	}()
	return true
}

// Stop cancels every subscription and waits for them to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	for _, cancel := range t.users {
		cancel()
	}
	t.users = nil
	t.mu.Unlock()

	t.wg.Wait()
}
