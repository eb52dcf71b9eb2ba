package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skysailor/internal/changefeed"
	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/localstore"
	"github.com/Domenick1991/skysailor/internal/repository"
)

type result[T any] struct {
	items []T
	err   error
}

// scriptedFlights answers List with queued results, repeating the last one.
type scriptedFlights struct {
	repository.FlightRepository

	mu      sync.Mutex
	results []result[domain.Flight]
	calls   int
}

func (r *scriptedFlights) List(ctx context.Context) ([]domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	res := r.results[0]
	if len(r.results) > 1 {
		r.results = r.results[1:]
	}
	return res.items, res.err
}

func (r *scriptedFlights) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type staticBooked struct {
	repository.BookedFlightRepository

	mu     sync.Mutex
	booked []domain.BookedFlight
}

func (r *staticBooked) set(booked ...domain.BookedFlight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = booked
}

func (r *staticBooked) ListByUser(ctx context.Context, userID string, filter domain.BookedFlightFilter) ([]domain.BookedFlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BookedFlight, 0)
	for _, b := range r.booked {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func startNATS(t *testing.T) *nats.Conn {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(func() {
		nc.Close()
		server.Shutdown()
		server.WaitForShutdown()
	})
	return nc
}

func newLocal(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func flight(id string, seats int) domain.Flight {
	return domain.Flight{
		ID: id, Origin: "NYC", Destination: "LAX",
		DepartureDate: domain.NewDate(2024, time.May, 20),
		Price:         300, PassengerCount: seats, TripType: domain.TripTypeOneWay,
	}
}

func TestService_SyncFlights_FailedSnapshotKeepsRows(t *testing.T) {
	nc := startNATS(t)
	local := newLocal(t)
	repo := &scriptedFlights{results: []result[domain.Flight]{
		{items: []domain.Flight{flight("f1", 10)}},
		{err: errors.New("remote unavailable")},
		{items: []domain.Flight{flight("f1", 8), flight("f2", 5)}},
	}}
	pub := changefeed.NewPublisher(nc, "test")
	svc := NewService(repo, &staticBooked{}, local, nc, "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SyncFlights(ctx)
	}()

	require.Eventually(t, func() bool {
		f, err := local.GetFlight("f1")
		return err == nil && f.PassengerCount == 10
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, pub.FlightsChanged())
	require.Eventually(t, func() bool { return repo.callCount() >= 2 }, 5*time.Second, 10*time.Millisecond)

	flights, err := local.ListFlights()
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, 10, flights[0].PassengerCount)

	require.NoError(t, pub.FlightsChanged())
	require.Eventually(t, func() bool {
		flights, err := local.ListFlights()
		return err == nil && len(flights) == 2 && flights[0].PassengerCount == 8
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sync did not stop")
	}
}

func TestTracker_EnsureOncePerUser(t *testing.T) {
	nc := startNATS(t)
	local := newLocal(t)
	booked := domain.BookedFlight{ID: "b1", UserID: "u1", FlightID: "f1", DepartureDate: domain.NewDate(2024, time.May, 20)}
	svc := NewService(&scriptedFlights{}, &staticBooked{booked: []domain.BookedFlight{booked}}, local, nc, "test")

	tracker := NewTracker(context.Background(), svc)
	assert.True(t, tracker.Ensure("u1"))
	assert.False(t, tracker.Ensure("u1"))

	require.Eventually(t, func() bool {
		list, err := local.ListBookedFlights("u1")
		return err == nil && len(list) == 1
	}, 5*time.Second, 10*time.Millisecond)

	tracker.Stop()
	assert.False(t, tracker.Ensure("u2"))
}

func TestService_SyncBookedFlights_ReappliesOnChange(t *testing.T) {
	nc := startNATS(t)
	local := newLocal(t)
	b1 := domain.BookedFlight{ID: "b1", UserID: "u1", FlightID: "f1", DepartureDate: domain.NewDate(2024, time.May, 20)}
	remote := &staticBooked{booked: []domain.BookedFlight{b1}}
	pub := changefeed.NewPublisher(nc, "test")
	svc := NewService(&scriptedFlights{}, remote, local, nc, "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SyncBookedFlights(ctx, "u1")
	}()

	require.Eventually(t, func() bool {
		b, err := local.GetBookedFlight("b1")
		return err == nil && !b.Archived
	}, 5*time.Second, 10*time.Millisecond)

	archived := b1
	archived.Archived = true
	remote.set(archived)
	require.NoError(t, pub.BookedFlightsChanged("u1"))

	require.Eventually(t, func() bool {
		b, err := local.GetBookedFlight("b1")
		return err == nil && b.Archived
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sync did not stop")
	}
}
