package changefeed

import (
	"context"
	"iter"
	"sync"

	"github.com/nats-io/nats.go"
)

// Loader re-reads the full watched collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Subscription is a live query over a collection. Each snapshot supersedes
// the previous one.
type Subscription[T any] struct {
	nc      *nats.Conn
	subject string
	load    Loader[T]

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

func Watch[T any](nc *nats.Conn, subject string, load Loader[T]) *Subscription[T] {
	return &Subscription[T]{nc: nc, subject: subject, load: load}
}

func (s *Subscription[T]) Subject() string {
	return s.subject
}

// Snapshots yields the current collection, then a fresh one after every change
// notification on the subject. Notifications that arrive while a snapshot is
// being loaded or consumed collapse into a single re-query. A new call stops
// any sequence started earlier on s.
func (s *Subscription[T]) Snapshots(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.cancel = cancel
		s.mu.Unlock()

		changed := make(chan struct{}, 1)
		sub, err := s.nc.Subscribe(s.subject, func(*nats.Msg) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		if err := s.nc.Flush(); err != nil {
			yield(nil, err)
			return
		}

		for {
			items, err := s.load(ctx)
			if ctx.Err() != nil {
				return
			}
			if !yield(items, err) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}
}

// Unsubscribe stops the running sequence. Later Snapshots calls yield nothing.
func (s *Subscription[T]) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
