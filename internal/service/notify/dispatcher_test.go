package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skysailor/internal/cache"
	"github.com/Domenick1991/skysailor/internal/domain"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, r domain.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func TestDispatcher_RunOnce(t *testing.T) {
	alarms := &MockAlarmStore{}
	deliverer := &MockDeliverer{}
	d := NewDispatcher(alarms, deliverer, time.Minute)
	d.now = func() time.Time { return now }

	r1 := domain.Reminder{Handle: "h1", BookingID: "b1"}
	r2 := domain.Reminder{Handle: "h2", BookingID: "b2"}
	alarms.On("ClaimDue", mock.Anything, now).Return([]domain.Reminder{r1, r2}, nil)
	deliverer.On("Deliver", mock.Anything, r1).Return(nil)
	deliverer.On("Deliver", mock.Anything, r2).Return(errors.New("smtp down"))

	n, err := d.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	deliverer.AssertExpectations(t)
}

func TestScheduleThenDispatch_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	alarms := cache.NewRedisCacheFromClient(client, time.Minute)

	s := NewScheduler(alarms, &MockUpcomingLister{}, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
	b := booking("b1", domain.NewDate(2024, time.May, 20))

	_, err := s.Schedule(context.Background(), &b)
	require.NoError(t, err)
	// rescheduling the same booking keeps a single alarm
	_, err = s.Schedule(context.Background(), &b)
	require.NoError(t, err)

	deliverer := &MockDeliverer{}
	deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(r domain.Reminder) bool {
		return r.BookingID == "b1" && r.Message == "Flight from NYC to LAX is tomorrow at 8:00 AM!"
	})).Return(nil).Once()

	d := NewDispatcher(alarms, deliverer, time.Minute)

	d.now = func() time.Time { return now }
	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	d.now = func() time.Time { return time.Date(2024, time.May, 19, 8, 0, 0, 0, time.UTC) }
	n, err = d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	deliverer.AssertExpectations(t)
}

func TestDispatcher_Run_StopsOnCancel(t *testing.T) {
	alarms := &MockAlarmStore{}
	alarms.On("ClaimDue", mock.Anything, mock.Anything).Return([]domain.Reminder{}, nil)
	d := NewDispatcher(alarms, &MockDeliverer{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
