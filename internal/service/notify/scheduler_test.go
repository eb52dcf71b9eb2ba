package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skysailor/internal/domain"
)

type MockAlarmStore struct {
	mock.Mock
}

func (m *MockAlarmStore) SaveAlarm(ctx context.Context, r domain.Reminder) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlarmStore) RemoveAlarm(ctx context.Context, bookingID string) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlarmStore) ClaimDue(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

type MockUpcomingLister struct {
	mock.Mock
}

func (m *MockUpcomingLister) ListUpcoming(ctx context.Context, userID string, from domain.Date) ([]domain.BookedFlight, error) {
	args := m.Called(ctx, userID, from)
	return args.Get(0).([]domain.BookedFlight), args.Error(1)
}

var now = time.Date(2024, time.May, 18, 12, 0, 0, 0, time.UTC)

func newTestScheduler(alarms AlarmStore, booked UpcomingLister) *Scheduler {
	s := NewScheduler(alarms, booked, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
	s.newHandle = func() string { return "handle-1" }
	return s
}

func booking(id string, departure domain.Date) domain.BookedFlight {
	return domain.BookedFlight{
		ID: id, UserID: "u1", FlightID: "f1", Origin: "NYC", Destination: "LAX",
		DepartureDate: departure, PassengerCount: 2, TripType: domain.TripTypeOneWay,
	}
}

func TestTriggerTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	got := TriggerTime(domain.NewDate(2024, time.March, 1), loc)
	assert.Equal(t, time.Date(2024, time.February, 29, 8, 0, 0, 0, loc), got)

	got = TriggerTime(domain.NewDate(2025, time.January, 1), time.UTC)
	assert.Equal(t, time.Date(2024, time.December, 31, 8, 0, 0, 0, time.UTC), got)
}

func TestScheduler_Schedule(t *testing.T) {
	alarms := &MockAlarmStore{}
	s := newTestScheduler(alarms, &MockUpcomingLister{})
	b := booking("b1", domain.NewDate(2024, time.May, 20))

	want := domain.Reminder{
		Handle:    "handle-1",
		BookingID: "b1",
		FlightID:  "f1",
		UserID:    "u1",
		TriggerAt: time.Date(2024, time.May, 19, 8, 0, 0, 0, time.UTC),
		Message:   "Flight from NYC to LAX is tomorrow at 8:00 AM!",
	}
	alarms.On("SaveAlarm", mock.Anything, want).Return(false, nil)

	r, err := s.Schedule(context.Background(), &b)

	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, want, *r)
	alarms.AssertExpectations(t)
}

func TestScheduler_Schedule_PastTriggerSkipped(t *testing.T) {
	alarms := &MockAlarmStore{}
	s := newTestScheduler(alarms, &MockUpcomingLister{})
	// trigger is 2024-05-18 08:00, four hours before now
	b := booking("b1", domain.NewDate(2024, time.May, 19))

	r, err := s.Schedule(context.Background(), &b)

	require.NoError(t, err)
	assert.Nil(t, r)
	alarms.AssertNotCalled(t, "SaveAlarm", mock.Anything, mock.Anything)
}

func TestScheduler_Schedule_StoreError(t *testing.T) {
	alarms := &MockAlarmStore{}
	s := newTestScheduler(alarms, &MockUpcomingLister{})
	b := booking("b1", domain.NewDate(2024, time.June, 1))
	alarms.On("SaveAlarm", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

	_, err := s.Schedule(context.Background(), &b)
	assert.ErrorContains(t, err, "redis down")
}

func TestScheduler_Cancel_UnknownIsNoop(t *testing.T) {
	alarms := &MockAlarmStore{}
	s := newTestScheduler(alarms, &MockUpcomingLister{})
	alarms.On("RemoveAlarm", mock.Anything, "missing").Return(false, nil)

	assert.NoError(t, s.Cancel(context.Background(), "missing"))
	alarms.AssertExpectations(t)
}

func TestScheduler_ScheduleAll(t *testing.T) {
	alarms := &MockAlarmStore{}
	booked := &MockUpcomingLister{}
	s := newTestScheduler(alarms, booked)

	booked.On("ListUpcoming", mock.Anything, "u1", domain.NewDate(2024, time.May, 18)).Return([]domain.BookedFlight{
		booking("b1", domain.NewDate(2024, time.May, 18)),
		booking("b2", domain.NewDate(2024, time.May, 25)),
		booking("b3", domain.NewDate(2024, time.July, 1)),
	}, nil)
	alarms.On("SaveAlarm", mock.Anything, mock.MatchedBy(func(r domain.Reminder) bool {
		return r.BookingID == "b2" || r.BookingID == "b3"
	})).Return(false, nil).Twice()

	n, err := s.ScheduleAll(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	alarms.AssertExpectations(t)
}

func TestScheduler_CancelAll(t *testing.T) {
	alarms := &MockAlarmStore{}
	booked := &MockUpcomingLister{}
	s := newTestScheduler(alarms, booked)

	booked.On("ListUpcoming", mock.Anything, "u1", mock.Anything).Return([]domain.BookedFlight{
		booking("b1", domain.NewDate(2024, time.May, 25)),
		booking("b2", domain.NewDate(2024, time.June, 1)),
	}, nil)
	alarms.On("RemoveAlarm", mock.Anything, "b1").Return(true, nil)
	alarms.On("RemoveAlarm", mock.Anything, "b2").Return(false, nil)

	n, err := s.CancelAll(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	alarms.AssertExpectations(t)
}

func TestScheduler_ScheduleAll_StoreError(t *testing.T) {
	booked := &MockUpcomingLister{}
	s := newTestScheduler(&MockAlarmStore{}, booked)
	booked.On("ListUpcoming", mock.Anything, "u1", mock.Anything).Return([]domain.BookedFlight{}, errors.New("db down"))

	_, err := s.ScheduleAll(context.Background(), "u1")
	assert.True(t, domain.IsStore(err))
}
