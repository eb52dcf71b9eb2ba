package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/metrics"
)

const reminderHour = 8

type AlarmStore interface {
	SaveAlarm(ctx context.Context, r domain.Reminder) (bool, error)
	RemoveAlarm(ctx context.Context, bookingID string) (bool, error)
	ClaimDue(ctx context.Context, now time.Time) ([]domain.Reminder, error)
}

type UpcomingLister interface {
	ListUpcoming(ctx context.Context, userID string, from domain.Date) ([]domain.BookedFlight, error)
}

type SchedulerUseCase interface {
	Schedule(ctx context.Context, b *domain.BookedFlight) (*domain.Reminder, error)
	Cancel(ctx context.Context, bookingID string) error
	ScheduleAll(ctx context.Context, userID string) (int, error)
	CancelAll(ctx context.Context, userID string) (int, error)
}

type Scheduler struct {
	alarms    AlarmStore
	booked    UpcomingLister
	loc       *time.Location
	now       func() time.Time
	newHandle func() string
}

type SchedulerOption func(*Scheduler)

func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		s.loc = loc
	}
}

func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(alarms AlarmStore, booked UpcomingLister, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		alarms:    alarms,
		booked:    booked,
		loc:       time.Local,
		now:       time.Now,
		newHandle: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TriggerTime is 08:00 on the day before departure, in loc.
func TriggerTime(departure domain.Date, loc *time.Location) time.Time {
	day := departure.AddDays(-1)
	return time.Date(day.Year(), day.Month(), day.Day(), reminderHour, 0, 0, 0, loc)
}

func Message(origin, destination string) string {
	return fmt.Sprintf("Flight from %s to %s is tomorrow at 8:00 AM!", origin, destination)
}

// Schedule registers the reminder for b, replacing one already registered for
// the same booking. A trigger time that has already passed schedules nothing
// and returns a nil reminder.
func (s *Scheduler) Schedule(ctx context.Context, b *domain.BookedFlight) (*domain.Reminder, error) {
	trigger := TriggerTime(b.DepartureDate, s.loc)
	now := s.now()
	if !trigger.After(now) {
		log.Debug().
			Str("booking_id", b.ID).
			Time("trigger_at", trigger).
			Time("now", now).
			Msg("skipped reminder, trigger time is past")
		metrics.Reminders.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	r := domain.Reminder{
		Handle:    s.newHandle(),
		BookingID: b.ID,
		FlightID:  b.FlightID,
		UserID:    b.UserID,
		TriggerAt: trigger,
		Message:   Message(b.Origin, b.Destination),
	}
	replaced, err := s.alarms.SaveAlarm(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save alarm for booking %s: %w", b.ID, err)
	}

	metrics.Reminders.WithLabelValues("scheduled").Inc()
	log.Info().
		Str("booking_id", b.ID).
		Time("trigger_at", trigger).
		Bool("replaced", replaced).
		Msg("reminder scheduled")
	return &r, nil
}

func (s *Scheduler) Cancel(ctx context.Context, bookingID string) error {
	_, err := s.cancel(ctx, bookingID)
	return err
}

func (s *Scheduler) cancel(ctx context.Context, bookingID string) (bool, error) {
	removed, err := s.alarms.RemoveAlarm(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to remove alarm for booking %s: %w", bookingID, err)
	}
	if removed {
		metrics.Reminders.WithLabelValues("cancelled").Inc()
		log.Info().Str("booking_id", bookingID).Msg("reminder cancelled")
	}
	return removed, nil
}

// ScheduleAll schedules every upcoming booking of userID and returns how many
// reminders were registered.
func (s *Scheduler) ScheduleAll(ctx context.Context, userID string) (int, error) {
	upcoming, err := s.upcoming(ctx, userID)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for i := range upcoming {
		r, err := s.Schedule(ctx, &upcoming[i])
		if err != nil {
			return scheduled, err
		}
		if r != nil {
			scheduled++
		}
	}
	return scheduled, nil
}

// CancelAll removes the reminders of userID's upcoming bookings and returns
// how many alarms were actually registered. Bookings made or unarchived later
// are scheduled again.
func (s *Scheduler) CancelAll(ctx context.Context, userID string) (int, error) {
	upcoming, err := s.upcoming(ctx, userID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, b := range upcoming {
		removed, err := s.cancel(ctx, b.ID)
		if err != nil {
			return cancelled, err
		}
		if removed {
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *Scheduler) upcoming(ctx context.Context, userID string) ([]domain.BookedFlight, error) {
	today := domain.DateOf(s.now().In(s.loc))
	upcoming, err := s.booked.ListUpcoming(ctx, userID, today)
	if err != nil {
		return nil, domain.NewStoreError("list upcoming bookings", err)
	}
	return upcoming, nil
}

var _ SchedulerUseCase = (*Scheduler)(nil)
