package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/kafka"
	"github.com/Domenick1991/skysailor/internal/metrics"
	"github.com/Domenick1991/skysailor/internal/repository"
	"github.com/Domenick1991/skysailor/internal/validator"
)

const defaultMaxAttempts = 5

type BookingUseCase interface {
	Book(ctx context.Context, req BookRequest) (*domain.BookedFlight, error)
	ListActive(ctx context.Context, userID string) ([]domain.BookedFlight, error)
	ListArchived(ctx context.Context, userID string) ([]domain.BookedFlight, error)
	Get(ctx context.Context, userID, id string) (*domain.BookedFlight, error)
	Archive(ctx context.Context, userID, id string, archived bool) (*domain.BookedFlight, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ChangePublisher tells live subscribers that a collection changed.
type ChangePublisher interface {
	FlightsChanged() error
	BookedFlightsChanged(userID string) error
}

// Reminders is wired in when no worker consumes booking events.
type Reminders interface {
	Schedule(ctx context.Context, b *domain.BookedFlight) (*domain.Reminder, error)
	Cancel(ctx context.Context, bookingID string) error
}

type BookRequest struct {
	UserID     string `json:"userId" validate:"notblank"`
	FlightID   string `json:"flightId" validate:"notblank"`
	Passengers int    `json:"passengers" validate:"gte=1"`
}

type BookingService struct {
	booked       repository.BookedFlightRepository
	flights      repository.FlightRepository
	cache        Cache
	producer     Producer
	changes      ChangePublisher
	reminders    Reminders
	bookingTopic string
	maxAttempts  int
	newID        func() string
}

type BookingServiceOption func(*BookingService)

func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithChangePublisher(p ChangePublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.changes = p
	}
}

func WithReminders(r Reminders) BookingServiceOption {
	return func(s *BookingService) {
		s.reminders = r
	}
}

func NewBookingService(
	booked repository.BookedFlightRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		booked:       booked,
		flights:      flights,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		maxAttempts:  defaultMaxAttempts,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves req.Passengers seats on the flight and records the booking.
// The capacity decrement only commits against the flight version that was
// read, so concurrent bookings retry instead of overselling. Once an attempt
// has started it runs to completion even if ctx is cancelled.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*domain.BookedFlight, error) {
	if err := validator.Struct(req); err != nil {
		metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, err
	}

	txCtx := context.WithoutCancel(ctx)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		booked, err := s.tryBook(txCtx, req)
		if errors.Is(err, domain.ErrWriteConflict) {
			metrics.BookingConflicts.Inc()
			log.Debug().Str("flight_id", req.FlightID).Int("attempt", attempt).Msg("flight changed during booking, retrying")
			continue
		}
		if err != nil {
			metrics.Bookings.WithLabelValues(resultLabel(err)).Inc()
			return nil, err
		}

		metrics.Bookings.WithLabelValues(metrics.ResultOK).Inc()
		log.Info().
			Str("booking_id", booked.ID).
			Str("user_id", booked.UserID).
			Str("flight_id", booked.FlightID).
			Int("passengers", booked.PassengerCount).
			Msg("flight booked")
		s.afterBook(txCtx, booked)
		return booked, nil
	}

	metrics.Bookings.WithLabelValues("conflict").Inc()
	return nil, domain.ErrWriteConflict
}

func (s *BookingService) tryBook(ctx context.Context, req BookRequest) (*domain.BookedFlight, error) {
	flight, err := s.flights.GetByID(ctx, req.FlightID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("read flight", err)
	}
	if flight.PassengerCount < req.Passengers {
		return nil, domain.ErrInsufficientCapacity
	}

	booked := domain.NewBookedFlight(s.newID(), req.UserID, flight, req.Passengers)
	if err := s.booked.CommitBooking(ctx, flight.ID, flight.Version, booked); err != nil {
		if errors.Is(err, domain.ErrWriteConflict) {
			return nil, err
		}
		return nil, domain.NewStoreError("commit booking", err)
	}
	return booked, nil
}

func (s *BookingService) afterBook(ctx context.Context, booked *domain.BookedFlight) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate flights cache")
		}
	}
	s.notifyChanged(booked.UserID, true)
	s.publish(ctx, kafka.EventBookingCreated, booked)
	if s.reminders != nil {
		if _, err := s.reminders.Schedule(ctx, booked); err != nil {
			log.Warn().Err(err).Str("booking_id", booked.ID).Msg("failed to schedule reminder")
		}
	}
}

func (s *BookingService) ListActive(ctx context.Context, userID string) ([]domain.BookedFlight, error) {
	archived := false
	return s.list(ctx, userID, domain.BookedFlightFilter{Archived: &archived})
}

// ListArchived returns archived bookings that have not been deleted.
func (s *BookingService) ListArchived(ctx context.Context, userID string) ([]domain.BookedFlight, error) {
	archived, deleted := true, false
	return s.list(ctx, userID, domain.BookedFlightFilter{Archived: &archived, Deleted: &deleted})
}

func (s *BookingService) list(ctx context.Context, userID string, filter domain.BookedFlightFilter) ([]domain.BookedFlight, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	booked, err := s.booked.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, domain.NewStoreError("list booked flights", err)
	}
	return booked, nil
}

func (s *BookingService) Get(ctx context.Context, userID, id string) (*domain.BookedFlight, error) {
	b, err := s.booked.GetByID(ctx, userID, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewStoreError("get booked flight", err)
	}
	return b, err
}

func (s *BookingService) Archive(ctx context.Context, userID, id string, archived bool) (*domain.BookedFlight, error) {
	if err := s.booked.SetArchived(ctx, userID, id, archived); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreError("archive booked flight", err)
	}

	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.notifyChanged(userID, false)
	if archived {
		s.publish(ctx, kafka.EventBookingArchived, b)
		s.cancelReminder(ctx, id)
	} else {
		s.publish(ctx, kafka.EventBookingUnarchived, b)
		if s.reminders != nil {
			if _, err := s.reminders.Schedule(ctx, b); err != nil {
				log.Warn().Err(err).Str("booking_id", id).Msg("failed to schedule reminder")
			}
		}
	}
	return b, nil
}

// Delete soft deletes an archived booking and reports rows affected. Active
// bookings are left untouched and report zero.
func (s *BookingService) Delete(ctx context.Context, userID, id string) (int64, error) {
	rows, err := s.booked.SoftDelete(ctx, userID, id)
	if err != nil {
		return 0, domain.NewStoreError("delete booked flight", err)
	}
	if rows == 0 {
		log.Debug().Str("booking_id", id).Msg("soft delete matched no archived booking")
		return 0, nil
	}

	s.notifyChanged(userID, false)
	s.publish(ctx, kafka.EventBookingDeleted, &domain.BookedFlight{ID: id, UserID: userID, Archived: true, Deleted: true})
	s.cancelReminder(ctx, id)
	return rows, nil
}

func (s *BookingService) cancelReminder(ctx context.Context, id string) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Cancel(ctx, id); err != nil {
		log.Warn().Err(err).Str("booking_id", id).Msg("failed to cancel reminder")
	}
}

func (s *BookingService) notifyChanged(userID string, flights bool) {
	if s.changes == nil {
		return
	}
	if flights {
		if err := s.changes.FlightsChanged(); err != nil {
			log.Warn().Err(err).Msg("failed to publish flights change")
		}
	}
	if err := s.changes.BookedFlightsChanged(userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish booked flights change")
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.BookedFlight) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, kafka.NewBookingEvent(eventType, b)); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("booking_id", b.ID).Msg("failed to publish booking event")
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientCapacity):
		return "insufficient_capacity"
	default:
		return metrics.ResultError
	}
}

var _ BookingUseCase = (*BookingService)(nil)
