package flights

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/metrics"
	"github.com/Domenick1991/skysailor/internal/repository"
	"github.com/Domenick1991/skysailor/internal/validator"
)

const defaultWindowDays = 3

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

// SearchCriteria is what a traveller asks for. ReturnDate only matters for
// return trips.
type SearchCriteria struct {
	Origin        string          `json:"origin" validate:"notblank"`
	Destination   string          `json:"destination" validate:"notblank"`
	TripType      domain.TripType `json:"tripType" validate:"triptype"`
	DepartureDate domain.Date     `json:"departureDate"`
	ReturnDate    *domain.Date    `json:"returnDate,omitempty"`
	Passengers    int             `json:"passengers" validate:"gte=1"`
}

type FlightService struct {
	repo       repository.FlightRepository
	cache      FlightCache
	cacheTTL   time.Duration
	windowDays int
}

type FlightServiceOption func(*FlightService)

// WithWindowDays sets how many days after the requested dates still match.
func WithWindowDays(days int) FlightServiceOption {
	return func(s *FlightService) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, cacheTTL time.Duration, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, cache: cache, cacheTTL: cacheTTL, windowDays: defaultWindowDays}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.NewStoreError("list flights", err)
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			log.Warn().Err(err).Msg("failed to cache flights")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewStoreError("get flight", err)
	}
	return f, err
}

// Search returns flights from Origin to Destination departing within the
// window after DepartureDate (and, for return trips with a ReturnDate,
// returning within the window after it) with at least Passengers seats left.
func (s *FlightService) Search(ctx context.Context, c SearchCriteria) ([]domain.Flight, error) {
	c.Origin = strings.TrimSpace(c.Origin)
	c.Destination = strings.TrimSpace(c.Destination)

	if err := validateCriteria(c); err != nil {
		metrics.Searches.WithLabelValues("invalid").Inc()
		return nil, err
	}

	q := s.query(c)
	found, err := s.repo.Search(ctx, q)
	if err != nil {
		metrics.Searches.WithLabelValues(metrics.ResultError).Inc()
		return nil, domain.NewStoreError("search flights", err)
	}

	matches := make([]domain.Flight, 0, len(found))
	for _, f := range found {
		if matchesQuery(f, q) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		metrics.Searches.WithLabelValues("empty").Inc()
		return nil, domain.ErrNoMatches
	}

	metrics.Searches.WithLabelValues(metrics.ResultOK).Inc()
	return matches, nil
}

func validateCriteria(c SearchCriteria) error {
	if err := validator.Struct(c); err != nil {
		return err
	}
	if c.DepartureDate.IsZero() {
		return domain.NewValidationError("departureDate", "departureDate is required")
	}
	if c.TripType == domain.TripTypeReturn && c.ReturnDate != nil && c.ReturnDate.Before(c.DepartureDate) {
		return domain.NewValidationError("returnDate", "return date cannot be before departure date")
	}
	return nil
}

func (s *FlightService) query(c SearchCriteria) repository.FlightQuery {
	q := repository.FlightQuery{
		Origin:        c.Origin,
		Destination:   c.Destination,
		TripType:      c.TripType,
		DepartureFrom: c.DepartureDate,
		DepartureTo:   c.DepartureDate.AddDays(s.windowDays),
		MinCapacity:   c.Passengers,
	}
	if c.TripType == domain.TripTypeReturn && c.ReturnDate != nil {
		from := *c.ReturnDate
		to := from.AddDays(s.windowDays)
		q.ReturnFrom, q.ReturnTo = &from, &to
	}
	return q
}

// matchesQuery re-checks the calendar windows and capacity on the rows the
// store returned.
func matchesQuery(f domain.Flight, q repository.FlightQuery) bool {
	if f.PassengerCount < q.MinCapacity {
		return false
	}
	if !f.DepartureDate.Between(q.DepartureFrom, q.DepartureTo) {
		return false
	}
	if q.ReturnFrom != nil {
		if f.ReturnDate == nil || !f.ReturnDate.Between(*q.ReturnFrom, *q.ReturnTo) {
			return false
		}
	}
	return true
}

var _ FlightUseCase = (*FlightService)(nil)
