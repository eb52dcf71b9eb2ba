package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, origin, destination, departure_date, return_date, price, passenger_count, trip_type, archived, version`

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error)
	Upsert(ctx context.Context, flight *domain.Flight) error
}

// FlightQuery is the store-side part of a search. Date bounds are inclusive.
type FlightQuery struct {
	Origin        string
	Destination   string
	TripType      domain.TripType
	DepartureFrom domain.Date
	DepartureTo   domain.Date
	ReturnFrom    *domain.Date
	ReturnTo      *domain.Date
	MinCapacity   int
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return f, err
}

func (r *PGFlightRepository) Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	sql, args := buildSearchQuery(q)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFlights(rows)
}

func (r *PGFlightRepository) Upsert(ctx context.Context, f *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (id, origin, destination, departure_date, return_date, price, passenger_count, trip_type, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			departure_date = EXCLUDED.departure_date,
			return_date = EXCLUDED.return_date,
			price = EXCLUDED.price,
			passenger_count = EXCLUDED.passenger_count,
			trip_type = EXCLUDED.trip_type,
			archived = EXCLUDED.archived,
			version = flights.version + 1,
			updated_at = now()
		RETURNING version`,
		f.ID, f.Origin, f.Destination, f.DepartureDate.Time, dateArg(f.ReturnDate), f.Price, f.PassengerCount, string(f.TripType), f.Archived).
		Scan(&f.Version)
}

func buildSearchQuery(q FlightQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	add("origin = $%d", q.Origin)
	add("destination = $%d", q.Destination)
	add("trip_type = $%d", string(q.TripType))
	add("departure_date >= $%d", q.DepartureFrom.Time)
	add("departure_date <= $%d", q.DepartureTo.Time)
	if q.ReturnFrom != nil && q.ReturnTo != nil {
		add("return_date >= $%d", q.ReturnFrom.Time)
		add("return_date <= $%d", q.ReturnTo.Time)
	}
	if q.MinCapacity > 0 {
		add("passenger_count >= $%d", q.MinCapacity)
	}

	return `SELECT ` + flightColumns + ` FROM flights WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY departure_date, price, id`, args
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f         domain.Flight
		departure time.Time
		ret       *time.Time
		tripType  string
	)
	if err := row.Scan(&f.ID, &f.Origin, &f.Destination, &departure, &ret, &f.Price, &f.PassengerCount, &tripType, &f.Archived, &f.Version); err != nil {
		return nil, err
	}
	f.DepartureDate = domain.DateOf(departure)
	f.ReturnDate = datePtr(ret)
	f.TripType = domain.TripType(tripType)
	return &f, nil
}

func dateArg(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func datePtr(t *time.Time) *domain.Date {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}

var _ FlightRepository = (*PGFlightRepository)(nil)
