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

const bookedFlightColumns = `id, user_id, flight_id, origin, destination, departure_date, return_date, price, passenger_count, trip_type, archived, deleted, created_at`

type BookedFlightRepository interface {
	// CommitBooking decrements the flight's capacity by booked.PassengerCount
	// and inserts booked in one transaction. It returns domain.ErrWriteConflict
	// when the flight no longer has expectedVersion or not enough capacity.
	CommitBooking(ctx context.Context, flightID string, expectedVersion int64, booked *domain.BookedFlight) error
	GetByID(ctx context.Context, userID, id string) (*domain.BookedFlight, error)
	ListByUser(ctx context.Context, userID string, filter domain.BookedFlightFilter) ([]domain.BookedFlight, error)
	ListUpcoming(ctx context.Context, userID string, from domain.Date) ([]domain.BookedFlight, error)
	SetArchived(ctx context.Context, userID, id string, archived bool) error
	// SoftDelete marks an archived booking deleted and reports rows affected.
	SoftDelete(ctx context.Context, userID, id string) (int64, error)
}

type PGBookedFlightRepository struct {
	db *pgxpool.Pool
}

func NewBookedFlightRepository(db *pgxpool.Pool) BookedFlightRepository {
	return &PGBookedFlightRepository{db: db}
}

func (r *PGBookedFlightRepository) CommitBooking(ctx context.Context, flightID string, expectedVersion int64, booked *domain.BookedFlight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE flights
		SET passenger_count = passenger_count - $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3 AND passenger_count >= $2`,
		flightID, booked.PassengerCount, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}

	if err := tx.QueryRow(ctx, `INSERT INTO booked_flights
		(id, user_id, flight_id, origin, destination, departure_date, return_date, price, passenger_count, trip_type, archived, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, FALSE)
		RETURNING created_at`,
		booked.ID, booked.UserID, flightID, booked.Origin, booked.Destination, booked.DepartureDate.Time, dateArg(booked.ReturnDate),
		booked.Price, booked.PassengerCount, string(booked.TripType)).
		Scan(&booked.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookedFlightRepository) GetByID(ctx context.Context, userID, id string) (*domain.BookedFlight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookedFlightColumns+` FROM booked_flights WHERE id=$1 AND user_id=$2`, id, userID)
	b, err := scanBookedFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return b, err
}

func (r *PGBookedFlightRepository) ListByUser(ctx context.Context, userID string, filter domain.BookedFlightFilter) ([]domain.BookedFlight, error) {
	sql, args := buildBookedFlightsQuery(userID, filter)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookedFlights(rows)
}

func (r *PGBookedFlightRepository) ListUpcoming(ctx context.Context, userID string, from domain.Date) ([]domain.BookedFlight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookedFlightColumns+` FROM booked_flights
		WHERE user_id=$1 AND archived = FALSE AND deleted = FALSE AND departure_date >= $2
		ORDER BY departure_date, id`, userID, from.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookedFlights(rows)
}

func (r *PGBookedFlightRepository) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE booked_flights SET archived=$3, updated_at=now() WHERE id=$1 AND user_id=$2 AND deleted = FALSE`, id, userID, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookedFlightRepository) SoftDelete(ctx context.Context, userID, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE booked_flights SET deleted = TRUE, updated_at = now()
		WHERE id=$1 AND user_id=$2 AND archived = TRUE AND deleted = FALSE`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildBookedFlightsQuery(userID string, filter domain.BookedFlightFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		conds = append(conds, fmt.Sprintf("archived = $%d", len(args)))
	}
	if filter.Deleted != nil {
		args = append(args, *filter.Deleted)
		conds = append(conds, fmt.Sprintf("deleted = $%d", len(args)))
	}
	return `SELECT ` + bookedFlightColumns + ` FROM booked_flights WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY departure_date, id`, args
}

func collectBookedFlights(rows pgx.Rows) ([]domain.BookedFlight, error) {
	booked := make([]domain.BookedFlight, 0)
	for rows.Next() {
		b, err := scanBookedFlight(rows)
		if err != nil {
			return nil, err
		}
		booked = append(booked, *b)
	}
	return booked, rows.Err()
}

func scanBookedFlight(row pgx.Row) (*domain.BookedFlight, error) {
	var (
		b         domain.BookedFlight
		departure time.Time
		ret       *time.Time
		tripType  string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.Origin, &b.Destination, &departure, &ret, &b.Price, &b.PassengerCount, &tripType, &b.Archived, &b.Deleted, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.DepartureDate = domain.DateOf(departure)
	b.ReturnDate = datePtr(ret)
	b.TripType = domain.TripType(tripType)
	return &b, nil
}

var _ BookedFlightRepository = (*PGBookedFlightRepository)(nil)
