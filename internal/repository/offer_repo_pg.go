package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository interface {
	ListActive(ctx context.Context, today domain.Date) ([]domain.Offer, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type PGOfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) OfferRepository {
	return &PGOfferRepository{db: db}
}

func (r *PGOfferRepository) ListActive(ctx context.Context, today domain.Date) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description, discount, expiry_date FROM offers WHERE expiry_date > $1 ORDER BY expiry_date, id`, today.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.Offer, 0)
	for rows.Next() {
		var (
			o      domain.Offer
			expiry time.Time
		)
		if err := rows.Scan(&o.ID, &o.Description, &o.Discount, &expiry); err != nil {
			return nil, err
		}
		o.ExpiryDate = domain.DateOf(expiry)
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *PGOfferRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM offers WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

var _ OfferRepository = (*PGOfferRepository)(nil)
