package offers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/repository"
)

type OfferUseCase interface {
	List(ctx context.Context, userID string) ([]domain.Offer, error)
	ToggleFavorite(ctx context.Context, userID, offerID string) (bool, error)
}

type Favorites interface {
	ToggleFavorite(ctx context.Context, userID, offerID string) (bool, error)
	Favorites(ctx context.Context, userID string) (map[string]bool, error)
}

type OfferService struct {
	repo      repository.OfferRepository
	favorites Favorites
	now       func() time.Time
}

func NewOfferService(repo repository.OfferRepository, favorites Favorites) *OfferService {
	return &OfferService{repo: repo, favorites: favorites, now: time.Now}
}

// List returns offers that have not expired yet, flagged with the user's favorites.
func (s *OfferService) List(ctx context.Context, userID string) ([]domain.Offer, error) {
	offers, err := s.repo.ListActive(ctx, domain.DateOf(s.now()))
	if err != nil {
		return nil, domain.NewStoreError("list offers", err)
	}

	favs, err := s.favorites.Favorites(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to load favorites")
		return offers, nil
	}
	for i := range offers {
		offers[i].IsFavorite = favs[offers[i].ID]
	}
	return offers, nil
}

func (s *OfferService) ToggleFavorite(ctx context.Context, userID, offerID string) (bool, error) {
	exists, err := s.repo.Exists(ctx, offerID)
	if err != nil {
		return false, domain.NewStoreError("find offer", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}

	on, err := s.favorites.ToggleFavorite(ctx, userID, offerID)
	if err != nil {
		return false, domain.NewStoreError("toggle favorite", err)
	}
	return on, nil
}

var _ OfferUseCase = (*OfferService)(nil)
