package offers

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

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) ListActive(ctx context.Context, today domain.Date) ([]domain.Offer, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.Offer), args.Error(1)
}

func (m *MockOfferRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockFavorites struct {
	mock.Mock
}

func (m *MockFavorites) ToggleFavorite(ctx context.Context, userID, offerID string) (bool, error) {
	args := m.Called(ctx, userID, offerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavorites) Favorites(ctx context.Context, userID string) (map[string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func TestOfferService_List(t *testing.T) {
	repo := &MockOfferRepository{}
	favs := &MockFavorites{}
	service := NewOfferService(repo, favs)
	service.now = func() time.Time { return time.Date(2024, time.May, 18, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	repo.On("ListActive", ctx, domain.NewDate(2024, time.May, 18)).Return([]domain.Offer{{ID: "o1"}, {ID: "o2"}}, nil)
	favs.On("Favorites", ctx, "u1").Return(map[string]bool{"o2": true}, nil)

	offers, err := service.List(ctx, "u1")

	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.False(t, offers[0].IsFavorite)
	assert.True(t, offers[1].IsFavorite)
}

func TestOfferService_List_FavoritesUnavailable(t *testing.T) {
	repo := &MockOfferRepository{}
	favs := &MockFavorites{}
	service := NewOfferService(repo, favs)
	ctx := context.Background()

	repo.On("ListActive", ctx, mock.Anything).Return([]domain.Offer{{ID: "o1"}}, nil)
	favs.On("Favorites", ctx, "u1").Return(nil, errors.New("redis down"))

	offers, err := service.List(ctx, "u1")

	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestOfferService_ToggleFavorite(t *testing.T) {
	repo := &MockOfferRepository{}
	favs := &MockFavorites{}
	service := NewOfferService(repo, favs)
	ctx := context.Background()

	repo.On("Exists", ctx, "o1").Return(true, nil)
	repo.On("Exists", ctx, "missing").Return(false, nil)
	favs.On("ToggleFavorite", ctx, "u1", "o1").Return(true, nil)

	on, err := service.ToggleFavorite(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.True(t, on)

	_, err = service.ToggleFavorite(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
