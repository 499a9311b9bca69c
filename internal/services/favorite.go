package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/google/uuid"
)

// FavoriteStore is the favorites half of the durable store.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, story models.FavoriteStory) (*models.FavoriteStory, error)
	GetFavorite(ctx context.Context, id string) (*models.FavoriteStory, error)
	IsFavorite(ctx context.Context, id string) (bool, error)
	ListFavorites(ctx context.Context) ([]models.FavoriteStory, error)
	SearchFavorites(ctx context.Context, query string) ([]models.FavoriteStory, error)
	SortFavorites(ctx context.Context, key, direction string) ([]models.FavoriteStory, error)
	DeleteFavorite(ctx context.Context, id string) error
	ClearFavorites(ctx context.Context) error
}

type FavoriteService interface {
	Add(ctx context.Context, s api.Story) (*models.FavoriteStory, error)
	Toggle(ctx context.Context, s api.Story) (bool, error)
	Get(ctx context.Context, id string) (*models.FavoriteStory, error)
	List(ctx context.Context) ([]models.FavoriteStory, error)
	Search(ctx context.Context, query string) ([]models.FavoriteStory, error)
	Sort(ctx context.Context, key, direction string) ([]models.FavoriteStory, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type Favorites struct {
	store FavoriteStore
}

var _ FavoriteService = (*Favorites)(nil)

func NewFavorites(store FavoriteStore) *Favorites {
	return &Favorites{store: store}
}

// Add saves s as a favorite. Stories without an id get a random one.
func (f *Favorites) Add(ctx context.Context, s api.Story) (*models.FavoriteStory, error) {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	return f.store.AddFavorite(ctx, models.FavoriteStory{
		ID:          id,
		Name:        s.Name,
		Description: s.Description,
		PhotoURL:    s.PhotoURL,
		Lat:         s.Lat,
		Lon:         s.Lon,
		CreatedAt:   s.CreatedAt,
	})
}

// Toggle flips the favorite state of s and returns the new state.
// Concurrent toggles on one id are not coordinated; the last write wins.
func (f *Favorites) Toggle(ctx context.Context, s api.Story) (bool, error) {
	if s.ID == "" {
		return false, common.ErrEmptyPayload
	}
	fav, err := f.store.IsFavorite(ctx, s.ID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, f.store.DeleteFavorite(ctx, s.ID)
	}
	_, err = f.Add(ctx, s)
	if errors.Is(err, common.ErrDuplicateKey) {
		return true, nil
	}
	return err == nil, err
}

func (f *Favorites) Get(ctx context.Context, id string) (*models.FavoriteStory, error) {
	return f.store.GetFavorite(ctx, id)
}

func (f *Favorites) List(ctx context.Context) ([]models.FavoriteStory, error) {
	return f.store.ListFavorites(ctx)
}

func (f *Favorites) Search(ctx context.Context, query string) ([]models.FavoriteStory, error) {
	return f.store.SearchFavorites(ctx, query)
}

func (f *Favorites) Sort(ctx context.Context, key, direction string) ([]models.FavoriteStory, error) {
	return f.store.SortFavorites(ctx, key, direction)
}

func (f *Favorites) Delete(ctx context.Context, id string) error {
	return f.store.DeleteFavorite(ctx, id)
}

func (f *Favorites) Clear(ctx context.Context) error {
	return f.store.ClearFavorites(ctx)
}
