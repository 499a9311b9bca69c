package favorites

import (
	"context"

	"github.com/dmitrijs2005/berbagi/internal/models"
)

// Repository persists favorite stories. Implementations return
// common.ErrDuplicateKey from Insert when the id already exists and
// common.ErrorNotFound from GetByID on a miss.
type Repository interface {
	Insert(ctx context.Context, f *models.FavoriteStory) error
	GetByID(ctx context.Context, id string) (*models.FavoriteStory, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetAll(ctx context.Context) ([]models.FavoriteStory, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
