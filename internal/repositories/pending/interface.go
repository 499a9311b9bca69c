package pending

import (
	"context"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/models"
)

// Repository persists offline-created stories waiting for replay.
type Repository interface {
	Insert(ctx context.Context, p *models.PendingWrite) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PendingWrite, error)
	GetAll(ctx context.Context) ([]*models.PendingWrite, error)
	GetUnsynced(ctx context.Context) ([]*models.PendingWrite, error)
	MarkSynced(ctx context.Context, id int64, at time.Time) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteSynced(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
