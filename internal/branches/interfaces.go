package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
)

// Repository defines persistence operations for branches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, branch *models.Branch) (*models.Branch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindByCode(ctx context.Context, code string) (*models.Branch, error)
	List(ctx context.Context, includeInactive bool) ([]models.Branch, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ClearDefault(ctx context.Context) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
