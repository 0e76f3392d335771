package labels

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for generated labels.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Label, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Label, error)
}

type erpGateway interface {
	GetItem(ctx context.Context, itemCode string) (*erp.Item, error)
}
