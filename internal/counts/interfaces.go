package counts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for inventory counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, count *models.InventoryCount) (*models.InventoryCount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryCount, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.InventoryCount, error)
	ListByStatus(ctx context.Context, status enums.CountStatus, limit int) ([]models.InventoryCount, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateLine(ctx context.Context, line *models.InventoryCountLine) (*models.InventoryCountLine, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.InventoryCountLine, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
}

type erpGateway interface {
	GetItem(ctx context.Context, itemCode string) (*erp.Item, error)
	CreateInventoryCounting(ctx context.Context, payload erp.InventoryCountingPayload) (*erp.DocumentResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
