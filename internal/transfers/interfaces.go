package transfers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for inventory transfers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transfer *models.InventoryTransfer) (*models.InventoryTransfer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransfer, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.InventoryTransfer, error)
	ListByStatus(ctx context.Context, status enums.TransferStatus, limit int) ([]models.InventoryTransfer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateLine(ctx context.Context, line *models.InventoryTransferLine) (*models.InventoryTransferLine, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.InventoryTransferLine, error)
	// UpdateLinesByTransfer applies the same column updates to every line on
	// one transfer, used when a QC decision stamps line statuses.
	UpdateLinesByTransfer(ctx context.Context, transferID uuid.UUID, updates map[string]any) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	AppendHistory(ctx context.Context, row *models.TransferStatusHistory) error
	ListHistory(ctx context.Context, transferID uuid.UUID) ([]models.TransferStatusHistory, error)
}

type erpGateway interface {
	GetTransferRequest(ctx context.Context, docEntry int) (*erp.TransferRequest, error)
	CreateStockTransfer(ctx context.Context, payload erp.StockTransferPayload) (*erp.DocumentResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
