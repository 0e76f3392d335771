package grpo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for goods receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, receipt *models.GoodsReceipt) (*models.GoodsReceipt, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.GoodsReceipt, error)
	ListByStatus(ctx context.Context, status enums.GRPOStatus, limit int) ([]models.GoodsReceipt, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateLine(ctx context.Context, line *models.GoodsReceiptLine) (*models.GoodsReceiptLine, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.GoodsReceiptLine, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	// UpdateLinesByReceipt applies the same column updates to every line on
	// one receipt, used when a QC decision stamps line statuses.
	UpdateLinesByReceipt(ctx context.Context, receiptID uuid.UUID, updates map[string]any) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	// SumReceivedForPOLine totals quantities already captured against one
	// purchase order line across all non-rejected receipts.
	SumReceivedForPOLine(ctx context.Context, poEntry, baseLine int) (decimal.Decimal, error)
}

type erpGateway interface {
	GetPurchaseOrder(ctx context.Context, docEntry int) (*erp.PurchaseOrder, error)
	CreateGoodsReceipt(ctx context.Context, payload erp.GoodsReceiptPayload) (*erp.DocumentResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
