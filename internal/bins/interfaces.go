package bins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for bin scan history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateScan(ctx context.Context, scan *models.BinScanLog) (*models.BinScanLog, error)
	ListScansByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.BinScanLog, error)
}

type erpGateway interface {
	GetBinLocationByCode(ctx context.Context, binCode string) (*erp.BinLocation, error)
	GetBinStock(ctx context.Context, binAbsEntry int) ([]erp.BinStockItem, error)
}
