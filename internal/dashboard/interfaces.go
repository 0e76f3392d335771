package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// StatusCount is one status bucket from a grouped count query.
type StatusCount struct {
	Status string
	Count  int64
}

// Repository reads the aggregate figures behind the dashboard.
type Repository interface {
	ReceiptCountsByCreator(ctx context.Context, creatorID uuid.UUID) ([]StatusCount, error)
	TransferCountsByCreator(ctx context.Context, creatorID uuid.UUID) ([]StatusCount, error)
	CountReceiptsByStatus(ctx context.Context, status enums.GRPOStatus) (int64, error)
	CountTransfersByStatus(ctx context.Context, status enums.TransferStatus) (int64, error)
	CountPickListsByStatus(ctx context.Context, status enums.PickListStatus) (int64, error)
	CountPickListsAssignedTo(ctx context.Context, userID uuid.UUID) (int64, error)
	CountOpenCountsByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
	CountScansSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}
