package picklists

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
)

// Repository defines persistence operations for pick lists mirrored from the ERP.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, list *models.PickList) (*models.PickList, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickList, error)
	FindByAbsEntry(ctx context.Context, absEntry int) (*models.PickList, error)
	List(ctx context.Context, status *enums.PickListStatus, assignedTo *uuid.UUID, limit int) ([]models.PickList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateLine(ctx context.Context, line *models.PickListLine) (*models.PickListLine, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.PickListLine, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
}

type erpGateway interface {
	GetPickList(ctx context.Context, absEntry int) (*erp.PickListDocument, error)
	ListOpenPickLists(ctx context.Context) ([]erp.PickListDocument, error)
	UpdatePickList(ctx context.Context, absEntry int, doc erp.PickListDocument) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
