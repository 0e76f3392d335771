package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReceiptCountsByCreator(ctx context.Context, creatorID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.GoodsReceipt{}).
		Select("status, count(*) as count").
		Where("created_by = ?", creatorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TransferCountsByCreator(ctx context.Context, creatorID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.InventoryTransfer{}).
		Select("status, count(*) as count").
		Where("created_by = ?", creatorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountReceiptsByStatus(ctx context.Context, status enums.GRPOStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GoodsReceipt{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountTransfersByStatus(ctx context.Context, status enums.TransferStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryTransfer{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountPickListsByStatus(ctx context.Context, status enums.PickListStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PickList{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountPickListsAssignedTo(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PickList{}).
		Where("assigned_to = ? AND status IN ?", userID, []enums.PickListStatus{enums.PickListStatusOpen, enums.PickListStatusPicking}).
		Count(&count).Error
	return count, err
}

func (r *repository) CountOpenCountsByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryCount{}).
		Where("created_by = ? AND status IN ?", creatorID, []enums.CountStatus{enums.CountStatusDraft, enums.CountStatusSubmitted}).
		Count(&count).Error
	return count, err
}

func (r *repository) CountScansSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BinScanLog{}).
		Where("user_id = ? AND scanned_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
