package transfers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transfer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transfer *models.InventoryTransfer) (*models.InventoryTransfer, error) {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransfer, error) {
	var transfer models.InventoryTransfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.InventoryTransfer, error) {
	var transfers []models.InventoryTransfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.TransferStatus, limit int) ([]models.InventoryTransfer, error) {
	var transfers []models.InventoryTransfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryTransfer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.InventoryTransferLine) (*models.InventoryTransferLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.InventoryTransferLine, error) {
	var line models.InventoryTransferLine
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLinesByTransfer(ctx context.Context, transferID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryTransferLine{}).
		Where("transfer_id = ?", transferID).
		Updates(updates).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.InventoryTransferLine{}).Error
}

func (r *repository) AppendHistory(ctx context.Context, row *models.TransferStatusHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListHistory(ctx context.Context, transferID uuid.UUID) ([]models.TransferStatusHistory, error) {
	var rows []models.TransferStatusHistory
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
