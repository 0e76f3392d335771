package counts

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

// NewRepository builds an inventory count repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, count *models.InventoryCount) (*models.InventoryCount, error) {
	if err := r.db.WithContext(ctx).Create(count).Error; err != nil {
		return nil, err
	}
	return count, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryCount, error) {
	var count models.InventoryCount
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&count).Error
	if err != nil {
		return nil, err
	}
	return &count, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.InventoryCount, error) {
	var counts []models.InventoryCount
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.CountStatus, limit int) ([]models.InventoryCount, error) {
	var counts []models.InventoryCount
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryCount{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.InventoryCountLine) (*models.InventoryCountLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.InventoryCountLine, error) {
	var line models.InventoryCountLine
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryCountLine{}).
		Where("id = ?", lineID).
		Updates(updates).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.InventoryCountLine{}).Error
}
