package labels

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a label repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return nil, err
	}
	return label, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	var label models.Label
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&label).Error
	if err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Label{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.WithContext(ctx).
		Where("generated_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}
