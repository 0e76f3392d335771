package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a branch repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, branch *models.Branch) (*models.Branch, error) {
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Branch, error) {
	query := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	var branches []models.Branch
	err := query.
		Order("code ASC").
		Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ClearDefault(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}
