package picklists

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

// NewRepository builds a pick list repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, list *models.PickList) (*models.PickList, error) {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PickList, error) {
	var list models.PickList
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) FindByAbsEntry(ctx context.Context, absEntry int) (*models.PickList, error) {
	var list models.PickList
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("abs_entry = ?", absEntry).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) List(ctx context.Context, status *enums.PickListStatus, assignedTo *uuid.UUID, limit int) ([]models.PickList, error) {
	query := r.db.WithContext(ctx).Preload("Lines")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if assignedTo != nil {
		query = query.Where("assigned_to = ?", *assignedTo)
	}
	var lists []models.PickList
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PickList{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.PickListLine) (*models.PickListLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.PickListLine, error) {
	var line models.PickListLine
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
		Model(&models.PickListLine{}).
		Where("id = ?", lineID).
		Updates(updates).Error
}
