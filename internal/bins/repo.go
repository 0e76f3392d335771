package bins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bin scan repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateScan(ctx context.Context, scan *models.BinScanLog) (*models.BinScanLog, error) {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return nil, err
	}
	return scan, nil
}

func (r *repository) ListScansByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.BinScanLog, error) {
	var scans []models.BinScanLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, err
	}
	return scans, nil
}
