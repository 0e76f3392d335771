package grpo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a goods receipt repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, receipt *models.GoodsReceipt) (*models.GoodsReceipt, error) {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return nil, err
	}
	return receipt, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error) {
	var receipt models.GoodsReceipt
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.GoodsReceipt, error) {
	var receipts []models.GoodsReceipt
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.GRPOStatus, limit int) ([]models.GoodsReceipt, error) {
	var receipts []models.GoodsReceipt
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GoodsReceipt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.GoodsReceiptLine) (*models.GoodsReceiptLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.GoodsReceiptLine, error) {
	var line models.GoodsReceiptLine
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
		Model(&models.GoodsReceiptLine{}).
		Where("id = ?", lineID).
		Updates(updates).Error
}

func (r *repository) UpdateLinesByReceipt(ctx context.Context, receiptID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GoodsReceiptLine{}).
		Where("receipt_id = ?", receiptID).
		Updates(updates).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.GoodsReceiptLine{}).Error
}

func (r *repository) SumReceivedForPOLine(ctx context.Context, poEntry, baseLine int) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.GoodsReceiptLine{}).
		Select("COALESCE(SUM(goods_receipt_lines.quantity), 0)").
		Joins("JOIN goods_receipts ON goods_receipts.id = goods_receipt_lines.receipt_id").
		Where("goods_receipts.po_entry = ?", poEntry).
		Where("goods_receipt_lines.base_line = ?", baseLine).
		Where("goods_receipts.status <> ?", enums.GRPOStatusRejected).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
