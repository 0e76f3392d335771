package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// InventoryCount is a counting session for one warehouse. Variances are
// computed from counted versus in-stock quantities when submitted.
type InventoryCount struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DocNumber   string               `gorm:"column:doc_number;not null;uniqueIndex"`
	BranchID    *uuid.UUID           `gorm:"column:branch_id;type:uuid;index"`
	WarehouseID string               `gorm:"column:warehouse_id;not null"`
	Status      enums.CountStatus    `gorm:"column:status;type:text;not null;default:'draft'"`
	CountDate   time.Time            `gorm:"column:count_date;not null"`
	Remarks     *string              `gorm:"column:remarks"`
	CreatedBy   uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	ERPDocEntry *int                 `gorm:"column:erp_doc_entry"`
	PostedAt    *time.Time           `gorm:"column:posted_at"`
	Lines       []InventoryCountLine `gorm:"foreignKey:CountID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// InventoryCountLine holds one counted item, optionally per bin.
type InventoryCountLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CountID    uuid.UUID       `gorm:"column:count_id;type:uuid;not null;index"`
	ItemCode   string          `gorm:"column:item_code;not null"`
	ItemName   string          `gorm:"column:item_name"`
	BinCode    *string         `gorm:"column:bin_code"`
	InStockQty decimal.Decimal `gorm:"column:in_stock_qty;type:numeric(15,3);not null;default:0"`
	CountedQty decimal.Decimal `gorm:"column:counted_qty;type:numeric(15,3);not null;default:0"`
	Variance   decimal.Decimal `gorm:"column:variance;type:numeric(15,3);not null;default:0"`
	CountedBy  *uuid.UUID      `gorm:"column:counted_by;type:uuid"`
	CountedAt  *time.Time      `gorm:"column:counted_at"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
