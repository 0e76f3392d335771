package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// PickList mirrors an ERP pick list released to the floor. Picked
// quantities are reported back per line.
type PickList struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AbsEntry    int                  `gorm:"column:abs_entry;not null;uniqueIndex"`
	BranchID    *uuid.UUID           `gorm:"column:branch_id;type:uuid;index"`
	PickerName  *string              `gorm:"column:picker_name"`
	Status      enums.PickListStatus `gorm:"column:status;type:text;not null;default:'open'"`
	Remarks     *string              `gorm:"column:remarks"`
	AssignedTo  *uuid.UUID           `gorm:"column:assigned_to;type:uuid"`
	ReleaseDate *time.Time           `gorm:"column:release_date"`
	ClosedAt    *time.Time           `gorm:"column:closed_at"`
	Lines       []PickListLine       `gorm:"foreignKey:PickListID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PickListLine is one line to pick, keyed by the ERP pick entry.
type PickListLine struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PickListID  uuid.UUID         `gorm:"column:pick_list_id;type:uuid;not null;index"`
	PickEntry   int               `gorm:"column:pick_entry;not null"`
	OrderEntry  int               `gorm:"column:order_entry;not null"`
	OrderLine   int               `gorm:"column:order_line;not null"`
	ItemCode    string            `gorm:"column:item_code;not null"`
	ItemName    string            `gorm:"column:item_name"`
	Quantity    decimal.Decimal   `gorm:"column:quantity;type:numeric(15,3);not null"`
	PickedQty   decimal.Decimal   `gorm:"column:picked_qty;type:numeric(15,3);not null;default:0"`
	WarehouseID string            `gorm:"column:warehouse_id;not null"`
	BinCode     *string           `gorm:"column:bin_code"`
	Batches     []BatchAllocation `gorm:"column:batches;type:jsonb;serializer:json"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
