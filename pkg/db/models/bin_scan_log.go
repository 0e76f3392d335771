package models

import (
	"time"

	"github.com/google/uuid"
)

// BinScanLog records every bin barcode scanned on the floor, successful or
// not, for traceability.
type BinScanLog struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	BranchID    *uuid.UUID `gorm:"column:branch_id;type:uuid;index"`
	WarehouseID *string    `gorm:"column:warehouse_id"`
	BinCode     string     `gorm:"column:bin_code;not null;index"`
	Resolved    bool       `gorm:"column:resolved;not null;default:false"`
	ItemCount   int        `gorm:"column:item_count;not null;default:0"`
	ScannedAt   time.Time  `gorm:"column:scanned_at;not null;autoCreateTime"`
}
