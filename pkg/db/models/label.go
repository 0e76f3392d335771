package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// Label is a generated QR or barcode payload kept for reprints and audit.
type Label struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.LabelType `gorm:"column:type;type:text;not null"`
	Payload     string          `gorm:"column:payload;not null;index"`
	ItemCode    string          `gorm:"column:item_code;not null;index"`
	ItemName    *string         `gorm:"column:item_name"`
	BatchNumber *string         `gorm:"column:batch_number"`
	SerialNo    *string         `gorm:"column:serial_no"`
	ExpiryDate  *string         `gorm:"column:expiry_date"`
	Copies      int             `gorm:"column:copies;not null;default:1"`
	GeneratedBy uuid.UUID       `gorm:"column:generated_by;type:uuid;not null"`
	BranchID    *uuid.UUID      `gorm:"column:branch_id;type:uuid;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
