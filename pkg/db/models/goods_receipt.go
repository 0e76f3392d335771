package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// GoodsReceipt is a draft GRPO built against an open purchase order. The
// ERP document is only created when the receipt is posted.
type GoodsReceipt struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DocNumber    string             `gorm:"column:doc_number;not null;uniqueIndex"`
	BranchID     *uuid.UUID         `gorm:"column:branch_id;type:uuid;index"`
	POEntry      int                `gorm:"column:po_entry;not null;index"`
	PONumber     string             `gorm:"column:po_number;not null"`
	CardCode     string             `gorm:"column:card_code;not null"`
	CardName     string             `gorm:"column:card_name"`
	Status       enums.GRPOStatus   `gorm:"column:status;type:text;not null;default:'draft'"`
	Comments     *string            `gorm:"column:comments"`
	CreatedBy    uuid.UUID          `gorm:"column:created_by;type:uuid;not null"`
	QCUserID     *uuid.UUID         `gorm:"column:qc_user_id;type:uuid"`
	QCNotes      *string            `gorm:"column:qc_notes"`
	QCActionAt   *time.Time         `gorm:"column:qc_action_at"`
	ERPDocEntry  *int               `gorm:"column:erp_doc_entry"`
	ERPDocNum    *int               `gorm:"column:erp_doc_num"`
	PostedAt     *time.Time         `gorm:"column:posted_at"`
	PostingError *string            `gorm:"column:posting_error"`
	Lines        []GoodsReceiptLine `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// GoodsReceiptLine is one received purchase order line, optionally carrying
// batch or serial allocations.
type GoodsReceiptLine struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReceiptID   uuid.UUID          `gorm:"column:receipt_id;type:uuid;not null;index"`
	BaseLine    int                `gorm:"column:base_line;not null"`
	ItemCode    string             `gorm:"column:item_code;not null"`
	ItemName    string             `gorm:"column:item_name"`
	Quantity    decimal.Decimal    `gorm:"column:quantity;type:numeric(15,3);not null"`
	UoMCode     *string            `gorm:"column:uom_code"`
	WarehouseID string             `gorm:"column:warehouse_id;not null"`
	BinCode     *string            `gorm:"column:bin_code"`
	Barcode     *string            `gorm:"column:barcode"`
	QCStatus    enums.LineQCStatus `gorm:"column:qc_status;type:text;not null;default:'pending'"`
	Batches     []BatchAllocation  `gorm:"column:batches;type:jsonb;serializer:json"`
	Serials     []SerialNumber     `gorm:"column:serials;type:jsonb;serializer:json"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BatchAllocation is a batch and quantity assigned to a receipt or transfer line.
type BatchAllocation struct {
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  *string         `json:"expiry_date,omitempty"`
	Attribute   *string         `json:"attribute,omitempty"`
}

// SerialNumber is a single serialized unit assigned to a line.
type SerialNumber struct {
	InternalSerial string  `json:"internal_serial"`
	ManufacturerNo *string `json:"manufacturer_no,omitempty"`
}
