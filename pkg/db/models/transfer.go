package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// InventoryTransfer is a stock movement between warehouses gated by the QC
// workflow. Transfers optionally originate from an ERP transfer request and
// only reach the ERP when posted.
type InventoryTransfer struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DocNumber     string                  `gorm:"column:doc_number;not null;uniqueIndex"`
	BranchID      *uuid.UUID              `gorm:"column:branch_id;type:uuid;index"`
	Type          enums.TransferType      `gorm:"column:type;type:text;not null;default:'ad_hoc'"`
	RequestEntry  *int                    `gorm:"column:request_entry;index"`
	FromWarehouse string                  `gorm:"column:from_warehouse;not null"`
	ToWarehouse   string                  `gorm:"column:to_warehouse;not null"`
	Status        enums.TransferStatus    `gorm:"column:status;type:text;not null;default:'draft'"`
	Comments      *string                 `gorm:"column:comments"`
	CreatedBy     uuid.UUID               `gorm:"column:created_by;type:uuid;not null"`
	SubmittedAt   *time.Time              `gorm:"column:submitted_at"`
	QCUserID      *uuid.UUID              `gorm:"column:qc_user_id;type:uuid"`
	QCNotes       *string                 `gorm:"column:qc_notes"`
	QCActionAt    *time.Time              `gorm:"column:qc_action_at"`
	ERPDocEntry   *int                    `gorm:"column:erp_doc_entry"`
	ERPDocNum     *int                    `gorm:"column:erp_doc_num"`
	PostedAt      *time.Time              `gorm:"column:posted_at"`
	PostingError  *string                 `gorm:"column:posting_error"`
	Lines         []InventoryTransferLine `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
	History       []TransferStatusHistory `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// InventoryTransferLine is one item movement on a transfer. BaseLine is set
// when the line fulfills a transfer request line.
type InventoryTransferLine struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransferID  uuid.UUID          `gorm:"column:transfer_id;type:uuid;not null;index"`
	BaseLine    *int               `gorm:"column:base_line"`
	ItemCode    string             `gorm:"column:item_code;not null"`
	ItemName    string             `gorm:"column:item_name"`
	Quantity    decimal.Decimal    `gorm:"column:quantity;type:numeric(15,3);not null"`
	UoMCode     *string            `gorm:"column:uom_code"`
	FromBinCode *string            `gorm:"column:from_bin_code"`
	ToBinCode   *string            `gorm:"column:to_bin_code"`
	QCStatus    enums.LineQCStatus `gorm:"column:qc_status;type:text;not null;default:'pending'"`
	Batches     []BatchAllocation  `gorm:"column:batches;type:jsonb;serializer:json"`
	Serials     []SerialNumber     `gorm:"column:serials;type:jsonb;serializer:json"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TransferStatusHistory is an append-only audit row written on every
// workflow transition.
type TransferStatusHistory struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransferID uuid.UUID             `gorm:"column:transfer_id;type:uuid;not null;index"`
	FromStatus *enums.TransferStatus `gorm:"column:from_status;type:text"`
	ToStatus   enums.TransferStatus  `gorm:"column:to_status;type:text;not null"`
	ActorID    uuid.UUID             `gorm:"column:actor_id;type:uuid;not null"`
	Notes      *string               `gorm:"column:notes"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
