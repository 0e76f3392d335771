package grpo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// ReceiptDTO is the API shape of a goods receipt.
type ReceiptDTO struct {
	ID           uuid.UUID        `json:"id"`
	DocNumber    string           `json:"doc_number"`
	POEntry      int              `json:"po_entry"`
	PONumber     string           `json:"po_number"`
	CardCode     string           `json:"card_code"`
	CardName     string           `json:"card_name,omitempty"`
	Status       enums.GRPOStatus `json:"status"`
	Comments     *string          `json:"comments,omitempty"`
	CreatedBy    uuid.UUID        `json:"created_by"`
	QCUserID     *uuid.UUID       `json:"qc_user_id,omitempty"`
	QCNotes      *string          `json:"qc_notes,omitempty"`
	QCActionAt   *time.Time       `json:"qc_action_at,omitempty"`
	ERPDocEntry  *int             `json:"erp_doc_entry,omitempty"`
	ERPDocNum    *int             `json:"erp_doc_num,omitempty"`
	PostedAt     *time.Time       `json:"posted_at,omitempty"`
	PostingError *string          `json:"posting_error,omitempty"`
	Lines        []ReceiptLineDTO `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ReceiptLineDTO is one received line in API responses.
type ReceiptLineDTO struct {
	ID          uuid.UUID                `json:"id"`
	BaseLine    int                      `json:"base_line"`
	ItemCode    string                   `json:"item_code"`
	ItemName    string                   `json:"item_name,omitempty"`
	Quantity    decimal.Decimal          `json:"quantity"`
	UoMCode     *string                  `json:"uom_code,omitempty"`
	WarehouseID string                   `json:"warehouse_id"`
	BinCode     *string                  `json:"bin_code,omitempty"`
	Barcode     *string                  `json:"barcode,omitempty"`
	QCStatus    enums.LineQCStatus       `json:"qc_status"`
	Batches     []models.BatchAllocation `json:"batches,omitempty"`
	Serials     []models.SerialNumber    `json:"serials,omitempty"`
}

// FromModel maps the persisted receipt into a DTO.
func FromModel(m *models.GoodsReceipt) *ReceiptDTO {
	if m == nil {
		return nil
	}
	dto := &ReceiptDTO{
		ID:           m.ID,
		DocNumber:    m.DocNumber,
		POEntry:      m.POEntry,
		PONumber:     m.PONumber,
		CardCode:     m.CardCode,
		CardName:     m.CardName,
		Status:       m.Status,
		Comments:     m.Comments,
		CreatedBy:    m.CreatedBy,
		QCUserID:     m.QCUserID,
		QCNotes:      m.QCNotes,
		QCActionAt:   m.QCActionAt,
		ERPDocEntry:  m.ERPDocEntry,
		ERPDocNum:    m.ERPDocNum,
		PostedAt:     m.PostedAt,
		PostingError: m.PostingError,
		Lines:        make([]ReceiptLineDTO, 0, len(m.Lines)),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for i := range m.Lines {
		dto.Lines = append(dto.Lines, lineFromModel(&m.Lines[i]))
	}
	return dto
}

func lineFromModel(l *models.GoodsReceiptLine) ReceiptLineDTO {
	return ReceiptLineDTO{
		ID:          l.ID,
		BaseLine:    l.BaseLine,
		ItemCode:    l.ItemCode,
		ItemName:    l.ItemName,
		Quantity:    l.Quantity,
		UoMCode:     l.UoMCode,
		WarehouseID: l.WarehouseID,
		BinCode:     l.BinCode,
		Barcode:     l.Barcode,
		QCStatus:    l.QCStatus,
		Batches:     l.Batches,
		Serials:     l.Serials,
	}
}
