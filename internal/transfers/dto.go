package transfers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// TransferDTO is the API shape of an inventory transfer.
type TransferDTO struct {
	ID            uuid.UUID            `json:"id"`
	DocNumber     string               `json:"doc_number"`
	Type          enums.TransferType   `json:"type"`
	RequestEntry  *int                 `json:"request_entry,omitempty"`
	FromWarehouse string               `json:"from_warehouse"`
	ToWarehouse   string               `json:"to_warehouse"`
	Status        enums.TransferStatus `json:"status"`
	Comments      *string              `json:"comments,omitempty"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	QCUserID      *uuid.UUID           `json:"qc_user_id,omitempty"`
	QCNotes       *string              `json:"qc_notes,omitempty"`
	QCActionAt    *time.Time           `json:"qc_action_at,omitempty"`
	ERPDocEntry   *int                 `json:"erp_doc_entry,omitempty"`
	ERPDocNum     *int                 `json:"erp_doc_num,omitempty"`
	PostedAt      *time.Time           `json:"posted_at,omitempty"`
	PostingError  *string              `json:"posting_error,omitempty"`
	Lines         []TransferLineDTO    `json:"lines"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// TransferLineDTO is one item movement in API responses.
type TransferLineDTO struct {
	ID          uuid.UUID                `json:"id"`
	BaseLine    *int                     `json:"base_line,omitempty"`
	ItemCode    string                   `json:"item_code"`
	ItemName    string                   `json:"item_name,omitempty"`
	Quantity    decimal.Decimal          `json:"quantity"`
	UoMCode     *string                  `json:"uom_code,omitempty"`
	FromBinCode *string                  `json:"from_bin_code,omitempty"`
	ToBinCode   *string                  `json:"to_bin_code,omitempty"`
	QCStatus    enums.LineQCStatus       `json:"qc_status"`
	Batches     []models.BatchAllocation `json:"batches,omitempty"`
	Serials     []models.SerialNumber    `json:"serials,omitempty"`
}

// HistoryDTO is one audit row on the transfer workflow.
type HistoryDTO struct {
	ID         uuid.UUID             `json:"id"`
	FromStatus *enums.TransferStatus `json:"from_status,omitempty"`
	ToStatus   enums.TransferStatus  `json:"to_status"`
	ActorID    uuid.UUID             `json:"actor_id"`
	Notes      *string               `json:"notes,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// FromModel maps the persisted transfer into a DTO.
func FromModel(m *models.InventoryTransfer) *TransferDTO {
	if m == nil {
		return nil
	}
	dto := &TransferDTO{
		ID:            m.ID,
		DocNumber:     m.DocNumber,
		Type:          m.Type,
		RequestEntry:  m.RequestEntry,
		FromWarehouse: m.FromWarehouse,
		ToWarehouse:   m.ToWarehouse,
		Status:        m.Status,
		Comments:      m.Comments,
		CreatedBy:     m.CreatedBy,
		SubmittedAt:   m.SubmittedAt,
		QCUserID:      m.QCUserID,
		QCNotes:       m.QCNotes,
		QCActionAt:    m.QCActionAt,
		ERPDocEntry:   m.ERPDocEntry,
		ERPDocNum:     m.ERPDocNum,
		PostedAt:      m.PostedAt,
		PostingError:  m.PostingError,
		Lines:         make([]TransferLineDTO, 0, len(m.Lines)),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for i := range m.Lines {
		line := &m.Lines[i]
		dto.Lines = append(dto.Lines, TransferLineDTO{
			ID:          line.ID,
			BaseLine:    line.BaseLine,
			ItemCode:    line.ItemCode,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			UoMCode:     line.UoMCode,
			FromBinCode: line.FromBinCode,
			ToBinCode:   line.ToBinCode,
			QCStatus:    line.QCStatus,
			Batches:     line.Batches,
			Serials:     line.Serials,
		})
	}
	return dto
}

func historyFromModel(rows []models.TransferStatusHistory) []HistoryDTO {
	out := make([]HistoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryDTO{
			ID:         row.ID,
			FromStatus: row.FromStatus,
			ToStatus:   row.ToStatus,
			ActorID:    row.ActorID,
			Notes:      row.Notes,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out
}
