package counts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// CountDTO is the API shape of an inventory count.
type CountDTO struct {
	ID          uuid.UUID         `json:"id"`
	DocNumber   string            `json:"doc_number"`
	WarehouseID string            `json:"warehouse_id"`
	Status      enums.CountStatus `json:"status"`
	CountDate   time.Time         `json:"count_date"`
	Remarks     *string           `json:"remarks,omitempty"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	ERPDocEntry *int              `json:"erp_doc_entry,omitempty"`
	PostedAt    *time.Time        `json:"posted_at,omitempty"`
	Lines       []CountLineDTO    `json:"lines"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CountLineDTO is one counted item in API responses.
type CountLineDTO struct {
	ID         uuid.UUID       `json:"id"`
	ItemCode   string          `json:"item_code"`
	ItemName   string          `json:"item_name,omitempty"`
	BinCode    *string         `json:"bin_code,omitempty"`
	InStockQty decimal.Decimal `json:"in_stock_qty"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Variance   decimal.Decimal `json:"variance"`
	CountedBy  *uuid.UUID      `json:"counted_by,omitempty"`
	CountedAt  *time.Time      `json:"counted_at,omitempty"`
}

// FromModel maps the persisted count into a DTO.
func FromModel(m *models.InventoryCount) *CountDTO {
	if m == nil {
		return nil
	}
	dto := &CountDTO{
		ID:          m.ID,
		DocNumber:   m.DocNumber,
		WarehouseID: m.WarehouseID,
		Status:      m.Status,
		CountDate:   m.CountDate,
		Remarks:     m.Remarks,
		CreatedBy:   m.CreatedBy,
		ERPDocEntry: m.ERPDocEntry,
		PostedAt:    m.PostedAt,
		Lines:       make([]CountLineDTO, 0, len(m.Lines)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.Lines {
		line := &m.Lines[i]
		dto.Lines = append(dto.Lines, CountLineDTO{
			ID:         line.ID,
			ItemCode:   line.ItemCode,
			ItemName:   line.ItemName,
			BinCode:    line.BinCode,
			InStockQty: line.InStockQty,
			CountedQty: line.CountedQty,
			Variance:   line.Variance,
			CountedBy:  line.CountedBy,
			CountedAt:  line.CountedAt,
		})
	}
	return dto
}
