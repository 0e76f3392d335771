package picklists

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// PickListDTO is the API shape of a pick list.
type PickListDTO struct {
	ID          uuid.UUID            `json:"id"`
	AbsEntry    int                  `json:"abs_entry"`
	PickerName  *string              `json:"picker_name,omitempty"`
	Status      enums.PickListStatus `json:"status"`
	Remarks     *string              `json:"remarks,omitempty"`
	AssignedTo  *uuid.UUID           `json:"assigned_to,omitempty"`
	ReleaseDate *time.Time           `json:"release_date,omitempty"`
	ClosedAt    *time.Time           `json:"closed_at,omitempty"`
	Lines       []PickListLineDTO    `json:"lines"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// PickListLineDTO is one line to pick in API responses.
type PickListLineDTO struct {
	ID          uuid.UUID                `json:"id"`
	PickEntry   int                      `json:"pick_entry"`
	OrderEntry  int                      `json:"order_entry"`
	OrderLine   int                      `json:"order_line"`
	ItemCode    string                   `json:"item_code"`
	ItemName    string                   `json:"item_name,omitempty"`
	Quantity    decimal.Decimal          `json:"quantity"`
	PickedQty   decimal.Decimal          `json:"picked_qty"`
	WarehouseID string                   `json:"warehouse_id"`
	BinCode     *string                  `json:"bin_code,omitempty"`
	Batches     []models.BatchAllocation `json:"batches,omitempty"`
}

// FromModel maps the persisted pick list into a DTO.
func FromModel(m *models.PickList) *PickListDTO {
	if m == nil {
		return nil
	}
	dto := &PickListDTO{
		ID:          m.ID,
		AbsEntry:    m.AbsEntry,
		PickerName:  m.PickerName,
		Status:      m.Status,
		Remarks:     m.Remarks,
		AssignedTo:  m.AssignedTo,
		ReleaseDate: m.ReleaseDate,
		ClosedAt:    m.ClosedAt,
		Lines:       make([]PickListLineDTO, 0, len(m.Lines)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.Lines {
		line := &m.Lines[i]
		dto.Lines = append(dto.Lines, PickListLineDTO{
			ID:          line.ID,
			PickEntry:   line.PickEntry,
			OrderEntry:  line.OrderEntry,
			OrderLine:   line.OrderLine,
			ItemCode:    line.ItemCode,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			PickedQty:   line.PickedQty,
			WarehouseID: line.WarehouseID,
			BinCode:     line.BinCode,
			Batches:     line.Batches,
		})
	}
	return dto
}
