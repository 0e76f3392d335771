package counts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/internal/series"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/pagination"
)

// Service defines inventory count operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CountDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CountDTO, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]CountDTO, error)
	AddLine(ctx context.Context, input AddLineInput) (*CountDTO, error)
	RecordCount(ctx context.Context, input RecordCountInput) (*CountDTO, error)
	RemoveLine(ctx context.Context, countID, lineID, actorID uuid.UUID) error
	Submit(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error)
	Post(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error)
	Cancel(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error)
}

// CreateInput opens a count sheet for one warehouse.
type CreateInput struct {
	WarehouseID string
	CountDate   *time.Time
	Remarks     *string
	ActorID     uuid.UUID
	BranchID    *uuid.UUID
}

// AddLineInput puts one item on the count sheet with its book quantity.
type AddLineInput struct {
	CountID    uuid.UUID
	ItemCode   string
	BinCode    *string
	InStockQty decimal.Decimal
	ActorID    uuid.UUID
}

// RecordCountInput captures the physical count for one line.
type RecordCountInput struct {
	CountID    uuid.UUID
	LineID     uuid.UUID
	CountedQty decimal.Decimal
	ActorID    uuid.UUID
}

type service struct {
	repo   Repository
	tx     txRunner
	erp    erpGateway
	series series.Allocator
}

// NewService builds the count service with required dependencies.
func NewService(repo Repository, tx txRunner, gateway erpGateway, alloc series.Allocator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("count repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	if alloc == nil {
		return nil, fmt.Errorf("series allocator required")
	}
	return &service{repo: repo, tx: tx, erp: gateway, series: alloc}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CountDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.WarehouseID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse required")
	}

	countDate := time.Now().UTC()
	if input.CountDate != nil {
		countDate = *input.CountDate
	}

	var created *models.InventoryCount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		docNumber, err := s.series.Allocate(ctx, tx, input.BranchID, series.DocTypeInventoryCount)
		if err != nil {
			return err
		}
		count := &models.InventoryCount{
			DocNumber:   docNumber,
			BranchID:    input.BranchID,
			WarehouseID: input.WarehouseID,
			Status:      enums.CountStatusDraft,
			CountDate:   countDate,
			Remarks:     input.Remarks,
			CreatedBy:   input.ActorID,
		}
		created, err = repo.Create(ctx, count)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CountDTO, error) {
	count, err := s.loadCount(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(count), nil
}

func (s *service) ListMine(ctx context.Context, actorID uuid.UUID) ([]CountDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	counts, err := s.repo.ListByCreator(ctx, actorID, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list counts")
	}
	out := make([]CountDTO, 0, len(counts))
	for i := range counts {
		out = append(out, *FromModel(&counts[i]))
	}
	return out, nil
}

func (s *service) AddLine(ctx context.Context, input AddLineInput) (*CountDTO, error) {
	if input.ItemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}
	if input.InStockQty.LessThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "in-stock quantity cannot be negative")
	}

	item, err := s.erp.GetItem(ctx, input.ItemCode)
	if err != nil {
		return nil, err
	}

	var count *models.InventoryCount
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err = s.loadCount(ctx, repo, input.CountID)
		if err != nil {
			return err
		}
		if count.Status != enums.CountStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "count lines can only change while in draft")
		}
		line := &models.InventoryCountLine{
			CountID:    count.ID,
			ItemCode:   item.ItemCode,
			ItemName:   item.ItemName,
			BinCode:    input.BinCode,
			InStockQty: input.InStockQty,
			Variance:   input.InStockQty.Neg(),
		}
		if _, err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create count line")
		}
		count.Lines = append(count.Lines, *line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(count), nil
}

func (s *service) RecordCount(ctx context.Context, input RecordCountInput) (*CountDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CountedQty.LessThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted quantity cannot be negative")
	}

	var count *models.InventoryCount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		count, err = s.loadCount(ctx, repo, input.CountID)
		if err != nil {
			return err
		}
		if count.Status != enums.CountStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "count lines can only change while in draft")
		}
		line, err := repo.FindLine(ctx, input.LineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "count line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load count line")
		}
		if line.CountID != count.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to count")
		}

		now := time.Now().UTC()
		variance := input.CountedQty.Sub(line.InStockQty)
		updates := map[string]any{
			"counted_qty": input.CountedQty,
			"variance":    variance,
			"counted_by":  input.ActorID,
			"counted_at":  now,
		}
		if err := repo.UpdateLine(ctx, line.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record counted quantity")
		}
		for i := range count.Lines {
			if count.Lines[i].ID != line.ID {
				continue
			}
			count.Lines[i].CountedQty = input.CountedQty
			count.Lines[i].Variance = variance
			actor := input.ActorID
			count.Lines[i].CountedBy = &actor
			count.Lines[i].CountedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(count), nil
}

func (s *service) RemoveLine(ctx context.Context, countID, lineID, actorID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := s.loadCount(ctx, repo, countID)
		if err != nil {
			return err
		}
		if count.Status != enums.CountStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "count lines can only change while in draft")
		}
		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "count line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load count line")
		}
		if line.CountID != count.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to count")
		}
		if err := repo.DeleteLine(ctx, lineID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete count line")
		}
		return nil
	})
}

func (s *service) Submit(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.loadCount(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !count.Status.CanTransitionTo(enums.CountStatusSubmitted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot submit count in status %s", count.Status))
	}
	if count.CreatedBy != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may submit")
	}
	if !allLinesCounted(count) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "every line needs a recorded count before submit")
	}
	if err := s.repo.Update(ctx, count.ID, map[string]any{"status": enums.CountStatusSubmitted}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit count")
	}
	count.Status = enums.CountStatusSubmitted
	return FromModel(count), nil
}

func (s *service) Post(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.loadCount(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !count.Status.CanTransitionTo(enums.CountStatusPosted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot post count in status %s", count.Status))
	}

	result, err := s.erp.CreateInventoryCounting(ctx, buildCountingPayload(count))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":        enums.CountStatusPosted,
		"erp_doc_entry": result.DocEntry,
		"posted_at":     now,
	}
	if err := s.repo.Update(ctx, count.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record posted count")
	}
	count.Status = enums.CountStatusPosted
	count.ERPDocEntry = &result.DocEntry
	count.PostedAt = &now
	return FromModel(count), nil
}

func (s *service) Cancel(ctx context.Context, id, actorID uuid.UUID) (*CountDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.loadCount(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !count.Status.CanTransitionTo(enums.CountStatusCanceled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel count in status %s", count.Status))
	}
	if err := s.repo.Update(ctx, count.ID, map[string]any{"status": enums.CountStatusCanceled}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel count")
	}
	count.Status = enums.CountStatusCanceled
	return FromModel(count), nil
}

func (s *service) loadCount(ctx context.Context, repo Repository, id uuid.UUID) (*models.InventoryCount, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count id required")
	}
	count, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "count not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load count")
	}
	return count, nil
}

func buildCountingPayload(count *models.InventoryCount) erp.InventoryCountingPayload {
	payload := erp.InventoryCountingPayload{
		CountDate: count.CountDate.Format("2006-01-02"),
	}
	if count.Remarks != nil {
		payload.Remarks = *count.Remarks
	}
	for i := range count.Lines {
		line := &count.Lines[i]
		payload.InventoryCountingLines = append(payload.InventoryCountingLines, erp.CountingLine{
			ItemCode:        line.ItemCode,
			WarehouseCode:   count.WarehouseID,
			CountedQuantity: line.CountedQty,
			Counted:         "tYES",
		})
	}
	return payload
}

func allLinesCounted(count *models.InventoryCount) bool {
	if len(count.Lines) == 0 {
		return false
	}
	for i := range count.Lines {
		if count.Lines[i].CountedAt == nil {
			return false
		}
	}
	return true
}
