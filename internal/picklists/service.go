package picklists

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/pagination"
)

// Service defines pick list operations.
type Service interface {
	SyncOpen(ctx context.Context) ([]PickListDTO, error)
	Sync(ctx context.Context, absEntry int) (*PickListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PickListDTO, error)
	List(ctx context.Context, input ListInput) ([]PickListDTO, error)
	Assign(ctx context.Context, input AssignInput) (*PickListDTO, error)
	ReportPick(ctx context.Context, input ReportPickInput) (*PickListDTO, error)
	Close(ctx context.Context, id, actorID uuid.UUID) (*PickListDTO, error)
	Cancel(ctx context.Context, id, actorID uuid.UUID) (*PickListDTO, error)
}

// ListInput filters the pick list listing.
type ListInput struct {
	Status     *enums.PickListStatus
	AssignedTo *uuid.UUID
}

// AssignInput hands a pick list to a warehouse user.
type AssignInput struct {
	PickListID uuid.UUID
	AssigneeID uuid.UUID
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
}

// ReportPickInput records picked quantity against one line.
type ReportPickInput struct {
	PickListID uuid.UUID
	LineID     uuid.UUID
	Quantity   decimal.Decimal
	BinCode    *string
	Batches    []models.BatchAllocation
	ActorID    uuid.UUID
}

type service struct {
	repo Repository
	tx   txRunner
	erp  erpGateway
}

// NewService builds the pick list service with required dependencies.
func NewService(repo Repository, tx txRunner, gateway erpGateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pick list repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	return &service{repo: repo, tx: tx, erp: gateway}, nil
}

func (s *service) SyncOpen(ctx context.Context) ([]PickListDTO, error) {
	docs, err := s.erp.ListOpenPickLists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PickListDTO, 0, len(docs))
	for i := range docs {
		list, err := s.upsert(ctx, &docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *FromModel(list))
	}
	return out, nil
}

func (s *service) Sync(ctx context.Context, absEntry int) (*PickListDTO, error) {
	doc, err := s.erp.GetPickList(ctx, absEntry)
	if err != nil {
		return nil, err
	}
	list, err := s.upsert(ctx, doc)
	if err != nil {
		return nil, err
	}
	return FromModel(list), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PickListDTO, error) {
	list, err := s.loadPickList(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(list), nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]PickListDTO, error) {
	lists, err := s.repo.List(ctx, input.Status, input.AssignedTo, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pick lists")
	}
	out := make([]PickListDTO, 0, len(lists))
	for i := range lists {
		out = append(out, *FromModel(&lists[i]))
	}
	return out, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*PickListDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AssigneeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee required")
	}
	if input.AssigneeID != input.ActorID &&
		input.ActorRole != enums.UserRoleAdmin && input.ActorRole != enums.UserRoleManager {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only a manager may assign pick lists to other users")
	}

	var list *models.PickList
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		list, err = s.loadPickList(ctx, repo, input.PickListID)
		if err != nil {
			return err
		}
		if list.Status != enums.PickListStatusOpen && list.Status != enums.PickListStatusPicking {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot assign pick list in status %s", list.Status))
		}
		if err := repo.Update(ctx, list.ID, map[string]any{"assigned_to": input.AssigneeID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign pick list")
		}
		assignee := input.AssigneeID
		list.AssignedTo = &assignee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(list), nil
}

func (s *service) ReportPick(ctx context.Context, input ReportPickInput) (*PickListDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var list *models.PickList
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		list, err = s.loadPickList(ctx, repo, input.PickListID)
		if err != nil {
			return err
		}
		if list.Status != enums.PickListStatusOpen && list.Status != enums.PickListStatusPicking {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot pick against pick list in status %s", list.Status))
		}
		if list.AssignedTo != nil && *list.AssignedTo != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "pick list is assigned to another user")
		}

		line, err := repo.FindLine(ctx, input.LineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pick list line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pick list line")
		}
		if line.PickListID != list.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to pick list")
		}

		picked := line.PickedQty.Add(input.Quantity)
		if picked.GreaterThan(line.Quantity) {
			return pkgerrors.New(pkgerrors.CodeQuantityExceeded, "picked quantity exceeds released quantity").
				WithDetails(map[string]any{
					"released":       line.Quantity,
					"already_picked": line.PickedQty,
					"requested":      input.Quantity,
				})
		}

		lineUpdates := map[string]any{"picked_qty": picked}
		if input.BinCode != nil {
			lineUpdates["bin_code"] = input.BinCode
		}
		if input.Batches != nil {
			lineUpdates["batches"] = input.Batches
		}
		if err := repo.UpdateLine(ctx, line.ID, lineUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record picked quantity")
		}
		applyLinePick(list, line.ID, picked, input.BinCode, input.Batches)

		next := nextStatusAfterPick(list)
		if next != list.Status {
			if err := repo.Update(ctx, list.ID, map[string]any{"status": next}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pick list status")
			}
			list.Status = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(list), nil
}

func (s *service) Close(ctx context.Context, id, actorID uuid.UUID) (*PickListDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.loadPickList(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !list.Status.CanTransitionTo(enums.PickListStatusClosed) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot close pick list in status %s", list.Status))
	}

	if err := s.erp.UpdatePickList(ctx, list.AbsEntry, buildPickUpdate(list)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":    enums.PickListStatusClosed,
		"closed_at": now,
	}
	if err := s.repo.Update(ctx, list.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close pick list")
	}
	list.Status = enums.PickListStatusClosed
	list.ClosedAt = &now
	return FromModel(list), nil
}

func (s *service) Cancel(ctx context.Context, id, actorID uuid.UUID) (*PickListDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.loadPickList(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !list.Status.CanTransitionTo(enums.PickListStatusCanceled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel pick list in status %s", list.Status))
	}
	if err := s.repo.Update(ctx, list.ID, map[string]any{"status": enums.PickListStatusCanceled}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel pick list")
	}
	list.Status = enums.PickListStatusCanceled
	return FromModel(list), nil
}

// upsert mirrors one ERP pick list into the local store. Local workflow state
// and picked quantities survive repeated syncs.
func (s *service) upsert(ctx context.Context, doc *erp.PickListDocument) (*models.PickList, error) {
	var result *models.PickList
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByAbsEntry(ctx, doc.AbsEntry)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pick list")
		}

		releaseDate := parsePickDate(doc.PickDate)
		remarks := optionalString(doc.Remarks)
		pickerName := optionalString(doc.Name)

		if existing == nil {
			list := &models.PickList{
				AbsEntry:    doc.AbsEntry,
				PickerName:  pickerName,
				Status:      enums.PickListStatusOpen,
				Remarks:     remarks,
				ReleaseDate: releaseDate,
			}
			for _, row := range doc.PickLines {
				list.Lines = append(list.Lines, models.PickListLine{
					PickEntry:   row.LineNumber,
					OrderEntry:  row.OrderEntry,
					OrderLine:   row.OrderRowID,
					ItemCode:    row.ItemCode,
					Quantity:    row.ReleasedQuantity,
					PickedQty:   row.PickedQuantity,
					WarehouseID: row.WarehouseCode,
				})
			}
			result, err = repo.Create(ctx, list)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pick list")
			}
			return nil
		}

		updates := map[string]any{
			"picker_name":  pickerName,
			"remarks":      remarks,
			"release_date": releaseDate,
		}
		if err := repo.Update(ctx, existing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pick list")
		}
		existing.PickerName = pickerName
		existing.Remarks = remarks
		existing.ReleaseDate = releaseDate

		for _, row := range doc.PickLines {
			local := findLocalLine(existing, row.LineNumber)
			if local == nil {
				line := &models.PickListLine{
					PickListID:  existing.ID,
					PickEntry:   row.LineNumber,
					OrderEntry:  row.OrderEntry,
					OrderLine:   row.OrderRowID,
					ItemCode:    row.ItemCode,
					Quantity:    row.ReleasedQuantity,
					PickedQty:   row.PickedQuantity,
					WarehouseID: row.WarehouseCode,
				}
				if _, err := repo.CreateLine(ctx, line); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pick list line")
				}
				existing.Lines = append(existing.Lines, *line)
				continue
			}
			lineUpdates := map[string]any{
				"item_code":    row.ItemCode,
				"quantity":     row.ReleasedQuantity,
				"warehouse_id": row.WarehouseCode,
			}
			if err := repo.UpdateLine(ctx, local.ID, lineUpdates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pick list line")
			}
			local.ItemCode = row.ItemCode
			local.Quantity = row.ReleasedQuantity
			local.WarehouseID = row.WarehouseCode
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadPickList(ctx context.Context, repo Repository, id uuid.UUID) (*models.PickList, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pick list id required")
	}
	list, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pick list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pick list")
	}
	return list, nil
}

func buildPickUpdate(list *models.PickList) erp.PickListDocument {
	doc := erp.PickListDocument{AbsEntry: list.AbsEntry}
	for i := range list.Lines {
		line := &list.Lines[i]
		doc.PickLines = append(doc.PickLines, erp.PickListLine{
			LineNumber:     line.PickEntry,
			OrderEntry:     line.OrderEntry,
			OrderRowID:     line.OrderLine,
			PickedQuantity: line.PickedQty,
			ItemCode:       line.ItemCode,
			WarehouseCode:  line.WarehouseID,
		})
	}
	return doc
}

func applyLinePick(list *models.PickList, lineID uuid.UUID, picked decimal.Decimal, binCode *string, batches []models.BatchAllocation) {
	for i := range list.Lines {
		if list.Lines[i].ID != lineID {
			continue
		}
		list.Lines[i].PickedQty = picked
		if binCode != nil {
			list.Lines[i].BinCode = binCode
		}
		if batches != nil {
			list.Lines[i].Batches = batches
		}
		return
	}
}

// nextStatusAfterPick moves open lists into picking on the first report and
// into picked once every line is fully picked.
func nextStatusAfterPick(list *models.PickList) enums.PickListStatus {
	allPicked := len(list.Lines) > 0
	for i := range list.Lines {
		if list.Lines[i].PickedQty.LessThan(list.Lines[i].Quantity) {
			allPicked = false
			break
		}
	}
	if allPicked {
		return enums.PickListStatusPicked
	}
	return enums.PickListStatusPicking
}

func findLocalLine(list *models.PickList, pickEntry int) *models.PickListLine {
	for i := range list.Lines {
		if list.Lines[i].PickEntry == pickEntry {
			return &list.Lines[i]
		}
	}
	return nil
}

func parsePickDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
