package transfers

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

// Service defines inventory transfer operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*TransferDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*TransferDTO, error)
	History(ctx context.Context, id uuid.UUID) ([]HistoryDTO, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]TransferDTO, error)
	ListPendingQC(ctx context.Context) ([]TransferDTO, error)
	AddLine(ctx context.Context, input AddLineInput) (*TransferDTO, error)
	RemoveLine(ctx context.Context, transferID, lineID, actorID uuid.UUID) error
	Submit(ctx context.Context, id, actorID uuid.UUID) (*TransferDTO, error)
	QCApprove(ctx context.Context, input QCInput) (*TransferDTO, error)
	QCReject(ctx context.Context, input QCInput) (*TransferDTO, error)
	Reopen(ctx context.Context, input ReopenInput) (*TransferDTO, error)
	Post(ctx context.Context, id, actorID uuid.UUID) (*TransferDTO, error)
}

// CreateInput opens a transfer draft, either against an open ERP transfer
// request or ad hoc between two warehouses.
type CreateInput struct {
	RequestEntry  *int
	FromWarehouse string
	ToWarehouse   string
	Comments      *string
	ActorID       uuid.UUID
	BranchID      *uuid.UUID
}

// AddLineInput captures one item movement.
type AddLineInput struct {
	TransferID  uuid.UUID
	BaseLine    *int
	ItemCode    string
	Quantity    decimal.Decimal
	FromBinCode *string
	ToBinCode   *string
	Batches     []models.BatchAllocation
	Serials     []models.SerialNumber
	ActorID     uuid.UUID
}

// QCInput carries the reviewer identity and notes for QC decisions.
type QCInput struct {
	TransferID uuid.UUID
	ActorID    uuid.UUID
	Notes      *string
}

// ReopenInput identifies the rejected document and the actor asking for rework.
type ReopenInput struct {
	TransferID uuid.UUID
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
}

type service struct {
	repo   Repository
	tx     txRunner
	erp    erpGateway
	series series.Allocator
}

// NewService builds the transfer service with required dependencies.
func NewService(repo Repository, tx txRunner, gateway erpGateway, alloc series.Allocator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transfer repository required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*TransferDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	transferType := enums.TransferTypeAdHoc
	fromWarehouse := input.FromWarehouse
	toWarehouse := input.ToWarehouse

	if input.RequestEntry != nil {
		request, err := s.erp.GetTransferRequest(ctx, *input.RequestEntry)
		if err != nil {
			return nil, err
		}
		if !hasOpenRequestLine(request) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer request has no open lines")
		}
		transferType = enums.TransferTypeRequestBased
		fromWarehouse = request.FromWarehouse
		toWarehouse = request.ToWarehouse
	}

	if fromWarehouse == "" || toWarehouse == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to warehouses required")
	}
	if fromWarehouse == toWarehouse {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to warehouses must differ")
	}

	var created *models.InventoryTransfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		docNumber, err := s.series.Allocate(ctx, tx, input.BranchID, series.DocTypeTransfer)
		if err != nil {
			return err
		}
		transfer := &models.InventoryTransfer{
			DocNumber:     docNumber,
			BranchID:      input.BranchID,
			Type:          transferType,
			RequestEntry:  input.RequestEntry,
			FromWarehouse: fromWarehouse,
			ToWarehouse:   toWarehouse,
			Status:        enums.TransferStatusDraft,
			Comments:      input.Comments,
			CreatedBy:     input.ActorID,
		}
		created, err = repo.Create(ctx, transfer)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer")
		}
		return repo.AppendHistory(ctx, &models.TransferStatusHistory{
			TransferID: created.ID,
			ToStatus:   enums.TransferStatusDraft,
			ActorID:    input.ActorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TransferDTO, error) {
	transfer, err := s.loadTransfer(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(transfer), nil
}

func (s *service) History(ctx context.Context, id uuid.UUID) ([]HistoryDTO, error) {
	if _, err := s.loadTransfer(ctx, s.repo, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfer history")
	}
	return historyFromModel(rows), nil
}

func (s *service) ListMine(ctx context.Context, actorID uuid.UUID) ([]TransferDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	transfers, err := s.repo.ListByCreator(ctx, actorID, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers")
	}
	return toDTOs(transfers), nil
}

func (s *service) ListPendingQC(ctx context.Context) ([]TransferDTO, error) {
	transfers, err := s.repo.ListByStatus(ctx, enums.TransferStatusSubmitted, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submitted transfers")
	}
	return toDTOs(transfers), nil
}

func (s *service) AddLine(ctx context.Context, input AddLineInput) (*TransferDTO, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var transfer *models.InventoryTransfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		transfer, err = s.loadTransfer(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}
		if transfer.Status != enums.TransferStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer lines can only change while in draft")
		}

		line := &models.InventoryTransferLine{
			TransferID:  transfer.ID,
			BaseLine:    input.BaseLine,
			ItemCode:    input.ItemCode,
			Quantity:    input.Quantity,
			FromBinCode: input.FromBinCode,
			ToBinCode:   input.ToBinCode,
			QCStatus:    enums.LineQCStatusPending,
			Batches:     input.Batches,
			Serials:     input.Serials,
		}

		if transfer.Type == enums.TransferTypeRequestBased {
			if input.BaseLine == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "request line reference required")
			}
			request, err := s.erp.GetTransferRequest(ctx, *transfer.RequestEntry)
			if err != nil {
				return err
			}
			requestLine := findRequestLine(request, *input.BaseLine)
			if requestLine == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transfer request line not found")
			}

			allocated := allocatedForBaseLine(transfer, *input.BaseLine)
			if allocated.Add(input.Quantity).GreaterThan(requestLine.RemainingOpenQuantity) {
				return pkgerrors.New(pkgerrors.CodeQuantityExceeded, "quantity exceeds open quantity on transfer request line").
					WithDetails(map[string]any{
						"base_line":         *input.BaseLine,
						"open_quantity":     requestLine.RemainingOpenQuantity,
						"already_allocated": allocated,
						"requested":         input.Quantity,
					})
			}
			line.ItemCode = requestLine.ItemCode
			line.ItemName = requestLine.ItemDescription
			if requestLine.UoMCode != "" {
				uom := requestLine.UoMCode
				line.UoMCode = &uom
			}
		} else if line.ItemCode == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item code required")
		}

		if _, err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer line")
		}
		transfer.Lines = append(transfer.Lines, *line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(transfer), nil
}

func (s *service) RemoveLine(ctx context.Context, transferID, lineID, actorID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		transfer, err := s.loadTransfer(ctx, repo, transferID)
		if err != nil {
			return err
		}
		if transfer.Status != enums.TransferStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer lines can only change while in draft")
		}
		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transfer line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer line")
		}
		if line.TransferID != transfer.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to transfer")
		}
		if err := repo.DeleteLine(ctx, lineID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transfer line")
		}
		return nil
	})
}

func (s *service) Submit(ctx context.Context, id, actorID uuid.UUID) (*TransferDTO, error) {
	now := time.Now().UTC()
	return s.transition(ctx, id, enums.TransferStatusSubmitted, actorID, nil, func(transfer *models.InventoryTransfer) error {
		if transfer.CreatedBy != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may submit")
		}
		if len(transfer.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "transfer needs at least one line")
		}
		return nil
	}, map[string]any{"submitted_at": now}, nil)
}

func (s *service) QCApprove(ctx context.Context, input QCInput) (*TransferDTO, error) {
	now := time.Now().UTC()
	approved := enums.LineQCStatusApproved
	return s.transition(ctx, input.TransferID, enums.TransferStatusQCApproved, input.ActorID, input.Notes, nil, map[string]any{
		"qc_user_id":   input.ActorID,
		"qc_notes":     input.Notes,
		"qc_action_at": now,
	}, &approved)
}

func (s *service) QCReject(ctx context.Context, input QCInput) (*TransferDTO, error) {
	if input.Notes == nil || *input.Notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection notes required")
	}
	now := time.Now().UTC()
	rejected := enums.LineQCStatusRejected
	return s.transition(ctx, input.TransferID, enums.TransferStatusRejected, input.ActorID, input.Notes, nil, map[string]any{
		"qc_user_id":   input.ActorID,
		"qc_notes":     input.Notes,
		"qc_action_at": now,
	}, &rejected)
}

func (s *service) Reopen(ctx context.Context, input ReopenInput) (*TransferDTO, error) {
	pending := enums.LineQCStatusPending
	dto, err := s.transition(ctx, input.TransferID, enums.TransferStatusDraft, input.ActorID, nil, func(transfer *models.InventoryTransfer) error {
		return canReopen(transfer.CreatedBy, input.ActorID, input.ActorRole)
	}, map[string]any{
		"qc_user_id":   nil,
		"qc_notes":     nil,
		"qc_action_at": nil,
		"submitted_at": nil,
	}, &pending)
	if err != nil {
		return nil, err
	}
	dto.QCUserID = nil
	dto.QCNotes = nil
	dto.QCActionAt = nil
	dto.SubmittedAt = nil
	return dto, nil
}

func (s *service) Post(ctx context.Context, id, actorID uuid.UUID) (*TransferDTO, error) {
	transfer, err := s.loadTransfer(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !transfer.Status.CanTransitionTo(enums.TransferStatusPosted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot post transfer in status %s", transfer.Status))
	}
	if len(transfer.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer needs at least one line")
	}

	result, err := s.erp.CreateStockTransfer(ctx, buildTransferPayload(transfer))
	if err != nil {
		msg := err.Error()
		_ = s.repo.Update(ctx, transfer.ID, map[string]any{"posting_error": msg})
		return nil, err
	}

	now := time.Now().UTC()
	var posted *models.InventoryTransfer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{
			"status":        enums.TransferStatusPosted,
			"erp_doc_entry": result.DocEntry,
			"erp_doc_num":   result.DocNum,
			"posted_at":     now,
			"posting_error": nil,
		}
		if err := repo.Update(ctx, transfer.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record posted transfer")
		}
		from := transfer.Status
		if err := repo.AppendHistory(ctx, &models.TransferStatusHistory{
			TransferID: transfer.ID,
			FromStatus: &from,
			ToStatus:   enums.TransferStatusPosted,
			ActorID:    actorID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append transfer history")
		}
		transfer.Status = enums.TransferStatusPosted
		transfer.ERPDocEntry = &result.DocEntry
		transfer.ERPDocNum = &result.DocNum
		transfer.PostedAt = &now
		transfer.PostingError = nil
		posted = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(posted), nil
}

// transition applies a guarded status change and writes the audit row in the
// same transaction. When lineStatus is set every line follows the document
// decision.
func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.TransferStatus, actorID uuid.UUID, notes *string, guard func(*models.InventoryTransfer) error, extra map[string]any, lineStatus *enums.LineQCStatus) (*TransferDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var transfer *models.InventoryTransfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		transfer, err = s.loadTransfer(ctx, repo, id)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move transfer from %s to %s", transfer.Status, target))
		}
		if guard != nil {
			if err := guard(transfer); err != nil {
				return err
			}
		}

		updates := map[string]any{"status": target}
		for k, v := range extra {
			updates[k] = v
		}
		if err := repo.Update(ctx, transfer.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer status")
		}
		if lineStatus != nil {
			if err := repo.UpdateLinesByTransfer(ctx, transfer.ID, map[string]any{"qc_status": *lineStatus}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer line statuses")
			}
			for i := range transfer.Lines {
				transfer.Lines[i].QCStatus = *lineStatus
			}
		}

		from := transfer.Status
		if err := repo.AppendHistory(ctx, &models.TransferStatusHistory{
			TransferID: transfer.ID,
			FromStatus: &from,
			ToStatus:   target,
			ActorID:    actorID,
			Notes:      notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append transfer history")
		}
		transfer.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(transfer), nil
}

// canReopen limits rework to the document owner or a supervisor role.
func canReopen(createdBy, actorID uuid.UUID, role enums.UserRole) error {
	if createdBy == actorID {
		return nil
	}
	if role == enums.UserRoleAdmin || role == enums.UserRoleManager {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or a manager may reopen")
}

func (s *service) loadTransfer(ctx context.Context, repo Repository, id uuid.UUID) (*models.InventoryTransfer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	transfer, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
	}
	return transfer, nil
}

func buildTransferPayload(transfer *models.InventoryTransfer) erp.StockTransferPayload {
	payload := erp.StockTransferPayload{
		DocDate:       time.Now().UTC().Format("2006-01-02"),
		FromWarehouse: transfer.FromWarehouse,
		ToWarehouse:   transfer.ToWarehouse,
		WMSTransferID: transfer.DocNumber,
	}
	if transfer.Comments != nil {
		payload.Comments = *transfer.Comments
	}
	for i := range transfer.Lines {
		line := &transfer.Lines[i]
		docLine := erp.StockTransferLine{
			LineNum:           i,
			ItemCode:          line.ItemCode,
			Quantity:          line.Quantity,
			FromWarehouseCode: transfer.FromWarehouse,
			WarehouseCode:     transfer.ToWarehouse,
		}
		if line.UoMCode != nil {
			docLine.UoMCode = *line.UoMCode
		}
		if transfer.Type == enums.TransferTypeRequestBased && line.BaseLine != nil {
			docLine.BaseType = erp.BaseTypeTransferRequest
			docLine.BaseEntry = transfer.RequestEntry
			docLine.BaseLine = line.BaseLine
		}
		for _, batch := range line.Batches {
			entry := erp.BatchNumberEntry{
				BatchNumber: batch.BatchNumber,
				Quantity:    batch.Quantity,
			}
			if batch.ExpiryDate != nil {
				entry.ExpiryDate = *batch.ExpiryDate
			}
			if batch.Attribute != nil {
				entry.BatchAttribute = *batch.Attribute
			}
			docLine.BatchNumbers = append(docLine.BatchNumbers, entry)
		}
		for _, serial := range line.Serials {
			entry := erp.SerialNumberEntry{InternalSerialNumber: serial.InternalSerial}
			if serial.ManufacturerNo != nil {
				entry.ManufacturerSerialNumber = *serial.ManufacturerNo
			}
			docLine.SerialNumbers = append(docLine.SerialNumbers, entry)
		}
		payload.StockTransferLines = append(payload.StockTransferLines, docLine)
	}
	return payload
}

func hasOpenRequestLine(request *erp.TransferRequest) bool {
	if request == nil {
		return false
	}
	if request.DocumentStatus != "" && request.DocumentStatus != "bost_Open" {
		return false
	}
	for _, line := range request.StockTransferLines {
		if line.RemainingOpenQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

func findRequestLine(request *erp.TransferRequest, lineNum int) *erp.TransferRequestLine {
	for i := range request.StockTransferLines {
		if request.StockTransferLines[i].LineNum == lineNum {
			return &request.StockTransferLines[i]
		}
	}
	return nil
}

func allocatedForBaseLine(transfer *models.InventoryTransfer, baseLine int) decimal.Decimal {
	total := decimal.Zero
	for i := range transfer.Lines {
		if transfer.Lines[i].BaseLine != nil && *transfer.Lines[i].BaseLine == baseLine {
			total = total.Add(transfer.Lines[i].Quantity)
		}
	}
	return total
}

func toDTOs(transfers []models.InventoryTransfer) []TransferDTO {
	out := make([]TransferDTO, 0, len(transfers))
	for i := range transfers {
		out = append(out, *FromModel(&transfers[i]))
	}
	return out
}
