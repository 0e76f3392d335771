package grpo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/internal/labels"
	"github.com/ofuentes/wms-bridge/internal/series"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/pagination"
)

const lineBarcodePrefix = "WMS"

// Service defines goods receipt operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ReceiptDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ReceiptDTO, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]ReceiptDTO, error)
	ListPendingQC(ctx context.Context) ([]ReceiptDTO, error)
	AddLine(ctx context.Context, input AddLineInput) (*ReceiptDTO, error)
	UpdateLine(ctx context.Context, input UpdateLineInput) (*ReceiptDTO, error)
	RemoveLine(ctx context.Context, receiptID, lineID uuid.UUID, actorID uuid.UUID) error
	Submit(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*ReceiptDTO, error)
	Approve(ctx context.Context, input QCInput) (*ReceiptDTO, error)
	Reject(ctx context.Context, input QCInput) (*ReceiptDTO, error)
	Reopen(ctx context.Context, input ReopenInput) (*ReceiptDTO, error)
	Post(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*ReceiptDTO, error)
}

// CreateInput opens a receipt draft against an open purchase order.
type CreateInput struct {
	POEntry  int
	Comments *string
	ActorID  uuid.UUID
	BranchID *uuid.UUID
}

// AddLineInput captures one received PO line. A line barcode is generated
// when the scanner does not supply one.
type AddLineInput struct {
	ReceiptID uuid.UUID
	BaseLine  int
	Quantity  decimal.Decimal
	BinCode   *string
	Barcode   *string
	Batches   []models.BatchAllocation
	Serials   []models.SerialNumber
	ActorID   uuid.UUID
}

// UpdateLineInput edits an existing draft line. Quantity is always set;
// the remaining fields are applied only when present.
type UpdateLineInput struct {
	ReceiptID uuid.UUID
	LineID    uuid.UUID
	Quantity  decimal.Decimal
	BinCode   *string
	Barcode   *string
	Batches   []models.BatchAllocation
	Serials   []models.SerialNumber
	ActorID   uuid.UUID
}

// ReopenInput identifies the rejected document and the actor asking for rework.
type ReopenInput struct {
	ReceiptID uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// QCInput carries the reviewer identity and notes for approve/reject.
type QCInput struct {
	ReceiptID uuid.UUID
	ActorID   uuid.UUID
	Notes     *string
}

type service struct {
	repo   Repository
	tx     txRunner
	erp    erpGateway
	series series.Allocator
}

// NewService builds the goods receipt service with required dependencies.
func NewService(repo Repository, tx txRunner, gateway erpGateway, alloc series.Allocator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods receipt repository required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*ReceiptDTO, error) {
	if input.POEntry <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order entry required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	po, err := s.erp.GetPurchaseOrder(ctx, input.POEntry)
	if err != nil {
		return nil, err
	}
	if !hasOpenLine(po) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order has no open lines")
	}

	var created *models.GoodsReceipt
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		docNumber, err := s.series.Allocate(ctx, tx, input.BranchID, series.DocTypeGoodsReceipt)
		if err != nil {
			return err
		}
		receipt := &models.GoodsReceipt{
			DocNumber: docNumber,
			BranchID:  input.BranchID,
			POEntry:   po.DocEntry,
			PONumber:  strconv.Itoa(po.DocNum),
			CardCode:  po.CardCode,
			CardName:  po.CardName,
			Status:    enums.GRPOStatusDraft,
			Comments:  input.Comments,
			CreatedBy: input.ActorID,
		}
		created, err = s.repo.WithTx(tx).Create(ctx, receipt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create goods receipt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ReceiptDTO, error) {
	receipt, err := s.loadReceipt(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(receipt), nil
}

func (s *service) ListMine(ctx context.Context, actorID uuid.UUID) ([]ReceiptDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	receipts, err := s.repo.ListByCreator(ctx, actorID, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list goods receipts")
	}
	return toDTOs(receipts), nil
}

func (s *service) ListPendingQC(ctx context.Context) ([]ReceiptDTO, error) {
	receipts, err := s.repo.ListByStatus(ctx, enums.GRPOStatusSubmitted, pagination.DefaultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submitted receipts")
	}
	return toDTOs(receipts), nil
}

func (s *service) AddLine(ctx context.Context, input AddLineInput) (*ReceiptDTO, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var receipt *models.GoodsReceipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		receipt, err = s.loadReceipt(ctx, repo, input.ReceiptID)
		if err != nil {
			return err
		}
		if !isEditable(receipt.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "receipt lines can only change while in draft")
		}

		po, err := s.erp.GetPurchaseOrder(ctx, receipt.POEntry)
		if err != nil {
			return err
		}
		poLine := findPOLine(po, input.BaseLine)
		if poLine == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order line not found")
		}

		if input.Quantity.GreaterThan(poLine.OpenQuantity) {
			return pkgerrors.New(pkgerrors.CodeQuantityExceeded, "quantity exceeds open quantity on purchase order line").
				WithDetails(map[string]any{
					"base_line":     input.BaseLine,
					"open_quantity": poLine.OpenQuantity,
					"requested":     input.Quantity,
				})
		}

		received, err := repo.SumReceivedForPOLine(ctx, receipt.POEntry, input.BaseLine)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum received quantity")
		}
		if received.Add(input.Quantity).GreaterThan(poLine.Quantity) {
			return pkgerrors.New(pkgerrors.CodeQuantityExceeded, "cumulative received quantity exceeds ordered quantity").
				WithDetails(map[string]any{
					"base_line":        input.BaseLine,
					"ordered_quantity": poLine.Quantity,
					"already_received": received,
					"requested":        input.Quantity,
				})
		}

		line := &models.GoodsReceiptLine{
			ReceiptID:   receipt.ID,
			BaseLine:    poLine.LineNum,
			ItemCode:    poLine.ItemCode,
			ItemName:    poLine.ItemDescription,
			Quantity:    input.Quantity,
			WarehouseID: poLine.WarehouseCode,
			BinCode:     input.BinCode,
			QCStatus:    enums.LineQCStatusPending,
			Batches:     input.Batches,
			Serials:     input.Serials,
		}
		if poLine.UoMCode != "" {
			uom := poLine.UoMCode
			line.UoMCode = &uom
		}
		if input.Barcode != nil && *input.Barcode != "" {
			line.Barcode = input.Barcode
		} else {
			barcode, err := labels.EncodeBarcode(lineBarcodePrefix, poLine.ItemCode)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate line barcode")
			}
			line.Barcode = &barcode
		}
		if _, err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receipt line")
		}
		receipt.Lines = append(receipt.Lines, *line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(receipt), nil
}

func (s *service) UpdateLine(ctx context.Context, input UpdateLineInput) (*ReceiptDTO, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var receipt *models.GoodsReceipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		receipt, err = s.loadReceipt(ctx, repo, input.ReceiptID)
		if err != nil {
			return err
		}
		if !isEditable(receipt.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "receipt lines can only change while in draft")
		}

		line, err := repo.FindLine(ctx, input.LineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "receipt line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt line")
		}
		if line.ReceiptID != receipt.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to receipt")
		}

		po, err := s.erp.GetPurchaseOrder(ctx, receipt.POEntry)
		if err != nil {
			return err
		}
		poLine := findPOLine(po, line.BaseLine)
		if poLine == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order line not found")
		}

		received, err := repo.SumReceivedForPOLine(ctx, receipt.POEntry, line.BaseLine)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum received quantity")
		}
		// The stored quantity is part of the sum; swap it for the new value.
		projected := received.Sub(line.Quantity).Add(input.Quantity)
		if projected.GreaterThan(poLine.Quantity) || input.Quantity.GreaterThan(poLine.OpenQuantity) {
			return pkgerrors.New(pkgerrors.CodeQuantityExceeded, "cumulative received quantity exceeds ordered quantity").
				WithDetails(map[string]any{
					"base_line":        line.BaseLine,
					"ordered_quantity": poLine.Quantity,
					"requested":        input.Quantity,
				})
		}

		updates := map[string]any{"quantity": input.Quantity}
		if input.BinCode != nil {
			updates["bin_code"] = input.BinCode
		}
		if input.Barcode != nil {
			updates["barcode"] = input.Barcode
		}
		if input.Batches != nil {
			updates["batches"] = input.Batches
		}
		if input.Serials != nil {
			updates["serials"] = input.Serials
		}
		if err := repo.UpdateLine(ctx, line.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update receipt line")
		}
		for i := range receipt.Lines {
			if receipt.Lines[i].ID != line.ID {
				continue
			}
			receipt.Lines[i].Quantity = input.Quantity
			if input.BinCode != nil {
				receipt.Lines[i].BinCode = input.BinCode
			}
			if input.Barcode != nil {
				receipt.Lines[i].Barcode = input.Barcode
			}
			if input.Batches != nil {
				receipt.Lines[i].Batches = input.Batches
			}
			if input.Serials != nil {
				receipt.Lines[i].Serials = input.Serials
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(receipt), nil
}

func (s *service) RemoveLine(ctx context.Context, receiptID, lineID uuid.UUID, actorID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		receipt, err := s.loadReceipt(ctx, repo, receiptID)
		if err != nil {
			return err
		}
		if !isEditable(receipt.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "receipt lines can only change while in draft")
		}
		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "receipt line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt line")
		}
		if line.ReceiptID != receipt.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to receipt")
		}
		if err := repo.DeleteLine(ctx, lineID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete receipt line")
		}
		return nil
	})
}

func (s *service) Submit(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*ReceiptDTO, error) {
	return s.transition(ctx, id, enums.GRPOStatusSubmitted, func(receipt *models.GoodsReceipt) error {
		if receipt.CreatedBy != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may submit")
		}
		if len(receipt.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "receipt needs at least one line")
		}
		return nil
	}, nil, nil)
}

func (s *service) Approve(ctx context.Context, input QCInput) (*ReceiptDTO, error) {
	now := time.Now().UTC()
	approved := enums.LineQCStatusApproved
	return s.transition(ctx, input.ReceiptID, enums.GRPOStatusApproved, nil, map[string]any{
		"qc_user_id":   input.ActorID,
		"qc_notes":     input.Notes,
		"qc_action_at": now,
	}, &approved)
}

func (s *service) Reject(ctx context.Context, input QCInput) (*ReceiptDTO, error) {
	if input.Notes == nil || *input.Notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection notes required")
	}
	now := time.Now().UTC()
	rejected := enums.LineQCStatusRejected
	return s.transition(ctx, input.ReceiptID, enums.GRPOStatusRejected, nil, map[string]any{
		"qc_user_id":   input.ActorID,
		"qc_notes":     input.Notes,
		"qc_action_at": now,
	}, &rejected)
}

func (s *service) Reopen(ctx context.Context, input ReopenInput) (*ReceiptDTO, error) {
	pending := enums.LineQCStatusPending
	return s.transition(ctx, input.ReceiptID, enums.GRPOStatusDraft, func(receipt *models.GoodsReceipt) error {
		return canReopen(receipt.CreatedBy, input.ActorID, input.ActorRole)
	}, map[string]any{
		"qc_user_id":   nil,
		"qc_notes":     nil,
		"qc_action_at": nil,
	}, &pending)
}

func (s *service) Post(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*ReceiptDTO, error) {
	receipt, err := s.loadReceipt(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !receipt.Status.CanTransitionTo(enums.GRPOStatusPosted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot post receipt in status %s", receipt.Status))
	}
	if len(receipt.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt needs at least one line")
	}

	result, err := s.erp.CreateGoodsReceipt(ctx, buildReceiptPayload(receipt))
	if err != nil {
		msg := err.Error()
		_ = s.repo.Update(ctx, receipt.ID, map[string]any{"posting_error": msg})
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":        enums.GRPOStatusPosted,
		"erp_doc_entry": result.DocEntry,
		"erp_doc_num":   result.DocNum,
		"posted_at":     now,
		"posting_error": nil,
	}
	if err := s.repo.Update(ctx, receipt.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record posted receipt")
	}

	receipt.Status = enums.GRPOStatusPosted
	receipt.ERPDocEntry = &result.DocEntry
	receipt.ERPDocNum = &result.DocNum
	receipt.PostedAt = &now
	receipt.PostingError = nil
	return FromModel(receipt), nil
}

// transition applies a guarded status change with optional extra column
// updates. When lineStatus is set every line follows the document decision.
func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.GRPOStatus, guard func(*models.GoodsReceipt) error, extra map[string]any, lineStatus *enums.LineQCStatus) (*ReceiptDTO, error) {
	var receipt *models.GoodsReceipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		receipt, err = s.loadReceipt(ctx, repo, id)
		if err != nil {
			return err
		}
		if !receipt.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move receipt from %s to %s", receipt.Status, target))
		}
		if guard != nil {
			if err := guard(receipt); err != nil {
				return err
			}
		}

		updates := map[string]any{"status": target}
		for k, v := range extra {
			updates[k] = v
		}
		if err := repo.Update(ctx, receipt.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update receipt status")
		}
		if lineStatus != nil {
			if err := repo.UpdateLinesByReceipt(ctx, receipt.ID, map[string]any{"qc_status": *lineStatus}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update receipt line statuses")
			}
			for i := range receipt.Lines {
				receipt.Lines[i].QCStatus = *lineStatus
			}
		}
		receipt.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(receipt), nil
}

func (s *service) loadReceipt(ctx context.Context, repo Repository, id uuid.UUID) (*models.GoodsReceipt, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt id required")
	}
	receipt, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods receipt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load goods receipt")
	}
	return receipt, nil
}

func buildReceiptPayload(receipt *models.GoodsReceipt) erp.GoodsReceiptPayload {
	payload := erp.GoodsReceiptPayload{
		CardCode:     receipt.CardCode,
		DocDate:      time.Now().UTC().Format("2006-01-02"),
		WMSReceiptID: receipt.DocNumber,
	}
	if receipt.Comments != nil {
		payload.Comments = *receipt.Comments
	}
	for _, line := range receipt.Lines {
		docLine := erp.GoodsReceiptLine{
			BaseType:      erp.BaseTypePurchaseOrder,
			BaseEntry:     receipt.POEntry,
			BaseLine:      line.BaseLine,
			ItemCode:      line.ItemCode,
			Quantity:      line.Quantity,
			WarehouseCode: line.WarehouseID,
		}
		if line.UoMCode != nil {
			docLine.UoMCode = *line.UoMCode
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
		payload.DocumentLines = append(payload.DocumentLines, docLine)
	}
	return payload
}

func hasOpenLine(po *erp.PurchaseOrder) bool {
	if po == nil {
		return false
	}
	for _, line := range po.DocumentLines {
		if line.LineStatus != "" && line.LineStatus != "bost_Open" {
			continue
		}
		if line.OpenQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

func findPOLine(po *erp.PurchaseOrder, lineNum int) *erp.PurchaseOrderLine {
	for i := range po.DocumentLines {
		if po.DocumentLines[i].LineNum == lineNum {
			return &po.DocumentLines[i]
		}
	}
	return nil
}

func isEditable(status enums.GRPOStatus) bool {
	return status == enums.GRPOStatusDraft
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

func toDTOs(receipts []models.GoodsReceipt) []ReceiptDTO {
	out := make([]ReceiptDTO, 0, len(receipts))
	for i := range receipts {
		out = append(out, *FromModel(&receipts[i]))
	}
	return out
}
