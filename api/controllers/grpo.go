package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	grposvc "github.com/ofuentes/wms-bridge/internal/grpo"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// GRPOCreate opens a goods receipt draft against an open purchase order.
func GRPOCreate(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createReceiptRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Create(r.Context(), grposvc.CreateInput{
			POEntry:  body.POEntry,
			Comments: validators.SanitizeFreeText(body.Comments, validators.MaxFreeTextLen),
			ActorID:  actorID,
			BranchID: branchFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// GRPOListMine lists the caller's goods receipts.
func GRPOListMine(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipts, err := svc.ListMine(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipts)
	}
}

// GRPODetail fetches one receipt with its lines.
func GRPODetail(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Get(r.Context(), receiptID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// GRPOAddLine records one received PO line on a draft.
func GRPOAddLine(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body receiptLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.AddLine(r.Context(), grposvc.AddLineInput{
			ReceiptID: receiptID,
			BaseLine:  body.BaseLine,
			Quantity:  body.Quantity,
			BinCode:   body.BinCode,
			Barcode:   body.Barcode,
			Batches:   body.Batches,
			Serials:   body.Serials,
			ActorID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// GRPOUpdateLine edits the quantity, bin, barcode, or allocations on a
// draft line.
func GRPOUpdateLine(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.UpdateLine(r.Context(), grposvc.UpdateLineInput{
			ReceiptID: receiptID,
			LineID:    lineID,
			Quantity:  body.Quantity,
			BinCode:   body.BinCode,
			Barcode:   body.Barcode,
			Batches:   body.Batches,
			Serials:   body.Serials,
			ActorID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// GRPORemoveLine drops a line from a draft receipt.
func GRPORemoveLine(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveLine(r.Context(), receiptID, lineID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// GRPOSubmit moves a draft receipt into the QC queue.
func GRPOSubmit(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return receiptTransition(svc, logg, func(ctx context.Context, receiptID, actorID uuid.UUID) (*grposvc.ReceiptDTO, error) {
		return svc.Submit(ctx, receiptID, actorID)
	})
}

// GRPOReopen returns a rejected receipt to draft for rework.
func GRPOReopen(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Reopen(r.Context(), grposvc.ReopenInput{
			ReceiptID: receiptID,
			ActorID:   actorID,
			ActorRole: roleFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// GRPOPost sends an approved receipt to the ERP.
func GRPOPost(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return receiptTransition(svc, logg, func(ctx context.Context, receiptID, actorID uuid.UUID) (*grposvc.ReceiptDTO, error) {
		return svc.Post(ctx, receiptID, actorID)
	})
}

// GRPOApprove records a QC approval.
func GRPOApprove(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return receiptDecision(svc, logg, func(ctx context.Context, input grposvc.QCInput) (*grposvc.ReceiptDTO, error) {
		return svc.Approve(ctx, input)
	})
}

// GRPOReject records a QC rejection.
func GRPOReject(svc grposvc.Service, logg *logger.Logger) http.HandlerFunc {
	return receiptDecision(svc, logg, func(ctx context.Context, input grposvc.QCInput) (*grposvc.ReceiptDTO, error) {
		return svc.Reject(ctx, input)
	})
}

type createReceiptRequest struct {
	POEntry  int     `json:"po_entry" validate:"required"`
	Comments *string `json:"comments"`
}

type receiptLineRequest struct {
	BaseLine int                      `json:"base_line"`
	Quantity decimal.Decimal          `json:"quantity" validate:"required"`
	BinCode  *string                  `json:"bin_code"`
	Barcode  *string                  `json:"barcode"`
	Batches  []models.BatchAllocation `json:"batches"`
	Serials  []models.SerialNumber    `json:"serials"`
}

type updateLineRequest struct {
	Quantity decimal.Decimal          `json:"quantity" validate:"required"`
	BinCode  *string                  `json:"bin_code"`
	Barcode  *string                  `json:"barcode"`
	Batches  []models.BatchAllocation `json:"batches"`
	Serials  []models.SerialNumber    `json:"serials"`
}

type qcDecisionRequest struct {
	Notes *string `json:"notes"`
}

func receiptTransition(svc grposvc.Service, logg *logger.Logger, run func(ctx context.Context, receiptID, actorID uuid.UUID) (*grposvc.ReceiptDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := run(r.Context(), receiptID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

func receiptDecision(svc grposvc.Service, logg *logger.Logger, decide func(ctx context.Context, input grposvc.QCInput) (*grposvc.ReceiptDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "grpo service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiptID, err := pathUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body qcDecisionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		receipt, err := decide(r.Context(), grposvc.QCInput{
			ReceiptID: receiptID,
			ActorID:   actorID,
			Notes:     validators.SanitizeFreeText(body.Notes, validators.MaxFreeTextLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
