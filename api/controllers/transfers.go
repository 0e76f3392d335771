package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	transfersvc "github.com/ofuentes/wms-bridge/internal/transfers"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// TransferCreate opens a transfer draft, against an ERP transfer request
// or ad hoc between two warehouses.
func TransferCreate(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTransferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Create(r.Context(), transfersvc.CreateInput{
			RequestEntry:  body.RequestEntry,
			FromWarehouse: body.FromWarehouse,
			ToWarehouse:   body.ToWarehouse,
			Comments:      validators.SanitizeFreeText(body.Comments, validators.MaxFreeTextLen),
			ActorID:       actorID,
			BranchID:      branchFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

// TransferListMine lists the caller's transfers.
func TransferListMine(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfers, err := svc.ListMine(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfers)
	}
}

// TransferDetail fetches one transfer with its lines.
func TransferDetail(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Get(r.Context(), transferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

// TransferHistory returns the status audit trail for one transfer.
func TransferHistory(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), transferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

// TransferAddLine records one item movement on a draft.
func TransferAddLine(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transferLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.AddLine(r.Context(), transfersvc.AddLineInput{
			TransferID:  transferID,
			BaseLine:    body.BaseLine,
			ItemCode:    body.ItemCode,
			Quantity:    body.Quantity,
			FromBinCode: body.FromBinCode,
			ToBinCode:   body.ToBinCode,
			Batches:     body.Batches,
			Serials:     body.Serials,
			ActorID:     actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

// TransferRemoveLine drops a line from a draft transfer.
func TransferRemoveLine(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveLine(r.Context(), transferID, lineID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// TransferSubmit moves a draft transfer into the QC queue.
func TransferSubmit(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transferTransition(svc, logg, func(ctx context.Context, transferID, actorID uuid.UUID) (*transfersvc.TransferDTO, error) {
		return svc.Submit(ctx, transferID, actorID)
	})
}

// TransferReopen returns a rejected transfer to draft for rework.
func TransferReopen(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Reopen(r.Context(), transfersvc.ReopenInput{
			TransferID: transferID,
			ActorID:    actorID,
			ActorRole:  roleFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

// TransferPost sends an approved transfer to the ERP.
func TransferPost(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transferTransition(svc, logg, func(ctx context.Context, transferID, actorID uuid.UUID) (*transfersvc.TransferDTO, error) {
		return svc.Post(ctx, transferID, actorID)
	})
}

// TransferApprove records a QC approval.
func TransferApprove(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transferDecision(svc, logg, func(ctx context.Context, input transfersvc.QCInput) (*transfersvc.TransferDTO, error) {
		return svc.QCApprove(ctx, input)
	})
}

// TransferReject records a QC rejection.
func TransferReject(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transferDecision(svc, logg, func(ctx context.Context, input transfersvc.QCInput) (*transfersvc.TransferDTO, error) {
		return svc.QCReject(ctx, input)
	})
}

type createTransferRequest struct {
	RequestEntry  *int    `json:"request_entry"`
	FromWarehouse string  `json:"from_warehouse"`
	ToWarehouse   string  `json:"to_warehouse"`
	Comments      *string `json:"comments"`
}

type transferLineRequest struct {
	BaseLine    *int                     `json:"base_line"`
	ItemCode    string                   `json:"item_code" validate:"required"`
	Quantity    decimal.Decimal          `json:"quantity" validate:"required"`
	FromBinCode *string                  `json:"from_bin_code"`
	ToBinCode   *string                  `json:"to_bin_code"`
	Batches     []models.BatchAllocation `json:"batches"`
	Serials     []models.SerialNumber    `json:"serials"`
}

func transferTransition(svc transfersvc.Service, logg *logger.Logger, run func(ctx context.Context, transferID, actorID uuid.UUID) (*transfersvc.TransferDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := run(r.Context(), transferID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

func transferDecision(svc transfersvc.Service, logg *logger.Logger, decide func(ctx context.Context, input transfersvc.QCInput) (*transfersvc.TransferDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transferID, err := pathUUID(r, "transferId")
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

		transfer, err := decide(r.Context(), transfersvc.QCInput{
			TransferID: transferID,
			ActorID:    actorID,
			Notes:      validators.SanitizeFreeText(body.Notes, validators.MaxFreeTextLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}
