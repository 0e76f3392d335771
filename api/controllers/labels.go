package controllers

import (
	"net/http"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	labelsvc "github.com/ofuentes/wms-bridge/internal/labels"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// LabelGenerateQR issues a QR label for one item unit.
func LabelGenerateQR(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "label service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body generateQRRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label, err := svc.GenerateQR(r.Context(), labelsvc.GenerateQRInput{
			ItemCode:    body.ItemCode,
			BatchNumber: body.BatchNumber,
			SerialNo:    body.SerialNo,
			ExpiryDate:  body.ExpiryDate,
			Copies:      body.Copies,
			ActorID:     actorID,
			BranchID:    branchFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, label)
	}
}

// LabelGenerateBarcode issues a short scannable code for one item.
func LabelGenerateBarcode(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "label service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body generateBarcodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label, err := svc.GenerateBarcode(r.Context(), labelsvc.GenerateBarcodeInput{
			ItemCode: body.ItemCode,
			Copies:   body.Copies,
			ActorID:  actorID,
			BranchID: branchFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, label)
	}
}

// LabelReprint bumps the copy count without changing the payload.
func LabelReprint(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "label service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		labelID, err := pathUUID(r, "labelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label, err := svc.Reprint(r.Context(), labelID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, label)
	}
}

// LabelHistory returns the caller's recently generated labels.
func LabelHistory(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "label service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		labels, err := svc.History(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, labels)
	}
}

type generateQRRequest struct {
	ItemCode    string  `json:"item_code" validate:"required"`
	BatchNumber *string `json:"batch_number"`
	SerialNo    *string `json:"serial_no"`
	ExpiryDate  *string `json:"expiry_date"`
	Copies      int     `json:"copies"`
}

type generateBarcodeRequest struct {
	ItemCode string `json:"item_code" validate:"required"`
	Copies   int    `json:"copies"`
}
