package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	countsvc "github.com/ofuentes/wms-bridge/internal/counts"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// CountCreate opens a count sheet for one warehouse.
func CountCreate(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := countsvc.CreateInput{
			WarehouseID: body.WarehouseID,
			Remarks:     validators.SanitizeFreeText(body.Remarks, validators.MaxFreeTextLen),
			ActorID:     actorID,
			BranchID:    branchFromRequest(r),
		}
		if body.CountDate != nil {
			countDate, err := time.Parse("2006-01-02", *body.CountDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid count_date"))
				return
			}
			input.CountDate = &countDate
		}

		count, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, count)
	}
}

// CountListMine lists the caller's count sheets.
func CountListMine(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counts, err := svc.ListMine(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, counts)
	}
}

// CountDetail fetches one count sheet with its lines.
func CountDetail(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		countID, err := pathUUID(r, "countId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Get(r.Context(), countID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, count)
	}
}

// CountAddLine puts one item on the count sheet with its book quantity.
func CountAddLine(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		countID, err := pathUUID(r, "countId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body countLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.AddLine(r.Context(), countsvc.AddLineInput{
			CountID:    countID,
			ItemCode:   body.ItemCode,
			BinCode:    body.BinCode,
			InStockQty: body.InStockQty,
			ActorID:    actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, count)
	}
}

// CountRecord captures the physical count for one line.
func CountRecord(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		countID, err := pathUUID(r, "countId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recordCountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.RecordCount(r.Context(), countsvc.RecordCountInput{
			CountID:    countID,
			LineID:     lineID,
			CountedQty: body.CountedQty,
			ActorID:    actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, count)
	}
}

// CountRemoveLine drops a line from a draft count sheet.
func CountRemoveLine(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		countID, err := pathUUID(r, "countId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveLine(r.Context(), countID, lineID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CountSubmit locks the sheet once every line has been counted.
func CountSubmit(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return countTransition(svc, logg, func(ctx context.Context, countID, actorID uuid.UUID) (*countsvc.CountDTO, error) {
		return svc.Submit(ctx, countID, actorID)
	})
}

// CountPost sends a submitted count to the ERP.
func CountPost(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return countTransition(svc, logg, func(ctx context.Context, countID, actorID uuid.UUID) (*countsvc.CountDTO, error) {
		return svc.Post(ctx, countID, actorID)
	})
}

// CountCancel cancels a count sheet that has not been posted.
func CountCancel(svc countsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return countTransition(svc, logg, func(ctx context.Context, countID, actorID uuid.UUID) (*countsvc.CountDTO, error) {
		return svc.Cancel(ctx, countID, actorID)
	})
}

type createCountRequest struct {
	WarehouseID string  `json:"warehouse_id" validate:"required"`
	CountDate   *string `json:"count_date"`
	Remarks     *string `json:"remarks"`
}

type countLineRequest struct {
	ItemCode   string          `json:"item_code" validate:"required"`
	BinCode    *string         `json:"bin_code"`
	InStockQty decimal.Decimal `json:"in_stock_qty"`
}

type recordCountRequest struct {
	CountedQty decimal.Decimal `json:"counted_qty"`
}

func countTransition(svc countsvc.Service, logg *logger.Logger, run func(ctx context.Context, countID, actorID uuid.UUID) (*countsvc.CountDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "count service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		countID, err := pathUUID(r, "countId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := run(r.Context(), countID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, count)
	}
}
