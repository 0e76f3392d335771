package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	picksvc "github.com/ofuentes/wms-bridge/internal/picklists"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// PickListList lists local pick lists, optionally filtered by status or
// by the caller's own assignments.
func PickListList(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		var input picksvc.ListInput
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParsePickListStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if r.URL.Query().Get("mine") == "true" {
			actorID, err := actorFromRequest(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.AssignedTo = &actorID
		}

		lists, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lists)
	}
}

// PickListDetail fetches one pick list with its lines.
func PickListDetail(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		pickListID, err := pathUUID(r, "pickListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Get(r.Context(), pickListID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PickListSyncOpen mirrors all open ERP pick lists on demand.
func PickListSyncOpen(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		lists, err := svc.SyncOpen(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lists)
	}
}

// PickListSync mirrors one ERP pick list by its AbsEntry.
func PickListSync(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		absEntry, err := strconv.Atoi(chi.URLParam(r, "absEntry"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid absEntry"))
			return
		}

		list, err := svc.Sync(r.Context(), absEntry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PickListAssign hands a pick list to a warehouse user.
func PickListAssign(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickListID, err := pathUUID(r, "pickListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignPickListRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Assign(r.Context(), picksvc.AssignInput{
			PickListID: pickListID,
			AssigneeID: body.AssigneeID,
			ActorID:    actorID,
			ActorRole:  roleFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PickListReportPick records picked quantity against one line.
func PickListReportPick(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickListID, err := pathUUID(r, "pickListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reportPickRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ReportPick(r.Context(), picksvc.ReportPickInput{
			PickListID: pickListID,
			LineID:     lineID,
			Quantity:   body.Quantity,
			BinCode:    body.BinCode,
			Batches:    body.Batches,
			ActorID:    actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PickListClose reports picked quantities upstream and closes the list.
func PickListClose(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return pickListTransition(svc, logg, func(ctx context.Context, pickListID, actorID uuid.UUID) (*picksvc.PickListDTO, error) {
		return svc.Close(ctx, pickListID, actorID)
	})
}

// PickListCancel cancels a list that has not been fully picked.
func PickListCancel(svc picksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return pickListTransition(svc, logg, func(ctx context.Context, pickListID, actorID uuid.UUID) (*picksvc.PickListDTO, error) {
		return svc.Cancel(ctx, pickListID, actorID)
	})
}

type assignPickListRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" validate:"required"`
}

type reportPickRequest struct {
	Quantity decimal.Decimal          `json:"quantity" validate:"required"`
	BinCode  *string                  `json:"bin_code"`
	Batches  []models.BatchAllocation `json:"batches"`
}

func pickListTransition(svc picksvc.Service, logg *logger.Logger, run func(ctx context.Context, pickListID, actorID uuid.UUID) (*picksvc.PickListDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick list service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pickListID, err := pathUUID(r, "pickListId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := run(r.Context(), pickListID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
