package controllers

import (
	"net/http"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	branchsvc "github.com/ofuentes/wms-bridge/internal/branches"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// BranchCreate registers one physical site.
func BranchCreate(svc branchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		var body createBranchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Create(r.Context(), branchsvc.CreateInput{
			Code:        body.Code,
			Name:        body.Name,
			WarehouseID: body.WarehouseID,
			Address:     body.Address,
			Default:     body.Default,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, branch)
	}
}

// BranchList lists branches; inactive ones only when requested.
func BranchList(svc branchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		includeInactive := r.URL.Query().Get("include_inactive") == "true"

		branches, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, branches)
	}
}

// BranchDetail fetches one branch.
func BranchDetail(svc branchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Get(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, branch)
	}
}

// BranchUpdate changes branch attributes; omitted fields are untouched.
func BranchUpdate(svc branchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateBranchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Update(r.Context(), branchsvc.UpdateInput{
			BranchID:    branchID,
			Name:        body.Name,
			WarehouseID: body.WarehouseID,
			Address:     body.Address,
			Active:      body.Active,
			Default:     body.Default,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, branch)
	}
}

// BranchDelete soft-deletes a branch.
func BranchDelete(svc branchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), branchID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createBranchRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	WarehouseID *string `json:"warehouse_id"`
	Address     *string `json:"address"`
	Default     bool    `json:"default"`
}

type updateBranchRequest struct {
	Name        *string `json:"name"`
	WarehouseID *string `json:"warehouse_id"`
	Address     *string `json:"address"`
	Active      *bool   `json:"active"`
	Default     *bool   `json:"default"`
}
