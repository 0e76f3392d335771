package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/api/validators"
	binsvc "github.com/ofuentes/wms-bridge/internal/bins"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// BinScan resolves one scanned bin code against the ERP and logs it.
func BinScan(svc binsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body binScanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Scan(r.Context(), binsvc.ScanInput{
			BinCode:  body.BinCode,
			ActorID:  actorID,
			BranchID: branchFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// BinScanHistory returns the caller's recent scans.
func BinScanHistory(svc binsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scans, err := svc.History(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, scans)
	}
}

// BinSync force-refreshes the stock snapshot for one known bin.
func BinSync(svc binsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SyncBin(r.Context(), chi.URLParam(r, "binCode"), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type binScanRequest struct {
	BinCode string `json:"bin_code" validate:"required"`
}
