package controllers

import (
	"net/http"

	"github.com/ofuentes/wms-bridge/api/responses"
	dashsvc "github.com/ofuentes/wms-bridge/internal/dashboard"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// DashboardStats returns the landing-screen figures for the caller.
func DashboardStats(svc dashsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
