package controllers

import (
	"context"
	"net/http"

	"github.com/ofuentes/wms-bridge/api/responses"
	"github.com/ofuentes/wms-bridge/pkg/config"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type erpPinger interface {
	Ping(ctx context.Context) error
	Offline() bool
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WMS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status. The database is required;
// cache and ERP outages are surfaced but do not fail readiness because
// the API keeps serving drafts while the ERP is unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP pinger, cacheP pinger, erpP erpPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WMS-Env", cfg.App.Env)
		ctx := r.Context()

		components := map[string]string{
			"database": "ok",
			"cache":    "ok",
			"erp":      "ok",
		}

		if dbP == nil {
			components["database"] = "not configured"
		} else if err := dbP.Ping(ctx); err != nil {
			logg.Error(ctx, "health.database.unreachable", err)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}

		if cacheP == nil {
			components["cache"] = "not configured"
		} else if err := cacheP.Ping(ctx); err != nil {
			components["cache"] = "unreachable"
		}

		if erpP == nil || erpP.Offline() {
			components["erp"] = "offline"
		} else if err := erpP.Ping(ctx); err != nil {
			components["erp"] = "unreachable"
		}

		responses.WriteSuccess(w, map[string]any{
			"status":     "ready",
			"components": components,
		})
	}
}
