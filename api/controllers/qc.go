package controllers

import (
	"net/http"

	"github.com/ofuentes/wms-bridge/api/responses"
	grposvc "github.com/ofuentes/wms-bridge/internal/grpo"
	transfersvc "github.com/ofuentes/wms-bridge/internal/transfers"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// QCPending lists every submitted document waiting on a QC decision,
// grouped by document type.
func QCPending(receipts grposvc.Service, transfers transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if receipts == nil || transfers == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qc services unavailable"))
			return
		}

		pendingReceipts, err := receipts.ListPendingQC(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pendingTransfers, err := transfers.ListPendingQC(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"goods_receipts": pendingReceipts,
			"transfers":      pendingTransfers,
		})
	}
}
