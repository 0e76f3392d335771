package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ofuentes/wms-bridge/api/responses"
	lookupsvc "github.com/ofuentes/wms-bridge/internal/lookup"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

// LookupWarehouses lists ERP warehouses.
func LookupWarehouses(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		warehouses, err := svc.Warehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, warehouses)
	}
}

// LookupBins lists bin locations for one warehouse.
func LookupBins(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		bins, err := svc.Bins(r.Context(), chi.URLParam(r, "warehouseCode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bins)
	}
}

// LookupSuppliers lists ERP supplier business partners.
func LookupSuppliers(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		suppliers, err := svc.Suppliers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suppliers)
	}
}

// LookupItem fetches one item master record.
func LookupItem(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		item, err := svc.Item(r.Context(), chi.URLParam(r, "itemCode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if item == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// LookupBatches lists batch numbers for an item, optionally scoped to a
// warehouse via the warehouse query parameter.
func LookupBatches(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		itemCode := chi.URLParam(r, "itemCode")
		warehouseCode := r.URL.Query().Get("warehouse")

		batches, err := svc.Batches(r.Context(), itemCode, warehouseCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, batches)
	}
}

// LookupPurchaseOrder fetches one purchase order by DocEntry.
func LookupPurchaseOrder(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		docEntry, err := strconv.Atoi(chi.URLParam(r, "docEntry"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid docEntry"))
			return
		}

		po, err := svc.PurchaseOrder(r.Context(), docEntry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if po == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found"))
			return
		}

		responses.WriteSuccess(w, po)
	}
}

// LookupOpenPurchaseOrders lists open purchase orders, optionally scoped
// to one supplier via the supplier query parameter.
func LookupOpenPurchaseOrders(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		orders, err := svc.OpenPurchaseOrders(r.Context(), r.URL.Query().Get("supplier"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// LookupTransferRequest fetches one inventory transfer request by DocEntry.
func LookupTransferRequest(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		docEntry, err := strconv.Atoi(chi.URLParam(r, "docEntry"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid docEntry"))
			return
		}

		request, err := svc.TransferRequest(r.Context(), docEntry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if request == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "transfer request not found"))
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// LookupOpenTransferRequests lists open transfer requests, optionally
// scoped to one source warehouse via the warehouse query parameter.
func LookupOpenTransferRequests(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		requests, err := svc.OpenTransferRequests(r.Context(), r.URL.Query().Get("warehouse"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requests)
	}
}
