package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

const (
	cacheTTL = 15 * time.Minute

	warehousesCacheKey = "cache:warehouses"
	binsCacheKeyFmt    = "cache:bins:%s"
	partnersCacheKey   = "cache:partners"
)

// Service proxies ERP master-data reads, caching the slow-moving sets.
type Service interface {
	Warehouses(ctx context.Context) ([]erp.Warehouse, error)
	Bins(ctx context.Context, warehouseCode string) ([]erp.BinLocation, error)
	Suppliers(ctx context.Context) ([]erp.BusinessPartner, error)
	Item(ctx context.Context, itemCode string) (*erp.Item, error)
	Batches(ctx context.Context, itemCode, warehouseCode string) ([]erp.BatchNumberDetail, error)
	PurchaseOrder(ctx context.Context, docEntry int) (*erp.PurchaseOrder, error)
	OpenPurchaseOrders(ctx context.Context, cardCode string) ([]erp.PurchaseOrder, error)
	TransferRequest(ctx context.Context, docEntry int) (*erp.TransferRequest, error)
	OpenTransferRequests(ctx context.Context, fromWarehouse string) ([]erp.TransferRequest, error)
}

type erpGateway interface {
	ListWarehouses(ctx context.Context) ([]erp.Warehouse, error)
	ListBinLocations(ctx context.Context, warehouseCode string) ([]erp.BinLocation, error)
	ListBusinessPartners(ctx context.Context) ([]erp.BusinessPartner, error)
	GetItem(ctx context.Context, itemCode string) (*erp.Item, error)
	GetBatchNumbers(ctx context.Context, itemCode, warehouseCode string) ([]erp.BatchNumberDetail, error)
	GetPurchaseOrder(ctx context.Context, docEntry int) (*erp.PurchaseOrder, error)
	ListOpenPurchaseOrders(ctx context.Context, cardCode string) ([]erp.PurchaseOrder, error)
	GetTransferRequest(ctx context.Context, docEntry int) (*erp.TransferRequest, error)
	ListOpenTransferRequests(ctx context.Context, fromWarehouse string) ([]erp.TransferRequest, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type service struct {
	erp   erpGateway
	cache cacheStore
	logg  *logger.Logger
}

// NewService builds the lookup service. The cache is optional; when nil
// every call goes straight to the ERP.
func NewService(gateway erpGateway, cache cacheStore, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{erp: gateway, cache: cache, logg: logg}, nil
}

func (s *service) Warehouses(ctx context.Context) ([]erp.Warehouse, error) {
	return cached(ctx, s, warehousesCacheKey, func() ([]erp.Warehouse, error) {
		return s.erp.ListWarehouses(ctx)
	})
}

func (s *service) Bins(ctx context.Context, warehouseCode string) ([]erp.BinLocation, error) {
	if warehouseCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse code required")
	}
	key := fmt.Sprintf(binsCacheKeyFmt, warehouseCode)
	return cached(ctx, s, key, func() ([]erp.BinLocation, error) {
		return s.erp.ListBinLocations(ctx, warehouseCode)
	})
}

func (s *service) Suppliers(ctx context.Context) ([]erp.BusinessPartner, error) {
	return cached(ctx, s, partnersCacheKey, func() ([]erp.BusinessPartner, error) {
		return s.erp.ListBusinessPartners(ctx)
	})
}

func (s *service) Item(ctx context.Context, itemCode string) (*erp.Item, error) {
	if itemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}
	return s.erp.GetItem(ctx, itemCode)
}

func (s *service) Batches(ctx context.Context, itemCode, warehouseCode string) ([]erp.BatchNumberDetail, error) {
	if itemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}
	return s.erp.GetBatchNumbers(ctx, itemCode, warehouseCode)
}

func (s *service) PurchaseOrder(ctx context.Context, docEntry int) (*erp.PurchaseOrder, error) {
	return s.erp.GetPurchaseOrder(ctx, docEntry)
}

func (s *service) OpenPurchaseOrders(ctx context.Context, cardCode string) ([]erp.PurchaseOrder, error) {
	return s.erp.ListOpenPurchaseOrders(ctx, cardCode)
}

func (s *service) TransferRequest(ctx context.Context, docEntry int) (*erp.TransferRequest, error) {
	return s.erp.GetTransferRequest(ctx, docEntry)
}

func (s *service) OpenTransferRequests(ctx context.Context, fromWarehouse string) ([]erp.TransferRequest, error) {
	return s.erp.ListOpenTransferRequests(ctx, fromWarehouse)
}

// cached wraps a fetch with a read-through JSON cache. Cache failures are
// logged and the ERP result is returned regardless.
func cached[T any](ctx context.Context, s *service, key string, fetch func() ([]T, error)) ([]T, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var out []T
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
				warnCtx := s.logg.WithFields(ctx, map[string]any{
					"key":   key,
					"error": err.Error(),
				})
				s.logg.Warn(warnCtx, "lookup.cache.write_failed")
			}
		}
	}
	return out, nil
}
