package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/ofuentes/wms-bridge/internal/picklists"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	"github.com/ofuentes/wms-bridge/pkg/logger"
	"github.com/ofuentes/wms-bridge/pkg/metrics"
)

type stubGateway struct {
	warehouses    []erp.Warehouse
	warehousesErr error
	bins          map[string][]erp.BinLocation
	partners      []erp.BusinessPartner
	partnersErr   error
	binCalls      []string
}

func (s *stubGateway) ListWarehouses(ctx context.Context) ([]erp.Warehouse, error) {
	return s.warehouses, s.warehousesErr
}

func (s *stubGateway) ListBinLocations(ctx context.Context, warehouseCode string) ([]erp.BinLocation, error) {
	s.binCalls = append(s.binCalls, warehouseCode)
	return s.bins[warehouseCode], nil
}

func (s *stubGateway) ListBusinessPartners(ctx context.Context) ([]erp.BusinessPartner, error) {
	return s.partners, s.partnersErr
}

type stubPicks struct {
	lists []picklists.PickListDTO
	err   error
	calls int
}

func (s *stubPicks) SyncOpen(ctx context.Context) ([]picklists.PickListDTO, error) {
	s.calls++
	return s.lists, s.err
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

type fakeLocks struct {
	held     bool
	acquired int
	released int
}

func (f *fakeLocks) AcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	f.acquired++
	return !f.held, nil
}

func (f *fakeLocks) ReleaseLock(ctx context.Context, name string) error {
	f.released++
	return nil
}

func newTestWorker(t *testing.T, gateway *stubGateway, picks *stubPicks, cache *fakeCache, locks *fakeLocks) *Worker {
	t.Helper()
	worker, err := NewWorker(
		gateway,
		picks,
		cache,
		locks,
		metrics.NewSyncJobMetrics(nil),
		logger.New(logger.Options{ServiceName: "test"}),
		config.SyncConfig{Interval: time.Minute, LockTTL: time.Minute},
		"worker-1",
	)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	return worker
}

func TestRunOnceCachesMasterData(t *testing.T) {
	gateway := &stubGateway{
		warehouses: []erp.Warehouse{
			{WarehouseCode: "WH01", EnableBinLocations: "tYES"},
			{WarehouseCode: "WH02", EnableBinLocations: "tNO"},
		},
		bins: map[string][]erp.BinLocation{
			"WH01": {{AbsEntry: 1, BinCode: "WH01-A-01", Warehouse: "WH01"}},
		},
		partners: []erp.BusinessPartner{{CardCode: "V001", CardName: "Supplier"}},
	}
	picks := &stubPicks{}
	cache := newFakeCache()
	locks := &fakeLocks{}
	worker := newTestWorker(t, gateway, picks, cache, locks)

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if cache.values[warehousesCacheKey] == "" {
		t.Fatal("warehouses not cached")
	}
	if cache.values[fmt.Sprintf(binsCacheKeyFmt, "WH01")] == "" {
		t.Fatal("bins not cached")
	}
	if cache.values[partnersCacheKey] == "" {
		t.Fatal("partners not cached")
	}
	if len(gateway.binCalls) != 1 || gateway.binCalls[0] != "WH01" {
		t.Fatalf("bin sync should skip non-bin warehouses got %v", gateway.binCalls)
	}
	if picks.calls != 1 {
		t.Fatalf("pick list sync not run")
	}
	if locks.released != 1 {
		t.Fatalf("lock not released")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	gateway := &stubGateway{}
	picks := &stubPicks{}
	locks := &fakeLocks{held: true}
	worker := newTestWorker(t, gateway, picks, newFakeCache(), locks)

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if picks.calls != 0 {
		t.Fatal("jobs should not run without the lock")
	}
	if locks.released != 0 {
		t.Fatal("lock should not be released when never held")
	}
}

func TestRunOnceAggregatesJobFailures(t *testing.T) {
	gateway := &stubGateway{
		warehousesErr: fmt.Errorf("warehouses down"),
		partnersErr:   fmt.Errorf("partners down"),
	}
	picks := &stubPicks{}
	worker := newTestWorker(t, gateway, picks, newFakeCache(), &fakeLocks{})

	err := worker.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(multierr.Errors(err)) != 2 {
		t.Fatalf("expected 2 job failures got %v", err)
	}
	if picks.calls != 1 {
		t.Fatal("pick list sync should still run after other failures")
	}
}
