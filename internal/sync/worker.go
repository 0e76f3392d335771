package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ofuentes/wms-bridge/internal/picklists"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
	"github.com/ofuentes/wms-bridge/pkg/metrics"
)

const (
	lockName = "sync"

	jobWarehouses = "warehouses"
	jobBins       = "bins"
	jobPartners   = "partners"
	jobPickLists  = "picklists"

	warehousesCacheKey = "cache:warehouses"
	binsCacheKeyFmt    = "cache:bins:%s"
	partnersCacheKey   = "cache:partners"
)

type erpGateway interface {
	ListWarehouses(ctx context.Context) ([]erp.Warehouse, error)
	ListBinLocations(ctx context.Context, warehouseCode string) ([]erp.BinLocation, error)
	ListBusinessPartners(ctx context.Context) ([]erp.BusinessPartner, error)
}

type pickListSyncer interface {
	SyncOpen(ctx context.Context) ([]picklists.PickListDTO, error)
}

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type locker interface {
	AcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name string) error
}

// Worker refreshes cached ERP master data and mirrors open pick lists on a
// fixed interval. A Redis lock keeps concurrent replicas from double-running.
type Worker struct {
	erp     erpGateway
	picks   pickListSyncer
	cache   cacheStore
	locks   locker
	metrics *metrics.SyncJobMetrics
	logg    *logger.Logger
	cfg     config.SyncConfig
	holder  string
	now     func() time.Time
}

// NewWorker builds the sync worker with required dependencies.
func NewWorker(gateway erpGateway, picks pickListSyncer, cache cacheStore, locks locker, jobMetrics *metrics.SyncJobMetrics, logg *logger.Logger, cfg config.SyncConfig, holder string) (*Worker, error) {
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	if picks == nil {
		return nil, fmt.Errorf("pick list syncer required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if holder == "" {
		return nil, fmt.Errorf("lock holder identity required")
	}
	return &Worker{
		erp:     gateway,
		picks:   picks,
		cache:   cache,
		locks:   locks,
		metrics: jobMetrics,
		logg:    logg,
		cfg:     cfg,
		holder:  holder,
		now:     time.Now,
	}, nil
}

// Start runs sync cycles until the context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	interval := w.cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := w.RunOnce(ctx); err != nil {
		w.logg.Error(ctx, "sync.cycle.failed", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logg.Error(ctx, "sync.cycle.failed", err)
			}
		}
	}
}

// RunOnce executes a single sync cycle under the distributed lock. Job
// failures are aggregated so one broken feed does not stop the rest.
func (w *Worker) RunOnce(ctx context.Context) error {
	acquired, err := w.locks.AcquireLock(ctx, lockName, w.holder, w.cfg.LockTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sync lock")
	}
	if !acquired {
		w.logg.Info(ctx, "sync.lock.held_elsewhere")
		return nil
	}
	defer func() {
		if err := w.locks.ReleaseLock(ctx, lockName); err != nil {
			w.logg.Error(ctx, "sync.lock.release_failed", err)
		}
	}()

	var errs error
	warehouses := w.runWarehouses(ctx, &errs)
	w.runBins(ctx, warehouses, &errs)
	w.runPartners(ctx, &errs)
	w.runPickLists(ctx, &errs)
	return errs
}

func (w *Worker) runWarehouses(ctx context.Context, errs *error) []erp.Warehouse {
	start := w.now()
	warehouses, err := w.erp.ListWarehouses(ctx)
	w.metrics.ObserveDuration(jobWarehouses, w.now().Sub(start))
	if err != nil {
		w.metrics.IncFailure(jobWarehouses)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobWarehouses, err))
		return nil
	}
	if err := w.cacheJSON(ctx, warehousesCacheKey, warehouses); err != nil {
		w.metrics.IncFailure(jobWarehouses)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobWarehouses, err))
		return warehouses
	}
	w.metrics.IncSuccess(jobWarehouses)
	w.metrics.AddRows(jobWarehouses, len(warehouses))
	return warehouses
}

func (w *Worker) runBins(ctx context.Context, warehouses []erp.Warehouse, errs *error) {
	start := w.now()
	rows := 0
	var jobErr error
	for _, warehouse := range warehouses {
		if warehouse.EnableBinLocations != "tYES" {
			continue
		}
		bins, err := w.erp.ListBinLocations(ctx, warehouse.WarehouseCode)
		if err != nil {
			jobErr = multierr.Append(jobErr, fmt.Errorf("warehouse %s: %w", warehouse.WarehouseCode, err))
			continue
		}
		key := fmt.Sprintf(binsCacheKeyFmt, warehouse.WarehouseCode)
		if err := w.cacheJSON(ctx, key, bins); err != nil {
			jobErr = multierr.Append(jobErr, fmt.Errorf("warehouse %s: %w", warehouse.WarehouseCode, err))
			continue
		}
		rows += len(bins)
	}
	w.metrics.ObserveDuration(jobBins, w.now().Sub(start))
	if jobErr != nil {
		w.metrics.IncFailure(jobBins)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobBins, jobErr))
		return
	}
	w.metrics.IncSuccess(jobBins)
	w.metrics.AddRows(jobBins, rows)
}

func (w *Worker) runPartners(ctx context.Context, errs *error) {
	start := w.now()
	partners, err := w.erp.ListBusinessPartners(ctx)
	w.metrics.ObserveDuration(jobPartners, w.now().Sub(start))
	if err != nil {
		w.metrics.IncFailure(jobPartners)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobPartners, err))
		return
	}
	if err := w.cacheJSON(ctx, partnersCacheKey, partners); err != nil {
		w.metrics.IncFailure(jobPartners)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobPartners, err))
		return
	}
	w.metrics.IncSuccess(jobPartners)
	w.metrics.AddRows(jobPartners, len(partners))
}

func (w *Worker) runPickLists(ctx context.Context, errs *error) {
	start := w.now()
	lists, err := w.picks.SyncOpen(ctx)
	w.metrics.ObserveDuration(jobPickLists, w.now().Sub(start))
	if err != nil {
		w.metrics.IncFailure(jobPickLists)
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %w", jobPickLists, err))
		return
	}
	w.metrics.IncSuccess(jobPickLists)
	w.metrics.AddRows(jobPickLists, len(lists))
}

func (w *Worker) cacheJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ttl := w.cfg.Interval * 2
	if ttl <= 0 {
		ttl = time.Hour
	}
	return w.cache.Set(ctx, key, string(raw), ttl)
}
