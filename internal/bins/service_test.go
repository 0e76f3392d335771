package bins

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

type stubRepo struct {
	scans []models.BinScanLog
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateScan(ctx context.Context, scan *models.BinScanLog) (*models.BinScanLog, error) {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	s.scans = append(s.scans, *scan)
	return scan, nil
}

func (s *stubRepo) ListScansByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.BinScanLog, error) {
	var out []models.BinScanLog
	for _, scan := range s.scans {
		if scan.UserID == userID {
			out = append(out, scan)
		}
	}
	return out, nil
}

type stubGateway struct {
	location *erp.BinLocation
	stock    []erp.BinStockItem
}

func (s *stubGateway) GetBinLocationByCode(ctx context.Context, binCode string) (*erp.BinLocation, error) {
	return s.location, nil
}

func (s *stubGateway) GetBinStock(ctx context.Context, binAbsEntry int) ([]erp.BinStockItem, error) {
	return s.stock, nil
}

func TestScanResolvedBinReturnsStock(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{
		location: &erp.BinLocation{AbsEntry: 12, BinCode: "WH01-A-01", Warehouse: "WH01"},
		stock: []erp.BinStockItem{
			{ItemCode: "ITM001", ItemName: "Widget", OnHandQty: decimal.NewFromInt(8)},
			{ItemCode: "ITM002", ItemName: "Gadget", OnHandQty: decimal.NewFromInt(3)},
		},
	}
	svc, err := NewService(repo, gateway)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actor := uuid.New()

	result, err := svc.Scan(context.Background(), ScanInput{BinCode: "WH01-A-01", ActorID: actor})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !result.Resolved {
		t.Fatal("expected resolved scan")
	}
	if result.WarehouseID == nil || *result.WarehouseID != "WH01" {
		t.Fatalf("warehouse not carried %+v", result)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(result.Items))
	}
	if len(repo.scans) != 1 || repo.scans[0].ItemCount != 2 || !repo.scans[0].Resolved {
		t.Fatalf("scan log malformed %+v", repo.scans)
	}
}

func TestScanUnknownBinIsLoggedUnresolved(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, &stubGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actor := uuid.New()

	result, err := svc.Scan(context.Background(), ScanInput{BinCode: "NOPE-99", ActorID: actor})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Resolved {
		t.Fatal("expected unresolved scan")
	}
	if len(result.Items) != 0 {
		t.Fatalf("unresolved scan should carry no items %+v", result)
	}
	if len(repo.scans) != 1 || repo.scans[0].Resolved {
		t.Fatalf("unresolved scan not logged %+v", repo.scans)
	}
}

func TestScanRequiresBinCode(t *testing.T) {
	svc, err := NewService(&stubRepo{}, &stubGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Scan(context.Background(), ScanInput{BinCode: "   ", ActorID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestHistoryFiltersByUser(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, &stubGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actor := uuid.New()
	other := uuid.New()
	ctx := context.Background()

	if _, err := svc.Scan(ctx, ScanInput{BinCode: "BIN-1", ActorID: actor}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := svc.Scan(ctx, ScanInput{BinCode: "BIN-2", ActorID: other}); err != nil {
		t.Fatalf("scan: %v", err)
	}

	history, err := svc.History(ctx, actor)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].BinCode != "BIN-1" {
		t.Fatalf("history not scoped to user %+v", history)
	}
}

func TestSyncBinUnknownIsNotFound(t *testing.T) {
	svc, err := NewService(&stubRepo{}, &stubGateway{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SyncBin(context.Background(), "NOPE-01", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestSyncBinRefreshesSnapshot(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{
		location: &erp.BinLocation{AbsEntry: 4, BinCode: "WH01-B-02", Warehouse: "WH01"},
		stock:    []erp.BinStockItem{{ItemCode: "ITM001", ItemName: "Widget", OnHandQty: decimal.NewFromInt(5)}},
	}
	svc, err := NewService(repo, gateway)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.SyncBin(context.Background(), "WH01-B-02", uuid.New())
	if err != nil {
		t.Fatalf("sync bin: %v", err)
	}
	if !result.Resolved || len(result.Items) != 1 {
		t.Fatalf("snapshot not refreshed %+v", result)
	}
	if len(repo.scans) != 1 {
		t.Fatalf("sync should log a scan row got %d", len(repo.scans))
	}
}
