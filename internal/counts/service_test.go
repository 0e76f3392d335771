package counts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

type stubRepo struct {
	count   *models.InventoryCount
	updates map[string]any
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, count *models.InventoryCount) (*models.InventoryCount, error) {
	if count.ID == uuid.Nil {
		count.ID = uuid.New()
	}
	s.count = count
	return count, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryCount, error) {
	if s.count == nil || s.count.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.count, nil
}

func (s *stubRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.InventoryCount, error) {
	if s.count != nil && s.count.CreatedBy == creatorID {
		return []models.InventoryCount{*s.count}, nil
	}
	return nil, nil
}

func (s *stubRepo) ListByStatus(ctx context.Context, status enums.CountStatus, limit int) ([]models.InventoryCount, error) {
	if s.count != nil && s.count.Status == status {
		return []models.InventoryCount{*s.count}, nil
	}
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[string]any{}
	}
	for k, v := range updates {
		s.updates[k] = v
	}
	return nil
}

func (s *stubRepo) CreateLine(ctx context.Context, line *models.InventoryCountLine) (*models.InventoryCountLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return line, nil
}

func (s *stubRepo) FindLine(ctx context.Context, lineID uuid.UUID) (*models.InventoryCountLine, error) {
	if s.count == nil {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range s.count.Lines {
		if s.count.Lines[i].ID == lineID {
			return &s.count.Lines[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubRepo) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	for i := range s.count.Lines {
		if s.count.Lines[i].ID == lineID {
			s.count.Lines = append(s.count.Lines[:i], s.count.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

type stubGateway struct {
	item       *erp.Item
	result     *erp.DocumentResult
	createErr  error
	lastCreate *erp.InventoryCountingPayload
}

func (s *stubGateway) GetItem(ctx context.Context, itemCode string) (*erp.Item, error) {
	return s.item, nil
}

func (s *stubGateway) CreateInventoryCounting(ctx context.Context, payload erp.InventoryCountingPayload) (*erp.DocumentResult, error) {
	s.lastCreate = &payload
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.result, nil
}

type stubAllocator struct{ next string }

func (s stubAllocator) Allocate(ctx context.Context, tx *gorm.DB, branchID *uuid.UUID, docType string) (string, error) {
	return s.next, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(repo *stubRepo, gateway *stubGateway) Service {
	svc, err := NewService(repo, stubTxRunner{}, gateway, stubAllocator{next: "CNT-000001"})
	if err != nil {
		panic(err)
	}
	return svc
}

func draftCount(t *testing.T, svc Service, actor uuid.UUID) *CountDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), CreateInput{
		WarehouseID: "WH01",
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("create count: %v", err)
	}
	return dto
}

func TestCreateAllocatesNumberFromSeries(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, &stubGateway{})

	dto := draftCount(t, svc, uuid.New())
	if dto.DocNumber != "CNT-000001" {
		t.Fatalf("expected allocated number got %q", dto.DocNumber)
	}
	if dto.Status != enums.CountStatusDraft {
		t.Fatalf("expected draft got %s", dto.Status)
	}
}

func TestAddLineCopiesItemMasterData(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{item: &erp.Item{ItemCode: "ITM001", ItemName: "Widget"}}
	svc := newTestService(repo, gateway)
	actor := uuid.New()
	count := draftCount(t, svc, actor)

	dto, err := svc.AddLine(context.Background(), AddLineInput{
		CountID:    count.ID,
		ItemCode:   "ITM001",
		InStockQty: decimal.NewFromInt(12),
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].ItemName != "Widget" {
		t.Fatalf("item master data not copied %+v", dto.Lines)
	}
	if !dto.Lines[0].Variance.Equal(decimal.NewFromInt(-12)) {
		t.Fatalf("uncounted line should show full negative variance got %s", dto.Lines[0].Variance)
	}
}

func TestRecordCountComputesVariance(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{item: &erp.Item{ItemCode: "ITM001", ItemName: "Widget"}}
	svc := newTestService(repo, gateway)
	actor := uuid.New()
	count := draftCount(t, svc, actor)
	ctx := context.Background()

	dto, err := svc.AddLine(ctx, AddLineInput{
		CountID:    count.ID,
		ItemCode:   "ITM001",
		InStockQty: decimal.NewFromInt(12),
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	dto, err = svc.RecordCount(ctx, RecordCountInput{
		CountID:    count.ID,
		LineID:     dto.Lines[0].ID,
		CountedQty: decimal.NewFromInt(10),
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("record count: %v", err)
	}
	if !dto.Lines[0].Variance.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("expected variance -2 got %s", dto.Lines[0].Variance)
	}
	if dto.Lines[0].CountedBy == nil || *dto.Lines[0].CountedBy != actor {
		t.Fatalf("counter not recorded %+v", dto.Lines[0])
	}
}

func TestSubmitRequiresEveryLineCounted(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{item: &erp.Item{ItemCode: "ITM001", ItemName: "Widget"}}
	svc := newTestService(repo, gateway)
	actor := uuid.New()
	count := draftCount(t, svc, actor)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, AddLineInput{
		CountID:    count.ID,
		ItemCode:   "ITM001",
		InStockQty: decimal.NewFromInt(12),
		ActorID:    actor,
	}); err != nil {
		t.Fatalf("add line: %v", err)
	}

	_, err := svc.Submit(ctx, count.ID, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestPostFromDraftIsStateConflict(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, &stubGateway{})
	actor := uuid.New()
	count := draftCount(t, svc, actor)

	_, err := svc.Post(context.Background(), count.ID, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestPostSubmittedCountBuildsPayload(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{
		item:   &erp.Item{ItemCode: "ITM001", ItemName: "Widget"},
		result: &erp.DocumentResult{DocEntry: 510, DocNum: 9510},
	}
	svc := newTestService(repo, gateway)
	actor := uuid.New()
	count := draftCount(t, svc, actor)
	ctx := context.Background()

	dto, err := svc.AddLine(ctx, AddLineInput{
		CountID:    count.ID,
		ItemCode:   "ITM001",
		InStockQty: decimal.NewFromInt(12),
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := svc.RecordCount(ctx, RecordCountInput{
		CountID:    count.ID,
		LineID:     dto.Lines[0].ID,
		CountedQty: decimal.NewFromInt(10),
		ActorID:    actor,
	}); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := svc.Submit(ctx, count.ID, actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	posted, err := svc.Post(ctx, count.ID, actor)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.Status != enums.CountStatusPosted {
		t.Fatalf("expected posted got %s", posted.Status)
	}
	if posted.ERPDocEntry == nil || *posted.ERPDocEntry != 510 {
		t.Fatalf("erp doc entry not recorded %+v", posted)
	}

	if gateway.lastCreate == nil {
		t.Fatal("expected erp create call")
	}
	line := gateway.lastCreate.InventoryCountingLines[0]
	if line.WarehouseCode != "WH01" || line.Counted != "tYES" {
		t.Fatalf("counting line malformed %+v", line)
	}
	if !line.CountedQuantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("counted quantity not carried %+v", line)
	}
}

func TestPostFailureLeavesSubmitted(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{
		item:      &erp.Item{ItemCode: "ITM001", ItemName: "Widget"},
		createErr: pkgerrors.New(pkgerrors.CodeDependency, "erp unavailable"),
	}
	svc := newTestService(repo, gateway)
	actor := uuid.New()
	count := draftCount(t, svc, actor)
	ctx := context.Background()

	dto, err := svc.AddLine(ctx, AddLineInput{
		CountID:    count.ID,
		ItemCode:   "ITM001",
		InStockQty: decimal.NewFromInt(12),
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := svc.RecordCount(ctx, RecordCountInput{
		CountID:    count.ID,
		LineID:     dto.Lines[0].ID,
		CountedQty: decimal.NewFromInt(10),
		ActorID:    actor,
	}); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := svc.Submit(ctx, count.ID, actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = svc.Post(ctx, count.ID, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
	if repo.count.Status != enums.CountStatusSubmitted {
		t.Fatalf("status should remain submitted got %s", repo.count.Status)
	}
}

func TestCancelPostedIsStateConflict(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, &stubGateway{})
	actor := uuid.New()
	count := draftCount(t, svc, actor)
	repo.count.Status = enums.CountStatusPosted

	_, err := svc.Cancel(context.Background(), count.ID, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}
