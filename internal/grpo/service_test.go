package grpo

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

type stubRepo struct {
	receipt           *models.GoodsReceipt
	received          decimal.Decimal
	updates           map[string]any
	lines             map[uuid.UUID]*models.GoodsReceiptLine
	created           []*models.GoodsReceiptLine
	lineUpdates       map[string]any
	lineStatusUpdates map[string]any
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, receipt *models.GoodsReceipt) (*models.GoodsReceipt, error) {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	s.receipt = receipt
	return receipt, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error) {
	if s.receipt == nil || s.receipt.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.receipt, nil
}

func (s *stubRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.GoodsReceipt, error) {
	if s.receipt != nil && s.receipt.CreatedBy == creatorID {
		return []models.GoodsReceipt{*s.receipt}, nil
	}
	return nil, nil
}

func (s *stubRepo) ListByStatus(ctx context.Context, status enums.GRPOStatus, limit int) ([]models.GoodsReceipt, error) {
	if s.receipt != nil && s.receipt.Status == status {
		return []models.GoodsReceipt{*s.receipt}, nil
	}
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubRepo) CreateLine(ctx context.Context, line *models.GoodsReceiptLine) (*models.GoodsReceiptLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if s.lines == nil {
		s.lines = map[uuid.UUID]*models.GoodsReceiptLine{}
	}
	s.lines[line.ID] = line
	s.created = append(s.created, line)
	return line, nil
}

func (s *stubRepo) FindLine(ctx context.Context, lineID uuid.UUID) (*models.GoodsReceiptLine, error) {
	if line, ok := s.lines[lineID]; ok {
		return line, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	s.lineUpdates = updates
	return nil
}

func (s *stubRepo) UpdateLinesByReceipt(ctx context.Context, receiptID uuid.UUID, updates map[string]any) error {
	s.lineStatusUpdates = updates
	return nil
}

func (s *stubRepo) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	delete(s.lines, lineID)
	return nil
}

func (s *stubRepo) SumReceivedForPOLine(ctx context.Context, poEntry, baseLine int) (decimal.Decimal, error) {
	return s.received, nil
}

type stubGateway struct {
	po         *erp.PurchaseOrder
	poErr      error
	result     *erp.DocumentResult
	createErr  error
	lastCreate *erp.GoodsReceiptPayload
}

func (s *stubGateway) GetPurchaseOrder(ctx context.Context, docEntry int) (*erp.PurchaseOrder, error) {
	if s.poErr != nil {
		return nil, s.poErr
	}
	return s.po, nil
}

func (s *stubGateway) CreateGoodsReceipt(ctx context.Context, payload erp.GoodsReceiptPayload) (*erp.DocumentResult, error) {
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

func openPO() *erp.PurchaseOrder {
	return &erp.PurchaseOrder{
		DocEntry: 42,
		DocNum:   1042,
		CardCode: "V001",
		CardName: "Acme Supply",
		DocumentLines: []erp.PurchaseOrderLine{
			{
				LineNum:       0,
				ItemCode:      "ITM001",
				Quantity:      decimal.NewFromInt(10),
				OpenQuantity:  decimal.NewFromInt(6),
				WarehouseCode: "WH01",
				LineStatus:    "bost_Open",
			},
		},
	}
}

func draftReceipt(creator uuid.UUID) *models.GoodsReceipt {
	return &models.GoodsReceipt{
		ID:        uuid.New(),
		DocNumber: "GRPO-000001",
		POEntry:   42,
		PONumber:  "1042",
		CardCode:  "V001",
		Status:    enums.GRPOStatusDraft,
		CreatedBy: creator,
	}
}

func TestCreateAllocatesNumberFromSeries(t *testing.T) {
	repo := &stubRepo{}
	gateway := &stubGateway{po: openPO()}
	svc, err := NewService(repo, stubTxRunner{}, gateway, stubAllocator{next: "GRPO-000007"})
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), CreateInput{POEntry: 42, ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "GRPO-000007", dto.DocNumber)
	assert.Equal(t, "V001", dto.CardCode)
	assert.Equal(t, "1042", dto.PONumber)
	assert.Equal(t, enums.GRPOStatusDraft, dto.Status)
}

func TestCreateRejectsClosedPurchaseOrder(t *testing.T) {
	po := openPO()
	po.DocumentLines[0].OpenQuantity = decimal.Zero
	repo := &stubRepo{}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: po}, stubAllocator{})

	_, err := svc.Create(context.Background(), CreateInput{POEntry: 42, ActorID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAddLineRejectsOverOpenQuantity(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{receipt: draftReceipt(actor)}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: repo.receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(7),
		ActorID:   actor,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeQuantityExceeded, typed.Code())
}

func TestAddLineRejectsCumulativeOverOrdered(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{
		receipt:  draftReceipt(actor),
		received: decimal.NewFromInt(8),
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: repo.receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(3),
		ActorID:   actor,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeQuantityExceeded, typed.Code())
	assert.Empty(t, repo.created)
}

func TestAddLineWithinLimits(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{
		receipt:  draftReceipt(actor),
		received: decimal.NewFromInt(4),
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	dto, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: repo.receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(5),
		ActorID:   actor,
	})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, "ITM001", dto.Lines[0].ItemCode)
	assert.Equal(t, "WH01", dto.Lines[0].WarehouseID)
	assert.Equal(t, enums.LineQCStatusPending, dto.Lines[0].QCStatus)
}

func TestAddLineGeneratesBarcode(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{receipt: draftReceipt(actor)}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	dto, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: repo.receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(2),
		ActorID:   actor,
	})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	require.NotNil(t, dto.Lines[0].Barcode)
	assert.True(t, strings.HasPrefix(*dto.Lines[0].Barcode, "WMS-ITM001-"))
	assert.Len(t, *dto.Lines[0].Barcode, len("WMS-ITM001-")+8)
}

func TestAddLineKeepsSuppliedBarcode(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{receipt: draftReceipt(actor)}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	scanned := "SUP-ITM001-0001"
	dto, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: repo.receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(2),
		Barcode:   &scanned,
		ActorID:   actor,
	})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	require.NotNil(t, dto.Lines[0].Barcode)
	assert.Equal(t, scanned, *dto.Lines[0].Barcode)
}

func TestAddLineRejectedWhenNotDraft(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusSubmitted
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.AddLine(context.Background(), AddLineInput{
		ReceiptID: receipt.ID,
		BaseLine:  0,
		Quantity:  decimal.NewFromInt(1),
		ActorID:   actor,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateLineAppliesOptionalFields(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	line := &models.GoodsReceiptLine{
		ID:          uuid.New(),
		ReceiptID:   receipt.ID,
		BaseLine:    0,
		ItemCode:    "ITM001",
		Quantity:    decimal.NewFromInt(2),
		WarehouseID: "WH01",
	}
	receipt.Lines = []models.GoodsReceiptLine{*line}
	repo := &stubRepo{
		receipt:  receipt,
		received: decimal.NewFromInt(2),
		lines:    map[uuid.UUID]*models.GoodsReceiptLine{line.ID: line},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	bin := "BIN-A1"
	barcode := "SUP-ITM001-0002"
	dto, err := svc.UpdateLine(context.Background(), UpdateLineInput{
		ReceiptID: receipt.ID,
		LineID:    line.ID,
		Quantity:  decimal.NewFromInt(4),
		BinCode:   &bin,
		Barcode:   &barcode,
		Batches:   []models.BatchAllocation{{BatchNumber: "B-7", Quantity: decimal.NewFromInt(4)}},
		ActorID:   actor,
	})
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.True(t, dto.Lines[0].Quantity.Equal(decimal.NewFromInt(4)))
	require.NotNil(t, dto.Lines[0].BinCode)
	assert.Equal(t, bin, *dto.Lines[0].BinCode)
	require.NotNil(t, dto.Lines[0].Barcode)
	assert.Equal(t, barcode, *dto.Lines[0].Barcode)
	require.Len(t, dto.Lines[0].Batches, 1)

	require.NotNil(t, repo.lineUpdates)
	assert.Contains(t, repo.lineUpdates, "bin_code")
	assert.Contains(t, repo.lineUpdates, "barcode")
	assert.Contains(t, repo.lineUpdates, "batches")
	assert.NotContains(t, repo.lineUpdates, "serials")
}

func TestSubmitRequiresLines(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{receipt: draftReceipt(actor)}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.Submit(context.Background(), repo.receipt.ID, actor)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestApproveFromDraftIsStateConflict(t *testing.T) {
	actor := uuid.New()
	repo := &stubRepo{receipt: draftReceipt(actor)}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.Approve(context.Background(), QCInput{ReceiptID: repo.receipt.ID, ActorID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestApproveStampsLineStatuses(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusSubmitted
	receipt.Lines = []models.GoodsReceiptLine{
		{ID: uuid.New(), ReceiptID: receipt.ID, ItemCode: "ITM001", Quantity: decimal.NewFromInt(2), QCStatus: enums.LineQCStatusPending},
		{ID: uuid.New(), ReceiptID: receipt.ID, ItemCode: "ITM002", Quantity: decimal.NewFromInt(1), QCStatus: enums.LineQCStatusPending},
	}
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	dto, err := svc.Approve(context.Background(), QCInput{ReceiptID: receipt.ID, ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, enums.GRPOStatusApproved, dto.Status)
	require.Len(t, dto.Lines, 2)
	for _, line := range dto.Lines {
		assert.Equal(t, enums.LineQCStatusApproved, line.QCStatus)
	}
	require.NotNil(t, repo.lineStatusUpdates)
	assert.Equal(t, enums.LineQCStatusApproved, repo.lineStatusUpdates["qc_status"])
}

func TestRejectRequiresNotes(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusSubmitted
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.Reject(context.Background(), QCInput{ReceiptID: receipt.ID, ActorID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRejectStampsLineStatuses(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusSubmitted
	receipt.Lines = []models.GoodsReceiptLine{
		{ID: uuid.New(), ReceiptID: receipt.ID, ItemCode: "ITM001", Quantity: decimal.NewFromInt(2), QCStatus: enums.LineQCStatusPending},
	}
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	notes := "damaged packaging"
	dto, err := svc.Reject(context.Background(), QCInput{ReceiptID: receipt.ID, ActorID: uuid.New(), Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.GRPOStatusRejected, dto.Status)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, enums.LineQCStatusRejected, dto.Lines[0].QCStatus)
}

func TestReopenRejectedReceipt(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusRejected
	receipt.Lines = []models.GoodsReceiptLine{
		{ID: uuid.New(), ReceiptID: receipt.ID, ItemCode: "ITM001", Quantity: decimal.NewFromInt(2), QCStatus: enums.LineQCStatusRejected},
	}
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	dto, err := svc.Reopen(context.Background(), ReopenInput{ReceiptID: receipt.ID, ActorID: actor, ActorRole: enums.UserRoleUser})
	require.NoError(t, err)
	assert.Equal(t, enums.GRPOStatusDraft, dto.Status)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, enums.LineQCStatusPending, dto.Lines[0].QCStatus)
}

func TestReopenForbiddenForOtherUser(t *testing.T) {
	creator := uuid.New()
	receipt := draftReceipt(creator)
	receipt.Status = enums.GRPOStatusRejected
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	_, err := svc.Reopen(context.Background(), ReopenInput{ReceiptID: receipt.ID, ActorID: uuid.New(), ActorRole: enums.UserRoleUser})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestReopenAllowedForManager(t *testing.T) {
	creator := uuid.New()
	receipt := draftReceipt(creator)
	receipt.Status = enums.GRPOStatusRejected
	repo := &stubRepo{receipt: receipt}
	svc, _ := NewService(repo, stubTxRunner{}, &stubGateway{po: openPO()}, stubAllocator{})

	dto, err := svc.Reopen(context.Background(), ReopenInput{ReceiptID: receipt.ID, ActorID: uuid.New(), ActorRole: enums.UserRoleManager})
	require.NoError(t, err)
	assert.Equal(t, enums.GRPOStatusDraft, dto.Status)
}

func TestPostBuildsPayloadAndRecordsResult(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusApproved
	batchExpiry := "2027-01-31"
	receipt.Lines = []models.GoodsReceiptLine{
		{
			ID:          uuid.New(),
			ReceiptID:   receipt.ID,
			BaseLine:    0,
			ItemCode:    "ITM001",
			Quantity:    decimal.NewFromInt(5),
			WarehouseID: "WH01",
			Batches: []models.BatchAllocation{
				{BatchNumber: "B-100", Quantity: decimal.NewFromInt(5), ExpiryDate: &batchExpiry},
			},
		},
	}
	repo := &stubRepo{receipt: receipt}
	gateway := &stubGateway{po: openPO(), result: &erp.DocumentResult{DocEntry: 900, DocNum: 9001}}
	svc, _ := NewService(repo, stubTxRunner{}, gateway, stubAllocator{})

	dto, err := svc.Post(context.Background(), receipt.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, enums.GRPOStatusPosted, dto.Status)
	require.NotNil(t, dto.ERPDocNum)
	assert.Equal(t, 9001, *dto.ERPDocNum)
	require.NotNil(t, gateway.lastCreate)
	assert.Equal(t, receipt.DocNumber, gateway.lastCreate.WMSReceiptID)

	line := gateway.lastCreate.DocumentLines[0]
	assert.Equal(t, erp.BaseTypePurchaseOrder, line.BaseType)
	assert.Equal(t, 42, line.BaseEntry)
	assert.Equal(t, 0, line.BaseLine)
	require.Len(t, line.BatchNumbers, 1)
	assert.Equal(t, "B-100", line.BatchNumbers[0].BatchNumber)
}

func TestPostFailureLeavesStatus(t *testing.T) {
	actor := uuid.New()
	receipt := draftReceipt(actor)
	receipt.Status = enums.GRPOStatusApproved
	receipt.Lines = []models.GoodsReceiptLine{
		{ID: uuid.New(), ReceiptID: receipt.ID, ItemCode: "ITM001", Quantity: decimal.NewFromInt(1), WarehouseID: "WH01"},
	}
	repo := &stubRepo{receipt: receipt}
	gateway := &stubGateway{
		po:        openPO(),
		createErr: pkgerrors.New(pkgerrors.CodeDependency, "erp unavailable"),
	}
	svc, _ := NewService(repo, stubTxRunner{}, gateway, stubAllocator{})

	_, err := svc.Post(context.Background(), receipt.ID, actor)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, enums.GRPOStatusApproved, receipt.Status)
	require.NotNil(t, repo.updates)
	assert.NotNil(t, repo.updates["posting_error"])
}
