package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofuentes/wms-bridge/pkg/config"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

type fakeServiceLayer struct {
	t            *testing.T
	loginCount   int
	rejectNext   bool
	lastReceipt  *GoodsReceiptPayload
	lastTransfer *StockTransferPayload
}

func (f *fakeServiceLayer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/b1s/v1/Login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCount++
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if req.UserName != "manager" || req.CompanyDB != "SBODEMO" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(loginResponse{SessionID: "sess-1", SessionTimeout: 30})
	})

	mux.HandleFunc("/b1s/v1/PurchaseOrders(42)", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(PurchaseOrder{
			DocEntry: 42,
			DocNum:   1042,
			CardCode: "V0001",
			DocumentLines: []PurchaseOrderLine{
				{LineNum: 0, ItemCode: "ITM001", Quantity: decimal.NewFromInt(10), OpenQuantity: decimal.NewFromInt(4)},
			},
		})
	})

	mux.HandleFunc("/b1s/v1/PurchaseDeliveryNotes", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload GoodsReceiptPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.lastReceipt = &payload
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(DocumentResult{DocEntry: 501, DocNum: 9501})
	})

	mux.HandleFunc("/b1s/v1/StockTransfers", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload StockTransferPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.lastTransfer = &payload
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(DocumentResult{DocEntry: 601, DocNum: 9601})
	})

	mux.HandleFunc("/b1s/v1/PurchaseOrders(99)", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":-2028,"message":{"lang":"en-us","value":"No matching records found"}}}`))
	})

	return mux
}

func (f *fakeServiceLayer) authorized(r *http.Request) bool {
	if f.rejectNext {
		f.rejectNext = false
		return false
	}
	cookie, err := r.Cookie(sessionCookieName)
	return err == nil && cookie.Value == "sess-1"
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(context.Background(), config.ERPConfig{
		ServerURL: serverURL,
		Username:  "manager",
		Password:  "pw",
		CompanyDB: "SBODEMO",
		Timeout:   5 * time.Second,
	}, logg)
	require.NoError(t, err)
	return client
}

func TestClientLoginAndSessionReuse(t *testing.T) {
	fake := &fakeServiceLayer{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	po, err := client.GetPurchaseOrder(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1042, po.DocNum)
	require.Len(t, po.DocumentLines, 1)
	assert.True(t, po.DocumentLines[0].OpenQuantity.Equal(decimal.NewFromInt(4)))

	_, err = client.GetPurchaseOrder(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.loginCount, "session should be reused across calls")
}

func TestClientRetriesOnExpiredSession(t *testing.T) {
	fake := &fakeServiceLayer{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := client.GetPurchaseOrder(ctx, 42)
	require.NoError(t, err)

	fake.rejectNext = true
	_, err = client.GetPurchaseOrder(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.loginCount, "expected one re-login after 401")
}

func TestClientOfflineMode(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(context.Background(), config.ERPConfig{}, logg)
	require.NoError(t, err)
	assert.True(t, client.Offline())

	_, err = client.GetPurchaseOrder(context.Background(), 42)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestCreateGoodsReceiptPayload(t *testing.T) {
	fake := &fakeServiceLayer{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	result, err := client.CreateGoodsReceipt(context.Background(), GoodsReceiptPayload{
		CardCode:     "V0001",
		DocDate:      "2026-08-01",
		WMSReceiptID: "GRPO-000123",
		DocumentLines: []GoodsReceiptLine{
			{
				BaseType:      BaseTypePurchaseOrder,
				BaseEntry:     42,
				BaseLine:      0,
				ItemCode:      "ITM001",
				Quantity:      decimal.NewFromInt(4),
				WarehouseCode: "WH01",
				BatchNumbers: []BatchNumberEntry{
					{BatchNumber: "B-20260801", Quantity: decimal.NewFromInt(4)},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 501, result.DocEntry)

	require.NotNil(t, fake.lastReceipt)
	assert.Equal(t, "GRPO-000123", fake.lastReceipt.WMSReceiptID)
	require.Len(t, fake.lastReceipt.DocumentLines, 1)
	assert.Equal(t, BaseTypePurchaseOrder, fake.lastReceipt.DocumentLines[0].BaseType)
}

func TestCreateStockTransferRequestBased(t *testing.T) {
	fake := &fakeServiceLayer{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	baseEntry := 77
	baseLine := 0
	result, err := client.CreateStockTransfer(context.Background(), StockTransferPayload{
		DocDate:       "2026-08-01",
		FromWarehouse: "WH01",
		ToWarehouse:   "WH02",
		StockTransferLines: []StockTransferLine{
			{
				LineNum:           0,
				ItemCode:          "ITM001",
				Quantity:          decimal.NewFromInt(2),
				FromWarehouseCode: "WH01",
				WarehouseCode:     "WH02",
				BaseType:          BaseTypeTransferRequest,
				BaseEntry:         &baseEntry,
				BaseLine:          &baseLine,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 601, result.DocEntry)

	require.NotNil(t, fake.lastTransfer)
	line := fake.lastTransfer.StockTransferLines[0]
	assert.Equal(t, BaseTypeTransferRequest, line.BaseType)
	require.NotNil(t, line.BaseEntry)
	assert.Equal(t, 77, *line.BaseEntry)
}

func TestMapErrorExtractsServiceLayerMessage(t *testing.T) {
	fake := &fakeServiceLayer{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.GetPurchaseOrder(context.Background(), 99)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Contains(t, typed.Message(), "No matching records found")
}

func TestCreateGoodsReceiptRejectsEmptyLines(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")
	_, err := client.CreateGoodsReceipt(context.Background(), GoodsReceiptPayload{CardCode: "V0001"})
	require.Error(t, err)
}
