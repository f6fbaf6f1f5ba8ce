package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/clock"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/catalog"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/pos/internal/service/ordernum"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

type apiTestEnv struct {
	router   *gin.Engine
	products domain.ProductRepository
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	products := memory.NewProductRepository()
	stock := ledger.NewLedgerWithoutMetrics(products, nil)
	manager := lifecycle.NewManagerWithoutMetrics(
		memory.NewOrderRepository(),
		memory.NewStatusHistoryRepository(),
		stock,
		ordernum.NewAllocator(memory.NewCounterRepository()),
		catalog.NewService(products),
		clock.NewFixed(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)),
		nil,
	)

	return &apiTestEnv{
		router:   NewRouter(NewHandler(manager, stock, nil)),
		products: products,
	}
}

func (e *apiTestEnv) seedProduct(t *testing.T, id string, qty int32, priceMinor int64, threshold int32) {
	t.Helper()

	err := e.products.Create(context.Background(), domain.Product{
		ID:                id,
		SKU:               "SKU-" + id,
		Name:              "Product " + id,
		PriceMinor:        priceMinor,
		Quantity:          qty,
		LowStockThreshold: threshold,
	})
	require.NoError(t, err)
}

func (e *apiTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func createOrderPayload(productID string, qty int32) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "qty": qty},
		},
	}
}

func TestHandler_CreateOrder(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 5, 1500, 2)

	rec := env.do(t, http.MethodPost, "/api/v1/orders", createOrderPayload("p1", 3))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ORD-250115-0001", got.Number)
	require.Equal(t, "confirmed", got.Status)
	require.Equal(t, "paid", got.PaymentStatus)
	require.Equal(t, "cash", got.PaymentMethod)
	require.Equal(t, int64(4500), got.TotalMinor)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Walk-in Customer", got.Customer.Name)
}

func TestHandler_CreateOrder_Errors(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 2, 1000, 1)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"empty items", map[string]any{"items": []map[string]any{}}, http.StatusBadRequest},
		{"zero qty", createOrderPayload("p1", 0), http.StatusBadRequest},
		{"unknown product", createOrderPayload("ghost", 1), http.StatusNotFound},
		{"insufficient stock", createOrderPayload("p1", 5), http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/orders", tc.body)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(t, http.MethodPost, "/api/v1/orders", "not an object")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetListDeleteOrder(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 10, 1000, 2)

	created := env.do(t, http.MethodPost, "/api/v1/orders", createOrderPayload("p1", 1))
	require.Equal(t, http.StatusCreated, created.Code)
	var order orderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	got := env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)

	missing := env.do(t, http.MethodGet, "/api/v1/orders/missing", nil)
	require.Equal(t, http.StatusNotFound, missing.Code)

	list := env.do(t, http.MethodGet, "/api/v1/orders?status=confirmed&limit=10", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listBody struct {
		Orders []orderResponse `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listBody))
	require.Len(t, listBody.Orders, 1)

	badStatus := env.do(t, http.MethodGet, "/api/v1/orders?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, badStatus.Code)

	deleted := env.do(t, http.MethodDelete, "/api/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusNoContent, deleted.Code)

	gone := env.do(t, http.MethodDelete, "/api/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
}

func TestHandler_UpdateOrderStatus(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 5, 1000, 2)

	created := env.do(t, http.MethodPost, "/api/v1/orders", createOrderPayload("p1", 2))
	require.Equal(t, http.StatusCreated, created.Code)
	var order orderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	path := fmt.Sprintf("/api/v1/orders/%s/status", order.ID)

	rec := env.do(t, http.MethodPatch, path, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "shipped", updated.Status)

	// Назад по цепочке — конфликт.
	rec = env.do(t, http.MethodPatch, path, map[string]any{"status": "processing"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, path, map[string]any{"status": "martian"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, path, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Отмена возвращает сток.
	rec = env.do(t, http.MethodPatch, path, map[string]any{"status": "cancelled", "reason": "customer changed mind"})
	require.Equal(t, http.StatusOK, rec.Code)

	product, err := env.products.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, int32(5), product.Quantity)

	// Причина отмены попадает в историю статусов.
	hist := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/history", order.ID), nil)
	require.Equal(t, http.StatusOK, hist.Code)
	var body struct {
		Events []historyEventResponse `json:"events"`
	}
	require.NoError(t, json.Unmarshal(hist.Body.Bytes(), &body))
	require.NotEmpty(t, body.Events)
	last := body.Events[len(body.Events)-1]
	require.Equal(t, "cancelled", last.To)
	require.Equal(t, "customer changed mind", last.Reason)
}

func TestHandler_OrderHistory(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 5, 1000, 2)

	created := env.do(t, http.MethodPost, "/api/v1/orders", createOrderPayload("p1", 1))
	require.Equal(t, http.StatusCreated, created.Code)
	var order orderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	rec := env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Events []historyEventResponse `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)
	require.Equal(t, "confirmed", body.Events[0].To)

	missing := env.do(t, http.MethodGet, "/api/v1/orders/missing/history", nil)
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHandler_AdjustStock(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "p1", 10, 1000, 2)

	rec := env.do(t, http.MethodPost, "/api/v1/inventory/p1/adjust", adjustStockRequest{Qty: 5, Direction: "decrease"})
	require.Equal(t, http.StatusOK, rec.Code)
	var adjusted adjustResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adjusted))
	require.Equal(t, int32(5), adjusted.Quantity)

	rec = env.do(t, http.MethodPost, "/api/v1/inventory/p1/adjust", adjustStockRequest{Qty: 3, Direction: "increase"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/inventory/p1/adjust", adjustStockRequest{Qty: 100, Direction: "decrease"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/inventory/p1/adjust", adjustStockRequest{Qty: 1, Direction: "sideways"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/inventory/missing/adjust", adjustStockRequest{Qty: 1, Direction: "increase"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_LowStockAndStats(t *testing.T) {
	env := newAPITestEnv(t)
	env.seedProduct(t, "plenty", 50, 1000, 5)
	env.seedProduct(t, "scarce", 2, 2000, 5)
	env.seedProduct(t, "empty", 0, 3000, 5)

	rec := env.do(t, http.MethodGet, "/api/v1/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report lowStockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.LowStock, 1)
	require.Equal(t, "scarce", report.LowStock[0].ID)
	require.Len(t, report.OutOfStock, 1)
	require.Equal(t, "empty", report.OutOfStock[0].ID)

	rec = env.do(t, http.MethodGet, "/api/v1/inventory/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 3, stats.TotalProducts)
	require.Equal(t, int64(52), stats.TotalQuantity)
	require.Equal(t, int64(50*1000+2*2000), stats.TotalValueMinor)
	require.Equal(t, 1, stats.LowStockCount)
	require.Equal(t, 1, stats.OutOfStockCount)
}
