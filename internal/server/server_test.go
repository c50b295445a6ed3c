package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bakery/internal/config"
	"bakery/internal/handler"
	"bakery/internal/infra/memory"
	"bakery/internal/metrics"
	"bakery/internal/server"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	References int64  `json:"references"`
}

type ProductDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

type StockDTO struct {
	ProductID int64 `json:"product_id"`
	Stock     int64 `json:"stock"`
}

type OrderDTO struct {
	ID            int64  `json:"id"`
	CustomerName  string `json:"customer_name"`
	Status        string `json:"status"`
	StockReturned bool   `json:"stock_returned"`
	Items         []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	} `json:"items"`
}

type CreateOrderDTO struct {
	Order OrderDTO `json:"order"`
	Lines []struct {
		ProductID int64  `json:"product_id"`
		Status    string `json:"status"`
		Reason    string `json:"reason"`
	} `json:"lines"`
	Fulfillment string `json:"fulfillment"`
}

func newTestServer(t *testing.T, policy config.RestockPolicy) *echo.Echo {
	t.Helper()

	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheus(reg)
	log := zap.NewNop()

	alloc := usecase.NewIdentifierAllocator(rec)
	return server.New(log, server.Handlers{
		Health:      handler.NewHealthHandler(nil),
		Products:    handler.NewProductHandler(usecase.NewProductUsecase(store, alloc, log)),
		Orders:      handler.NewOrderHandler(usecase.NewOrderUsecase(store, log, rec)),
		Lifecycle:   handler.NewOrderLifecycleHandler(usecase.NewOrderLifecycleUsecase(store, policy, log, rec)),
		Identifiers: handler.NewIdentifierHandler(usecase.NewIdentifierUsecase(store)),
	}, reg)
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body=%s", rec.Body.String())
	}
	return rec
}

func createProduct(t *testing.T, e *echo.Echo, name string, price string, stock int64) ProductDTO {
	t.Helper()
	var p ProductDTO
	rec := doJSON(t, e, http.MethodPost, "/products", map[string]any{"name": name, "price": price, "stock": stock}, &p)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return p
}

func stockOf(t *testing.T, e *echo.Echo, id int64) int64 {
	t.Helper()
	var s StockDTO
	rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/products/%d/stock", id), nil, &s)
	require.Equal(t, http.StatusOK, rec.Code)
	return s.Stock
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)

	rec := doJSON(t, e, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestProducts_CreateListStock(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)

	p := createProduct(t, e, "Pão de queijo", "2.50", 5)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "2.5", p.Price)

	var items []ProductDTO
	rec := doJSON(t, e, http.MethodGet, "/products", nil, &items)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 1)

	var s StockDTO
	rec = doJSON(t, e, http.MethodPatch, "/products/1/stock", map[string]any{"delta": -2}, &s)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), s.Stock)

	var er ErrorResponse
	rec = doJSON(t, e, http.MethodPatch, "/products/1/stock", map[string]any{"delta": -4}, &er)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", er.Kind)
}

func TestProducts_BadInput(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)

	var er ErrorResponse
	rec := doJSON(t, e, http.MethodPost, "/products", map[string]any{"name": "Broa", "price": "-1", "stock": 1}, &er)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", er.Kind)

	rec = doJSON(t, e, http.MethodGet, "/products/abc/stock", nil, &er)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/products/9/stock", nil, &er)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", er.Kind)
}

func TestOrders_Flow(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)
	p1 := createProduct(t, e, "Pão de mel", "3.00", 5)

	var created CreateOrderDTO
	rec := doJSON(t, e, http.MethodPost, "/orders", map[string]any{
		"customer_name": "Alice",
		"lines": []map[string]any{
			{"product_id": p1.ID, "quantity": 2},
			{"product_id": 99, "quantity": 1},
		},
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "partial", created.Fulfillment)
	assert.Equal(t, "not_found", created.Lines[1].Reason)
	assert.Equal(t, int64(3), stockOf(t, e, p1.ID))

	// 参照中の商品は消せない
	var er ErrorResponse
	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/products/%d", p1.ID), nil, &er)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "referential_integrity", er.Kind)
	assert.Equal(t, int64(1), er.References)

	var rows []map[string]any
	rec = doJSON(t, e, http.MethodGet, "/orders", nil, &rows)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rows, 1)

	orderPath := fmt.Sprintf("/orders/%d", created.Order.ID)
	rec = doJSON(t, e, http.MethodPut, orderPath+"/status", map[string]any{"status": "Cancelado"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), stockOf(t, e, p1.ID))

	rec = doJSON(t, e, http.MethodPut, orderPath+"/status", map[string]any{"status": "Shipped"}, &er)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", er.Kind)

	var o OrderDTO
	rec = doJSON(t, e, http.MethodGet, orderPath, nil, &o)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", o.Status)
	assert.True(t, o.StockReturned)

	rec = doJSON(t, e, http.MethodDelete, orderPath, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), stockOf(t, e, p1.ID))

	rec = doJSON(t, e, http.MethodGet, orderPath, nil, &er)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/products/%d", p1.ID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentifiers_ListAndClear(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)
	p1 := createProduct(t, e, "A", "1", 1)
	createProduct(t, e, "B", "1", 1)

	rec := doJSON(t, e, http.MethodDelete, fmt.Sprintf("/products/%d", p1.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ex struct {
		Kind string  `json:"kind"`
		IDs  []int64 `json:"ids"`
	}
	rec = doJSON(t, e, http.MethodGet, "/identifiers/product/excluded", nil, &ex)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{p1.ID}, ex.IDs)

	var cleared struct {
		Cleared int64 `json:"cleared"`
	}
	rec = doJSON(t, e, http.MethodDelete, "/identifiers/product/excluded", nil, &cleared)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), cleared.Cleared)

	p3 := createProduct(t, e, "C", "1", 1)
	assert.Equal(t, int64(3), p3.ID)

	var er ErrorResponse
	rec = doJSON(t, e, http.MethodGet, "/identifiers/order/excluded", nil, &er)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics_Exposed(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)
	p := createProduct(t, e, "A", "1", 1)
	doJSON(t, e, http.MethodPost, "/orders", map[string]any{
		"customer_name": "Alice",
		"lines":         []map[string]any{{"product_id": p.ID, "quantity": 1}},
	}, nil)

	rec := doJSON(t, e, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `bakery_orders_created_total{fulfillment="fulfilled"} 1`), body)
	assert.Contains(t, body, "bakery_identifiers_allocated_total")
}

func TestUnknownRoute_JSONError(t *testing.T) {
	e := newTestServer(t, config.RestockOnce)

	var er ErrorResponse
	rec := doJSON(t, e, http.MethodGet, "/nope", nil, &er)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, er.Error)
}
