package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/metrics"
	"inventory_ledger/internal/repository"
	"inventory_ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *repository.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore(logger)
	cats, products := store.Categories(), store.Products()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Categories: usecase.NewCategoryUseCase(cats, logger),
		Products:   usecase.NewProductUseCase(products, cats, logger),
		Stock:      usecase.NewStockUseCase(products, usecase.StockOptions{MaxTries: 3, RetryInterval: time.Millisecond}, m, logger),
		Reports:    usecase.NewReportUseCase(products, cats, nil, usecase.ReportOptions{DefaultThreshold: 5}, m, logger),
		Metrics:    m,
		Gatherer:   reg,
		Logger:     logger,
	})
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// seed creates category "Narzędzia" (id 1) with product "Młotek" 3 x 10 (id 1).
func (s *testServer) seed(t *testing.T) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/categories", gin.H{"name": "Narzędzia"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/products", gin.H{"name": "Młotek", "quantity": 3, "price": 10, "category_id": 1})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/categories", gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Fail", resp.Status)

	s.seed(t)

	w, _ = s.do(t, http.MethodGet, "/categories/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/categories/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/categories/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/categories/1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(t, http.MethodDelete, "/categories/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, resp.Message, "remove or reassign them first")
}

func TestProductRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	w, _ := s.do(t, http.MethodPost, "/products", gin.H{"name": "X", "quantity": 1, "price": 1, "category_id": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPost, "/products", gin.H{"name": "Młotek\r\nduży", "quantity": 1, "price": 1, "category_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPost, "/products", gin.H{"name": "Młotek", "quantity": domain.MaxQuantity + 1, "price": 1, "category_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := s.do(t, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Narzędzia", data["category_name"])
	assert.Equal(t, 30.0, data["value"])

	w, resp = s.do(t, http.MethodPatch, "/products/1", gin.H{"price": 12})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12.0, resp.Data.(map[string]any)["price"])

	w, resp = s.do(t, http.MethodGet, "/products?q=m%C5%82o&sort=value&desc=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := resp.Data.(map[string]any)
	assert.Equal(t, 1.0, page["total"])

	w, _ = s.do(t, http.MethodGet, "/products?desc=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/products?sort=colour", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/categories/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdjustmentRoute(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantQty  int
	}{
		{"Issue beyond balance", gin.H{"direction": "out", "amount": 5}, http.StatusUnprocessableEntity, 3},
		{"Receipt", gin.H{"direction": "IN", "amount": 5}, http.StatusOK, 8},
		{"Issue", gin.H{"direction": "out", "amount": 8}, http.StatusOK, 0},
		{"Zero amount", gin.H{"direction": "in", "amount": 0}, http.StatusBadRequest, 0},
		{"Unknown direction", gin.H{"direction": "up", "amount": 1}, http.StatusBadRequest, 0},
		{"Missing direction", gin.H{"amount": 1}, http.StatusBadRequest, 0},
		{"Receipt past column limit", gin.H{"direction": "in", "amount": domain.MaxQuantity + 1}, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodPost, "/products/1/adjustments", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)

			stored, err := s.store.Products().GetProductByID(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, stored.Quantity)
		})
	}

	w, _ := s.do(t, http.MethodPost, "/products/9/adjustments", gin.H{"direction": "in", "amount": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	w, resp := s.do(t, http.MethodGet, "/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := resp.Data.(map[string]any)
	assert.Equal(t, 30.0, summary["total_value"])
	assert.Equal(t, 5.0, summary["low_stock_threshold"])

	w, resp = s.do(t, http.MethodGet, "/reports/low-stock?threshold=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)

	w, _ = s.do(t, http.MethodGet, "/reports/low-stock?threshold=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/export/products.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nazwa,kategoria,liczba,cena,wartosc\nMłotek,Narzędzia,3,10,30\n", w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/export/archive", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inventory Ledger API")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `inventory_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "name", Err: domain.ErrEmptyName}, http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnknownCategory), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrReferentialConstraint), http.StatusConflict},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict},
		{&domain.InsufficientStockError{Current: 1, Delta: 2}, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{domain.ErrExportDisabled, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapErrorToStatus(tt.err), tt.err.Error())
	}
}
