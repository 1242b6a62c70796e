package transport

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"inventory-ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdjustInventory(t *testing.T) {
	svc := &stubInventoryService{applyFn: func(pid int64, change int, ct domain.ChangeType, reason string) (*domain.InventoryRecord, error) {
		assert.EqualValues(t, 4, pid)
		assert.Equal(t, 25, change)
		assert.Equal(t, domain.ChangeTypePurchase, ct)
		assert.Equal(t, "restock", reason)
		return &domain.InventoryRecord{ProductID: pid, CurrentStock: 35, AvailableStock: 35, ReorderLevel: 10}, nil
	}}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	rec := doRequest(t, router, http.MethodPost, "/api/inventory/adjust", map[string]interface{}{
		"product_id": 4, "quantity_change": 25, "change_type": "purchase", "reason": "restock",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Inventory updated successfully", body["message"])
	assert.Equal(t, float64(35), body["inventory"].(map[string]interface{})["current_stock"])
}

func TestAdjustInventoryRejectsInvalidBodies(t *testing.T) {
	svc := &stubInventoryService{}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	cases := map[string]map[string]interface{}{
		"sale change type": {"product_id": 1, "quantity_change": -1, "change_type": "sale"},
		"unknown type":     {"product_id": 1, "quantity_change": 1, "change_type": "theft"},
		"zero change":      {"product_id": 1, "quantity_change": 0, "change_type": "adjustment"},
		"missing product":  {"quantity_change": 1, "change_type": "return"},
		"beyond int range": {"product_id": 1, "quantity_change": 3000000000, "change_type": "purchase"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/inventory/adjust", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Zero(t, svc.applyCalls)
}

func TestAdjustInventoryErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient stock", &domain.InsufficientStockError{ProductID: 1, CurrentStock: 3, QuantityChange: -5}, http.StatusUnprocessableEntity},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound},
		{"conflict", domain.ErrConcurrencyConflict, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &stubInventoryService{applyFn: func(int64, int, domain.ChangeType, string) (*domain.InventoryRecord, error) {
				return nil, c.err
			}}
			router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

			rec := doRequest(t, router, http.MethodPost, "/api/inventory/adjust", map[string]interface{}{
				"product_id": 1, "quantity_change": -5, "change_type": "adjustment",
			})
			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestAdjustInventoryInsufficientStockDetails(t *testing.T) {
	svc := &stubInventoryService{applyFn: func(int64, int, domain.ChangeType, string) (*domain.InventoryRecord, error) {
		return nil, &domain.InsufficientStockError{ProductID: 9, CurrentStock: 2, QuantityChange: -5}
	}}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	rec := doRequest(t, router, http.MethodPost, "/api/inventory/adjust", map[string]interface{}{
		"product_id": 9, "quantity_change": -5, "change_type": "adjustment",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeBody(t, rec)["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, float64(2), details["current_stock"])
	assert.Equal(t, float64(-5), details["quantity_change"])
}

func TestGetInventoryWithSummary(t *testing.T) {
	svc := &stubInventoryService{statusFn: func(domain.InventoryFilter, domain.Pagination) ([]domain.InventoryStatus, *domain.InventorySummary, error) {
		return []domain.InventoryStatus{{ProductName: "Lamp", IsLowStock: true}},
			&domain.InventorySummary{TotalProducts: 1, LowStockCount: 1, TotalAvailableStock: 4, AvgStockLevel: 4}, nil
	}}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	rec := doRequest(t, router, http.MethodGet, "/api/inventory?category=Home&low_stock=true", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, svc.lastInvFilter.LowStock)
	require.NotNil(t, svc.lastInvFilter.Category)
	assert.Equal(t, "Home", *svc.lastInvFilter.Category)

	body := decodeBody(t, rec)
	assert.Len(t, body["inventory"], 1)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["low_stock_count"])

	rec = doRequest(t, router, http.MethodGet, "/api/inventory?low_stock=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryParsesFilters(t *testing.T) {
	svc := &stubInventoryService{histFn: func(domain.HistoryFilter, domain.Pagination) ([]domain.InventoryHistoryEntry, error) {
		return nil, nil
	}}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	rec := doRequest(t, router, http.MethodGet,
		"/api/inventory/history?product_id=5&change_type=sale&start_date=2024-03-01&end_date=2024-03-31", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f := svc.lastHistFilter
	require.NotNil(t, f.ProductID)
	assert.EqualValues(t, 5, *f.ProductID)
	require.NotNil(t, f.ChangeType)
	assert.Equal(t, domain.ChangeTypeSale, *f.ChangeType)
	require.NotNil(t, f.StartDate)
	assert.True(t, f.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, f.EndDate)
	assert.Equal(t, 31, f.EndDate.Day())
	assert.Equal(t, 23, f.EndDate.Hour())

	assert.Equal(t, []interface{}{}, decodeBody(t, rec)["history"])

	rec = doRequest(t, router, http.MethodGet, "/api/inventory/history?change_type=theft", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLowStockAlerts(t *testing.T) {
	svc := &stubInventoryService{alertsFn: func() ([]domain.LowStockAlert, error) {
		return []domain.LowStockAlert{
			{ProductName: "A", ShortageAmount: 8},
			{ProductName: "B", ShortageAmount: 2},
		}, nil
	}}
	router := newRouter(NewInventoryHandler(svc, zap.NewNop()))

	rec := doRequest(t, router, http.MethodGet, "/api/inventory/alerts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["alert_count"])
	assert.Len(t, body["low_stock_alerts"], 2)
}
