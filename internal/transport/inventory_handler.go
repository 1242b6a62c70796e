package transport

import (
	"net/http"
	"strconv"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/middleware"
	"inventory-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdjustInventoryRequest represents a manual stock change. Sales are recorded
// through the sales endpoint and are rejected here.
type AdjustInventoryRequest struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	QuantityChange int    `json:"quantity_change" validate:"ne=0,min=-2147483647,max=2147483647"`
	ChangeType     string `json:"change_type" validate:"required,adjustment_type"`
	Reason         string `json:"reason" validate:"max=500"`
}

// InventoryHandler handles HTTP requests for stock levels and history
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", h.GetInventory)
		r.Post("/adjust", h.AdjustInventory)
		r.Get("/history", h.GetHistory)
		r.Get("/alerts", h.GetLowStockAlerts)
	})
}

// GetInventory handles GET /api/inventory
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	page, err := queryPagination(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := domain.InventoryFilter{Category: queryString(r, "category")}
	if raw := r.URL.Query().Get("low_stock"); raw != "" {
		if filter.LowStock, err = strconv.ParseBool(raw); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "low_stock must be true or false")
			return
		}
	}

	inventory, summary, err := h.inventoryService.GetInventoryStatus(r.Context(), filter, page)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch inventory")
		return
	}
	if inventory == nil {
		inventory = []domain.InventoryStatus{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"inventory": inventory,
		"summary":   summary,
	})
}

// AdjustInventory handles POST /api/inventory/adjust
func (h *InventoryHandler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req AdjustInventoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Inventory adjustment validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	record, err := h.inventoryService.ApplyStockChange(
		r.Context(), req.ProductID, req.QuantityChange, domain.ChangeType(req.ChangeType), req.Reason,
	)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update inventory")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Inventory updated successfully",
		"inventory": record,
	})
}

// GetHistory handles GET /api/inventory/history
func (h *InventoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	page, err := queryPagination(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := queryHistoryFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.inventoryService.GetHistory(r.Context(), filter, page)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch inventory history")
		return
	}
	if history == nil {
		history = []domain.InventoryHistoryEntry{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"history":    history,
		"pagination": page,
	})
}

// GetLowStockAlerts handles GET /api/inventory/alerts
func (h *InventoryHandler) GetLowStockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.inventoryService.GetLowStockAlerts(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch low stock alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.LowStockAlert{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"low_stock_alerts": alerts,
		"alert_count":      len(alerts),
	})
}
