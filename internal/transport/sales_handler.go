package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/middleware"
	"inventory-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults applied when the analytics query omits them
const (
	defaultAnalyticsPeriod  = domain.PeriodDaily
	defaultComparisonPeriod = domain.PeriodMonthly
	defaultComparePeriods   = 2
	maxComparePeriods       = 120
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordSaleRequest represents the sale payload. SaleDate defaults to now.
type RecordSaleRequest struct {
	ProductID  int64           `json:"product_id" validate:"required,gt=0"`
	Quantity   int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"gt=0,lte=99999999.99,money"`
	SaleDate   *time.Time      `json:"sale_date"`
	Platform   string          `json:"platform" validate:"required,platform"`
	CustomerID *string         `json:"customer_id" validate:"omitempty,max=100"`
}

// SalesPagination describes the page returned by GET /api/sales
type SalesPagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// SalesListResponse is the body of GET /api/sales
type SalesListResponse struct {
	Sales      []domain.SaleView `json:"sales"`
	Pagination SalesPagination   `json:"pagination"`
}

// SalesHandler handles HTTP requests for sales and sales analytics
type SalesHandler struct {
	inventoryService service.InventoryService
	salesService     service.SalesService
	logger           *zap.Logger
	now              func() time.Time
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(inventoryService service.InventoryService, salesService service.SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		inventoryService: inventoryService,
		salesService:     salesService,
		logger:           logger,
		now:              time.Now,
	}
}

// RegisterRoutes registers all sales routes
func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.GetSales)
		r.Post("/", h.RecordSale)
		r.Get("/analytics", h.GetAnalytics)
		r.Get("/categories", h.GetSalesByCategory)
		r.Get("/comparison", h.GetRevenueComparison)
		r.Get("/export", h.ExportReport)
	})
}

// GetSales handles GET /api/sales
func (h *SalesHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	page, err := queryPagination(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := querySalesFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.salesService.GetSales(r.Context(), filter, page)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch sales")
		return
	}

	resp := SalesListResponse{
		Sales: result.Sales,
		Pagination: SalesPagination{
			Total:   result.TotalCount,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore(),
		},
	}
	if resp.Sales == nil {
		resp.Sales = []domain.SaleView{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// RecordSale handles POST /api/sales. The sale and its stock decrement are
// committed together or not at all.
func (h *SalesHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	saleDate := h.now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	sale, err := h.inventoryService.RecordSale(r.Context(), domain.NewSale{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		SaleDate:   saleDate,
		Platform:   domain.Platform(req.Platform),
		CustomerID: req.CustomerID,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to record sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Sale recorded successfully",
		"sale":    sale,
	})
}

// GetAnalytics handles GET /api/sales/analytics
func (h *SalesHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	period, filter, ok := h.analyticsQuery(w, r)
	if !ok {
		return
	}

	analytics, err := h.salesService.GetAnalytics(r.Context(), period, filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch sales analytics")
		return
	}
	if analytics == nil {
		analytics = []domain.SalesAnalytics{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"analytics": analytics})
}

// GetSalesByCategory handles GET /api/sales/categories
func (h *SalesHandler) GetSalesByCategory(w http.ResponseWriter, r *http.Request) {
	filter, err := querySalesFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	categorySales, err := h.salesService.GetSalesByCategory(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch category sales")
		return
	}
	if categorySales == nil {
		categorySales = []domain.CategorySales{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"category_sales": categorySales})
}

// GetRevenueComparison handles GET /api/sales/comparison
func (h *SalesHandler) GetRevenueComparison(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r, defaultComparisonPeriod)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	comparePeriods, err := queryInt(r, "compare_periods", defaultComparePeriods, 1, maxComparePeriods)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	comparison, err := h.salesService.GetRevenueComparison(r.Context(), period, comparePeriods)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to fetch revenue comparison")
		return
	}
	if comparison == nil {
		comparison = []domain.RevenueComparison{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"revenue_comparison": comparison})
}

// ExportReport handles GET /api/sales/export and streams an XLSX workbook
func (h *SalesHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	period, filter, ok := h.analyticsQuery(w, r)
	if !ok {
		return
	}

	data, err := h.salesService.ExportSalesReport(r.Context(), period, filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to export sales report")
		return
	}

	filename := fmt.Sprintf("sales-%s-%s.xlsx", period, h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write sales report", zap.Error(err))
	}
}

func (h *SalesHandler) analyticsQuery(w http.ResponseWriter, r *http.Request) (domain.Period, domain.SalesFilter, bool) {
	period, err := queryPeriod(r, defaultAnalyticsPeriod)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", domain.SalesFilter{}, false
	}
	filter, err := querySalesFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", domain.SalesFilter{}, false
	}
	return period, filter, true
}
