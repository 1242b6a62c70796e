package transport

import (
	"context"

	"inventory-ledger/internal/domain"
)

// Hand-written service stubs. Each method delegates to its func field and
// records the arguments of the last call.

type stubProductService struct {
	createFn func(domain.NewProduct) (*domain.ProductDetail, error)
	updateFn func(int64, domain.ProductUpdate) (*domain.Product, error)
	getFn    func(int64) (*domain.ProductDetail, error)
	listFn   func(domain.ProductFilter, domain.Pagination) ([]domain.ProductDetail, error)
	catsFn   func() ([]domain.CategorySummary, error)

	lastNew    domain.NewProduct
	lastFilter domain.ProductFilter
	lastPage   domain.Pagination
}

func (s *stubProductService) CreateProduct(_ context.Context, p domain.NewProduct) (*domain.ProductDetail, error) {
	s.lastNew = p
	return s.createFn(p)
}

func (s *stubProductService) UpdateProduct(_ context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	return s.updateFn(id, u)
}

func (s *stubProductService) GetProduct(_ context.Context, id int64) (*domain.ProductDetail, error) {
	return s.getFn(id)
}

func (s *stubProductService) ListProducts(_ context.Context, f domain.ProductFilter, p domain.Pagination) ([]domain.ProductDetail, error) {
	s.lastFilter, s.lastPage = f, p
	return s.listFn(f, p)
}

func (s *stubProductService) GetCategories(_ context.Context) ([]domain.CategorySummary, error) {
	return s.catsFn()
}

type stubInventoryService struct {
	applyFn  func(int64, int, domain.ChangeType, string) (*domain.InventoryRecord, error)
	saleFn   func(domain.NewSale) (*domain.Sale, error)
	alertsFn func() ([]domain.LowStockAlert, error)
	histFn   func(domain.HistoryFilter, domain.Pagination) ([]domain.InventoryHistoryEntry, error)
	statusFn func(domain.InventoryFilter, domain.Pagination) ([]domain.InventoryStatus, *domain.InventorySummary, error)

	applyCalls     int
	lastSale       domain.NewSale
	lastHistFilter domain.HistoryFilter
	lastInvFilter  domain.InventoryFilter
}

func (s *stubInventoryService) ApplyStockChange(_ context.Context, productID int64, change int, ct domain.ChangeType, reason string) (*domain.InventoryRecord, error) {
	s.applyCalls++
	return s.applyFn(productID, change, ct, reason)
}

func (s *stubInventoryService) CreateInventoryRecord(context.Context, int64, int, int) (*domain.InventoryRecord, error) {
	panic("not used by handlers")
}

func (s *stubInventoryService) RecordSale(_ context.Context, sale domain.NewSale) (*domain.Sale, error) {
	s.lastSale = sale
	return s.saleFn(sale)
}

func (s *stubInventoryService) GetLowStockAlerts(context.Context) ([]domain.LowStockAlert, error) {
	return s.alertsFn()
}

func (s *stubInventoryService) GetHistory(_ context.Context, f domain.HistoryFilter, p domain.Pagination) ([]domain.InventoryHistoryEntry, error) {
	s.lastHistFilter = f
	return s.histFn(f, p)
}

func (s *stubInventoryService) GetInventoryStatus(_ context.Context, f domain.InventoryFilter, p domain.Pagination) ([]domain.InventoryStatus, *domain.InventorySummary, error) {
	s.lastInvFilter = f
	return s.statusFn(f, p)
}

type stubSalesService struct {
	salesFn      func(domain.SalesFilter, domain.Pagination) (*domain.SalesPage, error)
	analyticsFn  func(domain.Period, domain.SalesFilter) ([]domain.SalesAnalytics, error)
	categoryFn   func(domain.SalesFilter) ([]domain.CategorySales, error)
	comparisonFn func(domain.Period, int) ([]domain.RevenueComparison, error)
	exportFn     func(domain.Period, domain.SalesFilter) ([]byte, error)

	lastPeriod  domain.Period
	lastCompare int
	lastFilter  domain.SalesFilter
}

func (s *stubSalesService) GetSales(_ context.Context, f domain.SalesFilter, p domain.Pagination) (*domain.SalesPage, error) {
	s.lastFilter = f
	return s.salesFn(f, p)
}

func (s *stubSalesService) GetAnalytics(_ context.Context, period domain.Period, f domain.SalesFilter) ([]domain.SalesAnalytics, error) {
	s.lastPeriod, s.lastFilter = period, f
	return s.analyticsFn(period, f)
}

func (s *stubSalesService) GetSalesByCategory(_ context.Context, f domain.SalesFilter) ([]domain.CategorySales, error) {
	s.lastFilter = f
	return s.categoryFn(f)
}

func (s *stubSalesService) GetRevenueComparison(_ context.Context, period domain.Period, n int) ([]domain.RevenueComparison, error) {
	s.lastPeriod, s.lastCompare = period, n
	return s.comparisonFn(period, n)
}

func (s *stubSalesService) ExportSalesReport(_ context.Context, period domain.Period, f domain.SalesFilter) ([]byte, error) {
	s.lastPeriod, s.lastFilter = period, f
	return s.exportFn(period, f)
}
