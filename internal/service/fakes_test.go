package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/repository"
)

// memStore is an in-memory stand-in for the database. Transactions hold the
// store mutex for their whole duration and restore a snapshot on error.
type memStore struct {
	mu        sync.Mutex
	products  map[int64]domain.Product
	inventory map[int64]domain.InventoryRecord
	history   []domain.InventoryHistoryEntry
	sales     []domain.Sale
	nextID    int64
	clock     time.Time

	// conflicts makes the next N transactions fail with a concurrency conflict
	conflicts int
	txCount   int
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[int64]domain.Product),
		inventory: make(map[int64]domain.InventoryRecord),
		clock:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) repos() repository.Repositories {
	return repository.Repositories{
		Products:  &memProducts{s},
		Inventory: &memInventory{s},
		History:   &memHistory{s},
		Sales:     &memSales{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCount++
	if s.conflicts > 0 {
		s.conflicts--
		return domain.ErrConcurrencyConflict
	}

	products := make(map[int64]domain.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	inventory := make(map[int64]domain.InventoryRecord, len(s.inventory))
	for k, v := range s.inventory {
		inventory[k] = v
	}
	historyLen, salesLen := len(s.history), len(s.sales)

	if err := fn(s.repos()); err != nil {
		s.products = products
		s.inventory = inventory
		s.history = s.history[:historyLen]
		s.sales = s.sales[:salesLen]
		return err
	}
	return nil
}

// seed adds a product with stock directly, bypassing history
func (s *memStore) seed(sku, category string, stock, reorderLevel int) int64 {
	id := s.id()
	s.products[id] = domain.Product{ID: id, Name: "Product " + sku, SKU: sku, Category: category, CreatedAt: s.tick()}
	s.inventory[id] = domain.InventoryRecord{
		ID: id, ProductID: id, CurrentStock: stock, AvailableStock: stock,
		ReorderLevel: reorderLevel, LastUpdated: s.tick(),
	}
	return id
}

func (s *memStore) historyFor(productID int64) []domain.InventoryHistoryEntry {
	var out []domain.InventoryHistoryEntry
	for _, e := range s.history {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

type memProducts struct{ s *memStore }

func (r *memProducts) Create(ctx context.Context, p *domain.Product) error {
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	p.ID = r.s.id()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProducts) Update(ctx context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.Name, p.Description, p.Price, p.Category = u.Name, u.Description, u.Price, u.Category
	p.UpdatedAt = r.s.tick()
	r.s.products[id] = p
	return &p, nil
}

func (r *memProducts) detail(p domain.Product) domain.ProductDetail {
	d := domain.ProductDetail{Product: p}
	if rec, ok := r.s.inventory[p.ID]; ok {
		d.CurrentStock, d.ReservedStock, d.AvailableStock = rec.CurrentStock, rec.ReservedStock, rec.Available()
		d.ReorderLevel = rec.ReorderLevel
		updated := rec.LastUpdated
		d.StockUpdatedAt = &updated
		d.IsLowStock = rec.IsLowStock()
	}
	return d
}

func (r *memProducts) FindDetail(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	d := r.detail(p)
	return &d, nil
}

func (r *memProducts) List(ctx context.Context, f domain.ProductFilter, page domain.Pagination) ([]domain.ProductDetail, error) {
	out := []domain.ProductDetail{}
	for _, p := range r.s.products {
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Search != nil && !strings.Contains(strings.ToLower(p.Name+" "+p.Description+" "+p.SKU), strings.ToLower(*f.Search)) {
			continue
		}
		out = append(out, r.detail(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page), nil
}

func (r *memProducts) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	return nil, nil
}

type memInventory struct{ s *memStore }

func (r *memInventory) Create(ctx context.Context, productID int64, initialStock, reorderLevel int) (*domain.InventoryRecord, error) {
	if _, ok := r.s.products[productID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	if _, ok := r.s.inventory[productID]; ok {
		return nil, domain.ErrDuplicateInventory
	}
	rec := domain.InventoryRecord{
		ID: r.s.id(), ProductID: productID, CurrentStock: initialStock, AvailableStock: initialStock,
		ReorderLevel: reorderLevel, LastUpdated: r.s.tick(),
	}
	r.s.inventory[productID] = rec
	return &rec, nil
}

func (r *memInventory) FindByProductID(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	rec, ok := r.s.inventory[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &rec, nil
}

func (r *memInventory) FindByProductIDForUpdate(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	return r.FindByProductID(ctx, productID)
}

func (r *memInventory) UpdateStock(ctx context.Context, productID int64, newStock int) (*domain.InventoryRecord, error) {
	rec, ok := r.s.inventory[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if newStock < 0 {
		return nil, domain.ErrInsufficientStock
	}
	rec.CurrentStock = newStock
	rec.AvailableStock = rec.Available()
	rec.LastUpdated = r.s.tick()
	r.s.inventory[productID] = rec
	return &rec, nil
}

func (r *memInventory) ListLowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	out := []domain.LowStockAlert{}
	for _, rec := range r.s.inventory {
		if rec.IsLowStock() {
			p := r.s.products[rec.ProductID]
			out = append(out, domain.LowStockAlert{
				InventoryRecord: rec, ProductName: p.Name, Category: p.Category, SKU: p.SKU,
				ShortageAmount: rec.ReorderLevel - rec.Available(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShortageAmount != out[j].ShortageAmount {
			return out[i].ShortageAmount > out[j].ShortageAmount
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (r *memInventory) ListStatus(ctx context.Context, f domain.InventoryFilter, page domain.Pagination) ([]domain.InventoryStatus, error) {
	out := []domain.InventoryStatus{}
	for _, rec := range r.s.inventory {
		p := r.s.products[rec.ProductID]
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.LowStock && !rec.IsLowStock() {
			continue
		}
		out = append(out, domain.InventoryStatus{
			InventoryRecord: rec, ProductName: p.Name, Category: p.Category, SKU: p.SKU, IsLowStock: rec.IsLowStock(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return paginate(out, page), nil
}

func (r *memInventory) Summary(ctx context.Context, category *string) (*domain.InventorySummary, error) {
	summary := &domain.InventorySummary{}
	total := 0
	for _, rec := range r.s.inventory {
		if category != nil && r.s.products[rec.ProductID].Category != *category {
			continue
		}
		summary.TotalProducts++
		summary.TotalAvailableStock += rec.Available()
		total += rec.CurrentStock
		if rec.IsLowStock() {
			summary.LowStockCount++
		}
	}
	if summary.TotalProducts > 0 {
		summary.AvgStockLevel = float64(total) / float64(summary.TotalProducts)
	}
	return summary, nil
}

type memHistory struct{ s *memStore }

func (r *memHistory) Append(ctx context.Context, e *domain.InventoryHistoryEntry) error {
	e.ID = r.s.id()
	e.CreatedAt = r.s.tick()
	r.s.history = append(r.s.history, *e)
	return nil
}

func (r *memHistory) List(ctx context.Context, f domain.HistoryFilter, page domain.Pagination) ([]domain.InventoryHistoryEntry, error) {
	out := []domain.InventoryHistoryEntry{}
	for i := len(r.s.history) - 1; i >= 0; i-- {
		e := r.s.history[i]
		if f.ProductID != nil && e.ProductID != *f.ProductID {
			continue
		}
		if f.ChangeType != nil && e.ChangeType != *f.ChangeType {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, page), nil
}

type memSales struct{ s *memStore }

func (r *memSales) Create(ctx context.Context, ns domain.NewSale) (*domain.Sale, error) {
	if _, ok := r.s.products[ns.ProductID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	sale := domain.Sale{
		ID: r.s.id(), ProductID: ns.ProductID, Quantity: ns.Quantity, UnitPrice: domain.RoundMoney(ns.UnitPrice),
		TotalAmount: ns.Total(), SaleDate: ns.SaleDate, Platform: ns.Platform, CustomerID: ns.CustomerID,
		CreatedAt: r.s.tick(),
	}
	r.s.sales = append(r.s.sales, sale)
	return &sale, nil
}

func paginate[T any](items []T, page domain.Pagination) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

// fakeAnalytics serves canned analytics rows and records the queries made
type fakeAnalytics struct {
	sales        []domain.SaleView
	total        int
	analytics    []domain.SalesAnalytics
	categories   []domain.CategorySales
	revenue      []domain.PeriodRevenue
	revenueSince time.Time
	lastPage     domain.Pagination
}

func (f *fakeAnalytics) ListSales(ctx context.Context, filter domain.SalesFilter, page domain.Pagination) ([]domain.SaleView, int, error) {
	f.lastPage = page
	return f.sales, f.total, nil
}

func (f *fakeAnalytics) Analytics(ctx context.Context, period domain.Period, filter domain.SalesFilter) ([]domain.SalesAnalytics, error) {
	out := make([]domain.SalesAnalytics, len(f.analytics))
	copy(out, f.analytics)
	return out, nil
}

func (f *fakeAnalytics) ByCategory(ctx context.Context, filter domain.SalesFilter) ([]domain.CategorySales, error) {
	return f.categories, nil
}

func (f *fakeAnalytics) RevenueSince(ctx context.Context, period domain.Period, since time.Time) ([]domain.PeriodRevenue, error) {
	f.revenueSince = since
	var out []domain.PeriodRevenue
	for _, r := range f.revenue {
		if !r.PeriodBucket.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}
