package repository

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-ledger/internal/domain"
)

// InventoryRepository defines the interface for stock counter access
type InventoryRepository interface {
	Create(ctx context.Context, productID int64, initialStock, reorderLevel int) (*domain.InventoryRecord, error)
	FindByProductID(ctx context.Context, productID int64) (*domain.InventoryRecord, error)
	// FindByProductIDForUpdate locks the row until the surrounding transaction ends
	FindByProductIDForUpdate(ctx context.Context, productID int64) (*domain.InventoryRecord, error)
	UpdateStock(ctx context.Context, productID int64, newStock int) (*domain.InventoryRecord, error)
	ListLowStock(ctx context.Context) ([]domain.LowStockAlert, error)
	ListStatus(ctx context.Context, filter domain.InventoryFilter, page domain.Pagination) ([]domain.InventoryStatus, error)
	Summary(ctx context.Context, category *string) (*domain.InventorySummary, error)
}

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository creates a new instance of InventoryRepository
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `id, product_id, current_stock, reserved_stock, available_stock, reorder_level, last_updated`

func scanInventory(row rowScanner, rec *domain.InventoryRecord, extra ...interface{}) error {
	dest := []interface{}{
		&rec.ID,
		&rec.ProductID,
		&rec.CurrentStock,
		&rec.ReservedStock,
		&rec.AvailableStock,
		&rec.ReorderLevel,
		&rec.LastUpdated,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts the inventory record of a product
func (r *inventoryRepository) Create(ctx context.Context, productID int64, initialStock, reorderLevel int) (*domain.InventoryRecord, error) {
	query := `
		INSERT INTO inventory (product_id, current_stock, reorder_level)
		VALUES ($1, $2, $3)
		RETURNING ` + inventoryColumns

	rec := &domain.InventoryRecord{}
	if err := scanInventory(r.db.QueryRowContext(ctx, query, productID, initialStock, reorderLevel), rec); err != nil {
		return nil, translateError(err, "create inventory record")
	}
	return rec, nil
}

func (r *inventoryRepository) FindByProductID(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	return r.find(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1`, productID)
}

func (r *inventoryRepository) FindByProductIDForUpdate(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	return r.find(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1 FOR UPDATE`, productID)
}

func (r *inventoryRepository) find(ctx context.Context, query string, productID int64) (*domain.InventoryRecord, error) {
	rec := &domain.InventoryRecord{}
	if err := scanInventory(r.db.QueryRowContext(ctx, query, productID), rec); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, translateError(err, "find inventory record")
	}
	return rec, nil
}

// UpdateStock sets current stock and refreshes last_updated
func (r *inventoryRepository) UpdateStock(ctx context.Context, productID int64, newStock int) (*domain.InventoryRecord, error) {
	query := `
		UPDATE inventory
		SET current_stock = $2, last_updated = NOW()
		WHERE product_id = $1
		RETURNING ` + inventoryColumns

	rec := &domain.InventoryRecord{}
	if err := scanInventory(r.db.QueryRowContext(ctx, query, productID, newStock), rec); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, translateError(err, "update stock")
	}
	return rec, nil
}

// ListLowStock returns records at or below their reorder level, largest
// shortage first
func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	query := `
		SELECT i.id, i.product_id, i.current_stock, i.reserved_stock, i.available_stock,
		       i.reorder_level, i.last_updated,
		       p.name, p.category, p.sku, i.reorder_level - i.available_stock AS shortage_amount
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.available_stock <= i.reorder_level
		ORDER BY shortage_amount DESC, i.product_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	defer rows.Close()

	alerts := []domain.LowStockAlert{}
	for rows.Next() {
		var a domain.LowStockAlert
		if err := scanInventory(rows, &a.InventoryRecord, &a.ProductName, &a.Category, &a.SKU, &a.ShortageAmount); err != nil {
			return nil, fmt.Errorf("failed to scan low stock alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock alerts: %w", err)
	}

	return alerts, nil
}

func inventoryConditions(category *string, lowStock bool) *conditions {
	c := &conditions{}
	if category != nil {
		c.add("p.category = $%d", *category)
	}
	if lowStock {
		c.raw("i.available_stock <= i.reorder_level")
	}
	return c
}

// ListStatus returns inventory joined with products, most recently changed first
func (r *inventoryRepository) ListStatus(ctx context.Context, filter domain.InventoryFilter, page domain.Pagination) ([]domain.InventoryStatus, error) {
	c := inventoryConditions(filter.Category, filter.LowStock)
	limit, args := c.page(page.Normalize())

	query := `
		SELECT i.id, i.product_id, i.current_stock, i.reserved_stock, i.available_stock,
		       i.reorder_level, i.last_updated, p.name, p.category, p.sku
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		` + c.where() + `
		ORDER BY i.last_updated DESC, i.product_id
		` + limit

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	statuses := []domain.InventoryStatus{}
	for rows.Next() {
		var s domain.InventoryStatus
		if err := scanInventory(rows, &s.InventoryRecord, &s.ProductName, &s.Category, &s.SKU); err != nil {
			return nil, fmt.Errorf("failed to scan inventory status: %w", err)
		}
		s.IsLowStock = s.InventoryRecord.IsLowStock()
		statuses = append(statuses, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return statuses, nil
}

// Summary aggregates stock figures over the records of category, or all
// records when category is nil
func (r *inventoryRepository) Summary(ctx context.Context, category *string) (*domain.InventorySummary, error) {
	c := inventoryConditions(category, false)

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE i.available_stock <= i.reorder_level),
		       COALESCE(SUM(i.available_stock), 0),
		       COALESCE(ROUND(AVG(i.current_stock), 2), 0)::float8
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		` + c.where()

	summary := &domain.InventorySummary{}
	err := r.db.QueryRowContext(ctx, query, c.args...).Scan(
		&summary.TotalProducts,
		&summary.LowStockCount,
		&summary.TotalAvailableStock,
		&summary.AvgStockLevel,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize inventory: %w", err)
	}

	return summary, nil
}
