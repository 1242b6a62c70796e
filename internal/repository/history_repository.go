package repository

import (
	"context"
	"fmt"

	"inventory-ledger/internal/domain"
)

// HistoryRepository is the append-only store of stock changes. Entries are
// never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.InventoryHistoryEntry) error
	List(ctx context.Context, filter domain.HistoryFilter, page domain.Pagination) ([]domain.InventoryHistoryEntry, error)
}

type historyRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new instance of HistoryRepository
func NewHistoryRepository(db DBTX) HistoryRepository {
	return &historyRepository{db: db}
}

// Append inserts entry and fills in its id and creation time
func (r *historyRepository) Append(ctx context.Context, entry *domain.InventoryHistoryEntry) error {
	query := `
		INSERT INTO inventory_history (product_id, change_type, quantity_change, previous_stock, new_stock, reason)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.ProductID,
		string(entry.ChangeType),
		entry.QuantityChange,
		entry.PreviousStock,
		entry.NewStock,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return translateError(err, "append inventory history")
	}

	return nil
}

// List returns matching entries newest first
func (r *historyRepository) List(ctx context.Context, filter domain.HistoryFilter, page domain.Pagination) ([]domain.InventoryHistoryEntry, error) {
	c := &conditions{}
	if filter.ProductID != nil {
		c.add("h.product_id = $%d", *filter.ProductID)
	}
	if filter.ChangeType != nil {
		c.add("h.change_type = $%d", string(*filter.ChangeType))
	}
	if filter.StartDate != nil {
		c.add("h.created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		c.add("h.created_at <= $%d", *filter.EndDate)
	}
	limit, args := c.page(page.Normalize())

	query := `
		SELECT h.id, h.product_id, h.change_type, h.quantity_change, h.previous_stock, h.new_stock,
		       COALESCE(h.reason, ''), h.created_at, p.name, p.sku
		FROM inventory_history h
		JOIN products p ON p.id = h.product_id
		` + c.where() + `
		ORDER BY h.created_at DESC, h.id DESC
		` + limit

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory history: %w", err)
	}
	defer rows.Close()

	entries := []domain.InventoryHistoryEntry{}
	for rows.Next() {
		var e domain.InventoryHistoryEntry
		err := rows.Scan(
			&e.ID,
			&e.ProductID,
			&e.ChangeType,
			&e.QuantityChange,
			&e.PreviousStock,
			&e.NewStock,
			&e.Reason,
			&e.CreatedAt,
			&e.ProductName,
			&e.SKU,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory history: %w", err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory history: %w", err)
	}

	return entries, nil
}
