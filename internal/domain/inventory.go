package domain

import (
	"time"
)

// ChangeType classifies a stock mutation recorded in the inventory history.
type ChangeType string

const (
	ChangeTypePurchase   ChangeType = "purchase"
	ChangeTypeSale       ChangeType = "sale"
	ChangeTypeAdjustment ChangeType = "adjustment"
	ChangeTypeReturn     ChangeType = "return"
)

// Valid reports whether c is one of the recognized change types.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeTypePurchase, ChangeTypeSale, ChangeTypeAdjustment, ChangeTypeReturn:
		return true
	}
	return false
}

// Default reorder level applied when a product is created without one.
const DefaultReorderLevel = 10

// InventoryRecord holds the stock counters of exactly one product.
//
// AvailableStock is always CurrentStock - ReservedStock. It is produced by the
// store as a generated column and is never written directly.
type InventoryRecord struct {
	ID             int64     `json:"id" db:"id"`
	ProductID      int64     `json:"product_id" db:"product_id"`
	CurrentStock   int       `json:"current_stock" db:"current_stock"`
	ReservedStock  int       `json:"reserved_stock" db:"reserved_stock"`
	AvailableStock int       `json:"available_stock" db:"available_stock"`
	ReorderLevel   int       `json:"reorder_level" db:"reorder_level"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

// Available returns the stock that is not reserved.
func (r *InventoryRecord) Available() int {
	return r.CurrentStock - r.ReservedStock
}

// IsLowStock reports whether available stock has fallen to the reorder level.
func (r *InventoryRecord) IsLowStock() bool {
	return r.Available() <= r.ReorderLevel
}

// InventoryHistoryEntry is an immutable record of one stock mutation.
// NewStock always equals PreviousStock + QuantityChange.
type InventoryHistoryEntry struct {
	ID             int64      `json:"id" db:"id"`
	ProductID      int64      `json:"product_id" db:"product_id"`
	ChangeType     ChangeType `json:"change_type" db:"change_type"`
	QuantityChange int        `json:"quantity_change" db:"quantity_change"`
	PreviousStock  int        `json:"previous_stock" db:"previous_stock"`
	NewStock       int        `json:"new_stock" db:"new_stock"`
	Reason         string     `json:"reason,omitempty" db:"reason"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ProductName    string     `json:"product_name,omitempty" db:"product_name"`
	SKU            string     `json:"sku,omitempty" db:"sku"`
}

// HistoryFilter narrows inventory history queries. Nil fields are not applied.
type HistoryFilter struct {
	ProductID  *int64
	ChangeType *ChangeType
	StartDate  *time.Time
	EndDate    *time.Time
}

// LowStockAlert is an inventory record whose available stock is at or below
// its reorder level.
type LowStockAlert struct {
	InventoryRecord
	ProductName    string `json:"product_name"`
	Category       string `json:"category"`
	SKU            string `json:"sku"`
	ShortageAmount int    `json:"shortage_amount"`
}

// InventoryFilter narrows the inventory status listing.
type InventoryFilter struct {
	Category *string
	LowStock bool
}

// InventoryStatus is an inventory record joined with its product.
type InventoryStatus struct {
	InventoryRecord
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	SKU         string `json:"sku"`
	IsLowStock  bool   `json:"is_low_stock"`
}

// InventorySummary aggregates stock figures over an inventory listing.
type InventorySummary struct {
	TotalProducts       int     `json:"total_products"`
	LowStockCount       int     `json:"low_stock_count"`
	TotalAvailableStock int     `json:"total_available_stock"`
	AvgStockLevel       float64 `json:"avg_stock_level"`
}
