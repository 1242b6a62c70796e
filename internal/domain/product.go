package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for prices and amounts.
const MoneyScale = 2

// RoundMoney rounds d half away from zero to whole cents, as the store does.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// IsWholeCents reports whether d has no digits beyond MoneyScale.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	SKU         string          `json:"sku" db:"sku"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// NewProduct carries the attributes of a product to be created together with
// its inventory record.
type NewProduct struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     string
	SKU          string
	InitialStock int
	ReorderLevel int
}

// ProductUpdate carries the mutable attributes of a product.
type ProductUpdate struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
}

// ProductDetail is a product joined with its inventory counters.
type ProductDetail struct {
	Product
	CurrentStock   int        `json:"current_stock"`
	ReservedStock  int        `json:"reserved_stock"`
	AvailableStock int        `json:"available_stock"`
	ReorderLevel   int        `json:"reorder_level"`
	StockUpdatedAt *time.Time `json:"inventory_last_updated,omitempty"`
	IsLowStock     bool       `json:"is_low_stock"`
}

// ProductFilter narrows product listings. Nil fields are not applied.
type ProductFilter struct {
	Category *string
	Search   *string
}

// CategorySummary aggregates catalog figures for one category.
type CategorySummary struct {
	Category     string          `json:"category" db:"category"`
	ProductCount int             `json:"product_count" db:"product_count"`
	AvgPrice     decimal.Decimal `json:"avg_price" db:"avg_price"`
	TotalStock   int             `json:"total_stock" db:"total_stock"`
}
