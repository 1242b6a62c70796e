package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform is the marketplace a sale was made on.
type Platform string

const (
	PlatformAmazon  Platform = "amazon"
	PlatformWalmart Platform = "walmart"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	return p == PlatformAmazon || p == PlatformWalmart
}

// SaleReason is the history reason recorded for stock taken by a sale.
const SaleReason = "Sale transaction"

// Sale is an append-only record of units sold. TotalAmount is always
// Quantity * UnitPrice.
type Sale struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	SaleDate    time.Time       `json:"sale_date" db:"sale_date"`
	Platform    Platform        `json:"platform" db:"platform"`
	CustomerID  *string         `json:"customer_id,omitempty" db:"customer_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewSale carries the attributes of a sale to be recorded.
type NewSale struct {
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	SaleDate   time.Time
	Platform   Platform
	CustomerID *string
}

// Total returns quantity times the unit price as stored, in cents.
func (s NewSale) Total() decimal.Decimal {
	return RoundMoney(s.UnitPrice).Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// SaleView is a sale joined with the product attributes used for filtering.
type SaleView struct {
	Sale
	ProductName string `json:"product_name" db:"product_name"`
	Category    string `json:"category" db:"category"`
	SKU         string `json:"sku" db:"sku"`
}

// SalesFilter narrows sales queries and analytics. Nil fields are not applied.
type SalesFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	ProductID *int64
	Category  *string
	Platform  *Platform
}

// Pagination limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Pagination selects a window of an ordered result set.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the pagination to supported bounds.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SalesPage is one page of sales plus the size of the full filtered set.
type SalesPage struct {
	Sales      []SaleView `json:"sales"`
	TotalCount int        `json:"total"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

// HasMore reports whether rows exist beyond this page.
func (p *SalesPage) HasMore() bool {
	return p.Offset+p.Limit < p.TotalCount
}
