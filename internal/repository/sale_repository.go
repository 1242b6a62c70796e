package repository

import (
	"context"

	"inventory-ledger/internal/domain"
)

// SaleRepository inserts sales. Sales are append-only; reads go through
// AnalyticsRepository.
type SaleRepository interface {
	Create(ctx context.Context, sale domain.NewSale) (*domain.Sale, error)
}

type saleRepository struct {
	db DBTX
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db DBTX) SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts a sale with total_amount = quantity * unit_price. The unit
// price is rounded to cents first, and the returned sale carries the stored
// amounts.
func (r *saleRepository) Create(ctx context.Context, sale domain.NewSale) (*domain.Sale, error) {
	query := `
		INSERT INTO sales (product_id, quantity, unit_price, total_amount, sale_date, platform, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, unit_price, total_amount, created_at
	`

	created := &domain.Sale{
		ProductID:   sale.ProductID,
		Quantity:    sale.Quantity,
		UnitPrice:   domain.RoundMoney(sale.UnitPrice),
		TotalAmount: sale.Total(),
		SaleDate:    sale.SaleDate.UTC(),
		Platform:    sale.Platform,
		CustomerID:  sale.CustomerID,
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		created.ProductID,
		created.Quantity,
		created.UnitPrice,
		created.TotalAmount,
		created.SaleDate,
		string(created.Platform),
		created.CustomerID,
	).Scan(&created.ID, &created.UnitPrice, &created.TotalAmount, &created.CreatedAt)
	if err != nil {
		return nil, translateError(err, "create sale")
	}

	return created, nil
}
