package repository

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-ledger/internal/domain"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)
	FindDetail(ctx context.Context, id int64) (*domain.ProductDetail, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) ([]domain.ProductDetail, error)
	Categories(ctx context.Context) ([]domain.CategorySummary, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productDetailColumns = `
	p.id, p.name, p.description, p.price, p.category, p.sku, p.created_at, p.updated_at,
	COALESCE(i.current_stock, 0), COALESCE(i.reserved_stock, 0), COALESCE(i.available_stock, 0),
	COALESCE(i.reorder_level, 0), i.last_updated`

// Create inserts a product and fills in its generated id, timestamps and
// stored price
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, category, sku)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, price, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		domain.RoundMoney(product.Price),
		product.Category,
		product.SKU,
	).Scan(&product.ID, &product.Price, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return translateError(err, "create product")
	}

	return nil
}

// Update replaces the mutable attributes of a product
func (r *productRepository) Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5
		WHERE id = $1
		RETURNING id, name, description, price, category, sku, created_at, updated_at
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id, update.Name, update.Description, domain.RoundMoney(update.Price), update.Category).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.SKU,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, translateError(err, "update product")
	}

	return product, nil
}

// FindDetail retrieves a product together with its inventory counters
func (r *productRepository) FindDetail(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	query := `SELECT ` + productDetailColumns + `
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1
	`

	detail, err := scanProductDetail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product detail: %w", err)
	}

	return detail, nil
}

// List retrieves products newest first. Search matches name, description
// and sku case-insensitively.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) ([]domain.ProductDetail, error) {
	c := &conditions{}
	if filter.Category != nil {
		c.add("p.category = $%d", *filter.Category)
	}
	if filter.Search != nil && *filter.Search != "" {
		c.add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.sku ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}
	limit, args := c.page(page.Normalize())

	query := `SELECT ` + productDetailColumns + `
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		` + c.where() + `
		ORDER BY p.created_at DESC, p.id DESC
		` + limit

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.ProductDetail{}
	for rows.Next() {
		detail, err := scanProductDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *detail)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Categories summarizes the catalog per category, largest first
func (r *productRepository) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	query := `
		SELECT p.category,
		       COUNT(*) AS product_count,
		       ROUND(AVG(p.price), 2) AS avg_price,
		       COALESCE(SUM(i.current_stock), 0) AS total_stock
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		GROUP BY p.category
		ORDER BY product_count DESC, p.category
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.CategorySummary{}
	for rows.Next() {
		var c domain.CategorySummary
		if err := rows.Scan(&c.Category, &c.ProductCount, &c.AvgPrice, &c.TotalStock); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProductDetail(row rowScanner) (*domain.ProductDetail, error) {
	d := &domain.ProductDetail{}
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Price,
		&d.Category,
		&d.SKU,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.CurrentStock,
		&d.ReservedStock,
		&d.AvailableStock,
		&d.ReorderLevel,
		&d.StockUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.IsLowStock = d.StockUpdatedAt != nil && d.AvailableStock <= d.ReorderLevel
	return d, nil
}
