package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-ledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

// AnalyticsRepository runs the read-only sales queries. It never writes.
type AnalyticsRepository interface {
	ListSales(ctx context.Context, filter domain.SalesFilter, page domain.Pagination) ([]domain.SaleView, int, error)
	Analytics(ctx context.Context, period domain.Period, filter domain.SalesFilter) ([]domain.SalesAnalytics, error)
	ByCategory(ctx context.Context, filter domain.SalesFilter) ([]domain.CategorySales, error)
	// RevenueSince returns per-bucket revenue from since onwards, oldest first
	RevenueSince(ctx context.Context, period domain.Period, since time.Time) ([]domain.PeriodRevenue, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository wraps the shared pool for struct scanning
func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: sqlx.NewDb(db, "pgx")}
}

const salesFrom = `
	FROM sales s
	JOIN products p ON p.id = s.product_id
`

// ListSales returns one page of sales newest first and the size of the
// whole filtered set. Both queries read the same snapshot, so the total
// always agrees with the page.
func (r *analyticsRepository) ListSales(ctx context.Context, filter domain.SalesFilter, page domain.Pagination) ([]domain.SaleView, int, error) {
	c := salesConditions(filter)

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin sales snapshot: %w", err)
	}
	// Read-only, nothing to commit
	defer func() { _ = tx.Rollback() }()

	var total int
	countQuery := `SELECT COUNT(*)` + salesFrom + c.where()
	if err := tx.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	limit, args := c.page(page.Normalize())
	query := `
		SELECT s.id, s.product_id, s.quantity, s.unit_price, s.total_amount, s.sale_date,
		       s.platform, s.customer_id, s.created_at,
		       p.name AS product_name, p.category, p.sku
		` + salesFrom + c.where() + `
		ORDER BY s.sale_date DESC, s.id DESC
		` + limit

	sales := []domain.SaleView{}
	if err := tx.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	return sales, total, nil
}

// Analytics buckets filtered sales by period, newest bucket first. Buckets
// are computed in UTC.
func (r *analyticsRepository) Analytics(ctx context.Context, period domain.Period, filter domain.SalesFilter) ([]domain.SalesAnalytics, error) {
	c := salesConditions(filter, period.TruncUnit())

	query := `
		SELECT date_trunc($1, s.sale_date AT TIME ZONE 'UTC') AS period_bucket,
		       COALESCE(SUM(s.total_amount), 0) AS total_revenue,
		       COUNT(*) AS total_orders,
		       COALESCE(SUM(s.quantity), 0) AS total_quantity
		` + salesFrom + c.where() + `
		GROUP BY period_bucket
		ORDER BY period_bucket DESC
	`

	rows := []domain.SalesAnalytics{}
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	return rows, nil
}

// ByCategory rolls filtered sales up per category, highest revenue first
func (r *analyticsRepository) ByCategory(ctx context.Context, filter domain.SalesFilter) ([]domain.CategorySales, error) {
	c := salesConditions(filter)

	query := `
		SELECT p.category,
		       COALESCE(SUM(s.total_amount), 0) AS total_revenue,
		       COALESCE(SUM(s.quantity), 0) AS total_quantity,
		       COUNT(DISTINCT s.product_id) AS product_count,
		       COUNT(*) AS order_count
		` + salesFrom + c.where() + `
		GROUP BY p.category
		ORDER BY total_revenue DESC, p.category
	`

	rows := []domain.CategorySales{}
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales by category: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) RevenueSince(ctx context.Context, period domain.Period, since time.Time) ([]domain.PeriodRevenue, error) {
	query := `
		SELECT date_trunc($1, sale_date AT TIME ZONE 'UTC') AS period_bucket,
		       SUM(total_amount) AS revenue
		FROM sales
		WHERE sale_date >= $2
		GROUP BY period_bucket
		ORDER BY period_bucket ASC
	`

	rows := []domain.PeriodRevenue{}
	if err := r.db.SelectContext(ctx, &rows, query, period.TruncUnit(), since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	for i := range rows {
		rows[i].PeriodBucket = rows[i].PeriodBucket.UTC()
	}
	return rows, nil
}
