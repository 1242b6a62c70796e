package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-ledger/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same repository code
// runs inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repositories groups the ledger repositories bound to one DBTX
type Repositories struct {
	Products  ProductRepository
	Inventory InventoryRepository
	History   HistoryRepository
	Sales     SaleRepository
}

// NewRepositories binds every repository to db
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Products:  NewProductRepository(db),
		Inventory: NewInventoryRepository(db),
		History:   NewHistoryRepository(db),
		Sales:     NewSaleRepository(db),
	}
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

type sqlTransactor struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewTransactor creates a Transactor on db. A positive lockTimeout bounds how
// long a statement waits for a row lock before failing with a conflict.
func NewTransactor(db *sql.DB, lockTimeout time.Duration) Transactor {
	return &sqlTransactor{db: db, lockTimeout: lockTimeout}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if t.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateError(err, "commit transaction")
	}
	return nil
}

// Postgres error codes mapped onto domain errors
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError maps driver errors onto domain errors and wraps anything
// else with the failed operation.
func translateError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case "products_sku_key":
				return domain.ErrDuplicateSKU
			case "inventory_product_id_key":
				return domain.ErrDuplicateInventory
			}
		case pgForeignKeyViolation:
			return domain.ErrProductNotFound
		case pgCheckViolation:
			if pgErr.ConstraintName == "inventory_current_stock_check" {
				return domain.ErrInsufficientStock
			}
		case pgNumericOutOfRange:
			return fmt.Errorf("failed to %s: %w", op, domain.ErrInvalidQuantity)
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("failed to %s: %w", op, domain.ErrConcurrencyConflict)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// conditions collects AND-ed predicates with positional arguments
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate. format contains a single %d for the placeholder
// index of arg.
func (c *conditions) add(format string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(format, len(c.args)))
}

// raw appends a predicate without arguments
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause and args
func (c *conditions) page(p domain.Pagination) (string, []interface{}) {
	args := append(append([]interface{}{}, c.args...), p.Limit, p.Offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func salesConditions(filter domain.SalesFilter, leading ...interface{}) *conditions {
	c := &conditions{args: leading}
	if filter.StartDate != nil {
		c.add("s.sale_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		c.add("s.sale_date <= $%d", *filter.EndDate)
	}
	if filter.ProductID != nil {
		c.add("s.product_id = $%d", *filter.ProductID)
	}
	if filter.Category != nil {
		c.add("p.category = $%d", *filter.Category)
	}
	if filter.Platform != nil {
		c.add("s.platform = $%d", string(*filter.Platform))
	}
	return c
}
