package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("inventory-ledger/service")

// InitialStockReason is recorded on the history entry of a record created
// with stock on hand.
const InitialStockReason = "Initial stock"

// applyStockChange is the single write path for stock. It must run inside a
// transaction: the row lock taken by FindByProductIDForUpdate serializes
// concurrent changes to the same product until commit.
func applyStockChange(
	ctx context.Context,
	repos repository.Repositories,
	productID int64,
	quantityChange int,
	changeType domain.ChangeType,
	reason string,
) (*domain.InventoryRecord, *domain.InventoryHistoryEntry, error) {
	if !changeType.Valid() {
		return nil, nil, domain.ErrInvalidChangeType
	}

	current, err := repos.Inventory.FindByProductIDForUpdate(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	newStock := current.CurrentStock + quantityChange
	if newStock > math.MaxInt32 {
		return nil, nil, fmt.Errorf("stock of product %d would exceed %d: %w", productID, math.MaxInt32, domain.ErrInvalidQuantity)
	}
	if newStock < 0 {
		return nil, nil, &domain.InsufficientStockError{
			ProductID:      productID,
			CurrentStock:   current.CurrentStock,
			QuantityChange: quantityChange,
		}
	}

	updated, err := repos.Inventory.UpdateStock(ctx, productID, newStock)
	if err != nil {
		return nil, nil, err
	}

	entry := &domain.InventoryHistoryEntry{
		ProductID:      productID,
		ChangeType:     changeType,
		QuantityChange: quantityChange,
		PreviousStock:  current.CurrentStock,
		NewStock:       newStock,
		Reason:         reason,
	}
	if err := repos.History.Append(ctx, entry); err != nil {
		return nil, nil, err
	}

	return updated, entry, nil
}

// createInventoryRecord must run inside a transaction so the record and its
// opening history entry are stored together.
func createInventoryRecord(
	ctx context.Context,
	repos repository.Repositories,
	productID int64,
	initialStock, reorderLevel int,
) (*domain.InventoryRecord, error) {
	if initialStock < 0 || reorderLevel < 0 || initialStock > math.MaxInt32 || reorderLevel > math.MaxInt32 {
		return nil, domain.ErrInvalidQuantity
	}

	rec, err := repos.Inventory.Create(ctx, productID, initialStock, reorderLevel)
	if err != nil {
		return nil, err
	}

	if initialStock > 0 {
		entry := &domain.InventoryHistoryEntry{
			ProductID:      productID,
			ChangeType:     domain.ChangeTypePurchase,
			QuantityChange: initialStock,
			PreviousStock:  0,
			NewStock:       initialStock,
			Reason:         InitialStockReason,
		}
		if err := repos.History.Append(ctx, entry); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// txRunner runs ledger transactions, retrying those that fail with
// ErrConcurrencyConflict up to maxRetries times. All other errors are
// returned as they are.
type txRunner struct {
	tx         repository.Transactor
	maxRetries int
	logger     *zap.Logger
}

func (r *txRunner) run(ctx context.Context, op string, fn func(repos repository.Repositories) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.Reset()

	retries := r.maxRetries
	if retries < 0 {
		retries = 0
	}

	attempt := func() error {
		err := r.tx.WithinTx(ctx, fn)
		if err != nil && !errors.Is(err, domain.ErrConcurrencyConflict) {
			return backoff.Permanent(err)
		}
		return err
	}

	retry := 0
	notify := func(err error, wait time.Duration) {
		retry++
		r.logger.Warn("Retrying ledger transaction after conflict",
			zap.String("operation", op),
			zap.Int("attempt", retry),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
	return backoff.RetryNotify(attempt, policy, notify)
}

// finishSpan records err on span and ends it
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
