package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InventoryService is the inventory ledger: the only component that changes
// stock. Every change is applied together with its history entry or not at
// all.
type InventoryService interface {
	ApplyStockChange(ctx context.Context, productID int64, quantityChange int, changeType domain.ChangeType, reason string) (*domain.InventoryRecord, error)
	CreateInventoryRecord(ctx context.Context, productID int64, initialStock, reorderLevel int) (*domain.InventoryRecord, error)
	RecordSale(ctx context.Context, sale domain.NewSale) (*domain.Sale, error)
	GetLowStockAlerts(ctx context.Context) ([]domain.LowStockAlert, error)
	GetHistory(ctx context.Context, filter domain.HistoryFilter, page domain.Pagination) ([]domain.InventoryHistoryEntry, error)
	GetInventoryStatus(ctx context.Context, filter domain.InventoryFilter, page domain.Pagination) ([]domain.InventoryStatus, *domain.InventorySummary, error)
}

type inventoryService struct {
	runner *txRunner
	repos  repository.Repositories
	logger *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService. repos serve
// the read operations; writes run through tx.
func NewInventoryService(
	tx repository.Transactor,
	repos repository.Repositories,
	maxConflictRetries int,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		runner: &txRunner{tx: tx, maxRetries: maxConflictRetries, logger: logger},
		repos:  repos,
		logger: logger,
	}
}

func (s *inventoryService) ApplyStockChange(
	ctx context.Context,
	productID int64,
	quantityChange int,
	changeType domain.ChangeType,
	reason string,
) (rec *domain.InventoryRecord, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.ApplyStockChange", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("inventory.quantity_change", quantityChange),
		attribute.String("inventory.change_type", string(changeType)),
	))
	defer func() { finishSpan(span, err) }()

	var entry *domain.InventoryHistoryEntry
	err = s.runner.run(ctx, "apply stock change", func(repos repository.Repositories) error {
		var txErr error
		rec, entry, txErr = applyStockChange(ctx, repos, productID, quantityChange, changeType, reason)
		return txErr
	})
	if err != nil {
		s.logFailure("Stock change rejected", err, zap.Int64("product_id", productID), zap.Int("quantity_change", quantityChange))
		return nil, err
	}

	s.logger.Info("Stock change applied",
		zap.Int64("product_id", productID),
		zap.String("change_type", string(changeType)),
		zap.Int("previous_stock", entry.PreviousStock),
		zap.Int("new_stock", entry.NewStock),
	)
	return rec, nil
}

func (s *inventoryService) CreateInventoryRecord(ctx context.Context, productID int64, initialStock, reorderLevel int) (rec *domain.InventoryRecord, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.CreateInventoryRecord", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("inventory.initial_stock", initialStock),
	))
	defer func() { finishSpan(span, err) }()

	err = s.runner.run(ctx, "create inventory record", func(repos repository.Repositories) error {
		var txErr error
		rec, txErr = createInventoryRecord(ctx, repos, productID, initialStock, reorderLevel)
		return txErr
	})
	if err != nil {
		s.logFailure("Inventory record not created", err, zap.Int64("product_id", productID))
		return nil, err
	}

	s.logger.Info("Inventory record created",
		zap.Int64("product_id", productID),
		zap.Int("initial_stock", initialStock),
		zap.Int("reorder_level", reorderLevel),
	)
	return rec, nil
}

// RecordSale stores the sale and takes its quantity out of stock in one
// transaction. When stock is insufficient neither is stored.
func (s *inventoryService) RecordSale(ctx context.Context, sale domain.NewSale) (created *domain.Sale, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.RecordSale", trace.WithAttributes(
		attribute.Int64("product.id", sale.ProductID),
		attribute.Int("sale.quantity", sale.Quantity),
		attribute.String("sale.platform", string(sale.Platform)),
	))
	defer func() { finishSpan(span, err) }()

	if sale.Quantity <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive: %w", domain.ErrInvalidQuantity)
	}
	if !sale.Platform.Valid() {
		return nil, domain.ErrInvalidPlatform
	}

	err = s.runner.run(ctx, "record sale", func(repos repository.Repositories) error {
		if _, _, txErr := applyStockChange(ctx, repos, sale.ProductID, -sale.Quantity, domain.ChangeTypeSale, domain.SaleReason); txErr != nil {
			return txErr
		}
		var txErr error
		created, txErr = repos.Sales.Create(ctx, sale)
		return txErr
	})
	if err != nil {
		s.logFailure("Sale not recorded", err, zap.Int64("product_id", sale.ProductID), zap.Int("quantity", sale.Quantity))
		return nil, err
	}

	s.logger.Info("Sale recorded",
		zap.Int64("sale_id", created.ID),
		zap.Int64("product_id", created.ProductID),
		zap.Int("quantity", created.Quantity),
		zap.String("total_amount", created.TotalAmount.StringFixed(2)),
	)
	return created, nil
}

func (s *inventoryService) GetLowStockAlerts(ctx context.Context) (alerts []domain.LowStockAlert, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.GetLowStockAlerts")
	defer func() { finishSpan(span, err) }()

	return s.repos.Inventory.ListLowStock(ctx)
}

func (s *inventoryService) GetHistory(ctx context.Context, filter domain.HistoryFilter, page domain.Pagination) (entries []domain.InventoryHistoryEntry, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.GetHistory")
	defer func() { finishSpan(span, err) }()

	if filter.ChangeType != nil && !filter.ChangeType.Valid() {
		return nil, domain.ErrInvalidChangeType
	}
	return s.repos.History.List(ctx, filter, page.Normalize())
}

// GetInventoryStatus lists inventory with a summary over the category filter.
// The summary ignores the low stock filter and pagination.
func (s *inventoryService) GetInventoryStatus(
	ctx context.Context,
	filter domain.InventoryFilter,
	page domain.Pagination,
) (statuses []domain.InventoryStatus, summary *domain.InventorySummary, err error) {
	ctx, span := tracer.Start(ctx, "InventoryService.GetInventoryStatus")
	defer func() { finishSpan(span, err) }()

	statuses, err = s.repos.Inventory.ListStatus(ctx, filter, page.Normalize())
	if err != nil {
		return nil, nil, err
	}

	summary, err = s.repos.Inventory.Summary(ctx, filter.Category)
	if err != nil {
		return nil, nil, err
	}

	return statuses, summary, nil
}

// logFailure logs expected domain rejections at info and everything else
// at error
func (s *inventoryService) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isDomainError(err) {
		s.logger.Info(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrProductNotFound,
		domain.ErrDuplicateInventory,
		domain.ErrDuplicateSKU,
		domain.ErrInsufficientStock,
		domain.ErrInvalidChangeType,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidPlatform,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
