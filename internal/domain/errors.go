package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateInventory  = errors.New("inventory record already exists for product")
	ErrDuplicateSKU        = errors.New("product with this SKU already exists")
	ErrInsufficientStock   = errors.New("insufficient stock for this operation")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidChangeType   = errors.New("invalid change type")
	ErrConcurrencyConflict = errors.New("concurrent inventory update conflict")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidPlatform     = errors.New("invalid platform")
)

// InsufficientStockError reports a change that would drive stock negative.
type InsufficientStockError struct {
	ProductID      int64
	CurrentStock   int
	QuantityChange int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: current %d, change %d",
		e.ProductID, e.CurrentStock, e.QuantityChange)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidPeriodError reports an unrecognized analytics granularity.
type InvalidPeriodError struct {
	Period string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q: must be one of daily, weekly, monthly, yearly", e.Period)
}

func (e *InvalidPeriodError) Is(target error) bool {
	return target == ErrInvalidPeriod
}
