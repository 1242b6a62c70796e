package transport

import (
	"errors"
	"net/http"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/middleware"

	"go.uber.org/zap"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrDuplicateInventory),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidChangeType),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPlatform):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithServiceError writes err as a structured error. Unexpected
// errors are logged and hidden behind fallback.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, status, fallback)
		return
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		middleware.RespondWithErrorDetails(w, status, err.Error(), map[string]interface{}{
			"product_id":      stockErr.ProductID,
			"current_stock":   stockErr.CurrentStock,
			"quantity_change": stockErr.QuantityChange,
		})
		return
	}

	middleware.RespondWithError(w, status, err.Error())
}

// respondWithDecodeError answers a body that failed DecodeAndValidate
func respondWithDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}
