package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"inventory-ledger/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Compare decimals with the numeric tags (gt, gte, ...)
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return domain.Platform(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("change_type", func(fl validator.FieldLevel) bool {
		return domain.ChangeType(fl.Field().String()).Valid()
	})
	// Prices are stored in whole cents; sub-cent input would be rounded away
	_ = validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case decimal.Decimal:
			return domain.IsWholeCents(v)
		case float64:
			return domain.IsWholeCents(decimal.NewFromFloat(v))
		}
		return false
	})
	// Stock adjustments cannot be recorded as sales; sales go through /api/sales
	_ = validate.RegisterValidation("adjustment_type", func(fl validator.FieldLevel) bool {
		ct := domain.ChangeType(fl.Field().String())
		return ct.Valid() && ct != domain.ChangeTypeSale
	})
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ErrMalformedBody is returned by DecodeAndValidate for bodies that are not
// valid JSON
var ErrMalformedBody = errors.New("malformed request body")

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			out = append(out, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return out
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "ne":
		return "Value must not be " + e.Param()
	case "money":
		return "Value must have at most 2 decimal places"
	case "platform":
		return "Platform must be one of: amazon, walmart"
	case "change_type":
		return "Change type must be one of: purchase, sale, adjustment, return"
	case "adjustment_type":
		return "Change type must be one of: purchase, adjustment, return"
	default:
		return "Invalid value"
	}
}
