package ports

import (
	"errors"
	"fmt"
	"strings"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Simulation Errors
	ErrValidation         = errors.New("validation failed")
	ErrInvalidRange       = errors.New("start date must not be after end date")
	ErrStrategyNotFound   = errors.New("strategy not found")
	ErrInternalSimulation = errors.New("internal simulation error")

	// Terminal / Predictor Errors
	ErrNotConnected          = errors.New("terminal is not connected")
	ErrAlreadyConnected      = errors.New("terminal is already connected")
	ErrOrderRejected         = errors.New("order rejected")
	ErrPredictorUnavailable  = errors.New("confidence predictor unavailable")
	ErrRiskLimitExceeded     = errors.New("risk limit exceeded")
	ErrInsufficientBarsCount = errors.New("not enough bars for evaluation")

	// Database Specific Errors
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

// NewValidationError returns a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: invalid or missing fields: %s", ErrValidation, strings.Join(e.Fields, ", "))
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
