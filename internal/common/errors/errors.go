// Package errors provides the standardized error taxonomy of the
// recommendation engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Per-entity, recoverable: the offending property or service is scored
	// with a zero sub-score (or excluded from the index) and annotated.
	ErrCodeInvalidCoordinate ErrorCode = "INVALID_COORDINATE"
	ErrCodeCurrencyMismatch  ErrorCode = "CURRENCY_MISMATCH"

	// Request-level, fatal: surfaced to the caller before any scoring work.
	ErrCodeInvalidProfile ErrorCode = "INVALID_PROFILE"
	ErrCodeInvalidWeights ErrorCode = "INVALID_WEIGHTS"

	// External collaborator and budget failures. Retries, if desired, belong
	// to the calling layer; the engine never retries on its own.
	ErrCodeRepositoryError ErrorCode = "REPOSITORY_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidCoordinateError flags malformed geodata on a single entity.
func NewInvalidCoordinateError(entityID string, lat, lng float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCoordinate,
		Message:   "Coordinate outside valid WGS84 ranges",
		Details:   fmt.Sprintf("entity %s: lat=%f lng=%f", entityID, lat, lng),
		Retryable: false,
		Metadata:  map[string]interface{}{"entityId": entityID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidProfileError fails a request before any scoring work begins.
func NewInvalidProfileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWeightsError rejects negative or all-zero weight overrides.
func NewInvalidWeightsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWeights,
		Message:   "Criterion weights must be non-negative and not all zero",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCurrencyMismatchError marks a price that cannot be compared to the
// profile budget because no conversion rate was supplied.
func NewCurrencyMismatchError(propertyCurrency, profileCurrency string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCurrencyMismatch,
		Message:   "Property and profile currencies differ and no conversion rate was supplied",
		Details:   fmt.Sprintf("property=%s profile=%s", propertyCurrency, profileCurrency),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRepositoryError wraps a connectivity or IO failure from an external
// collaborator. Marked retryable for the caller's benefit.
func NewRepositoryError(op string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRepositoryError,
		Message:   "Repository operation failed",
		Details:   fmt.Sprintf("%s: %v", op, cause),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError marks a request aborted after exceeding its budget.
func NewTimeoutError(op string, budget time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Request exceeded its time budget",
		Details:   fmt.Sprintf("%s: budget %s", op, budget),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// CodeOf extracts the error code, or empty string for foreign errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRecoverable reports whether the error is a per-entity condition the
// batch recovers from locally.
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidCoordinate, ErrCodeCurrencyMismatch:
		return true
	}
	return false
}
