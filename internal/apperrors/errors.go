package apperrors

import (
	"context"
	"errors"
)

// Domain entity errors represent missing entities. An entity owned by another user
// is reported with the same error so ownership is never leaked.
var (
	// ErrPropertyNotFound indicates that a property does not exist or belongs to a different user.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrTransactionNotFound indicates that a transaction does not exist or belongs to a different user.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCategoryNotFound indicates that a referenced category does not exist or is inactive.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrMetricNotFound indicates that no aggregate row has been stored for a period yet.
	ErrMetricNotFound = errors.New("monthly metric not found")
)

// Validation errors represent bad input shape or range. They are never retried.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

	// ErrInvalidParameter indicates a malformed query or body parameter.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidMonth indicates a month outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidGranularity indicates an unknown granularity, or one that cannot be served
	// by the selected data source.
	ErrInvalidGranularity = errors.New("invalid granularity")

	// ErrTooManyBuckets indicates that a granularity would produce more trend buckets than allowed.
	ErrTooManyBuckets = errors.New("granularity produces too many buckets for the requested window")

	// ErrInvalidSortBy indicates an unknown ranking sort key.
	ErrInvalidSortBy = errors.New("invalid sortBy")

	// ErrInvalidChartType indicates an unknown chart type.
	ErrInvalidChartType = errors.New("invalid chartType")

	// ErrFutureDate indicates a transaction dated after today.
	ErrFutureDate = errors.New("transaction date cannot be in the future")

	// ErrCategoryTypeMismatch indicates a category whose type differs from the transaction type.
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")

	// ErrMissingUserID indicates that no verified user identity accompanied the request.
	ErrMissingUserID = errors.New("user identity is required")
)

// Transient errors. Every reconciliation operation is idempotent, so the whole call is safe to retry.
var (
	// ErrCalculationFailed indicates the metrics calculator could not read the ledger.
	ErrCalculationFailed = errors.New("metric calculation failed")

	// ErrStoreUnavailable indicates a store call failed or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Data integrity errors represent inconsistencies in the derived data.
var (
	// ErrStaleAggregate indicates that a stored monthly metric disagrees with the ledger.
	ErrStaleAggregate = errors.New("stale aggregate detected")
)

// Operation failure errors used as user-facing messages by the HTTP layer.
var (
	ErrFailedToRetrieveProperties   = errors.New("failed to retrieve properties")
	ErrFailedToRetrieveCategories   = errors.New("failed to retrieve categories")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToUpdateTransaction    = errors.New("failed to update transaction")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToRestoreTransaction   = errors.New("failed to restore transaction")
	ErrFailedToReconcile            = errors.New("failed to reconcile monthly metrics")
	ErrFailedToValidate             = errors.New("failed to validate monthly metric")
	ErrFailedToGetKPIs              = errors.New("failed to get KPIs")
	ErrFailedToGetCharts            = errors.New("failed to get charts")
	ErrFailedToGetComparison        = errors.New("failed to get property comparison")
)

// IsRetryable reports whether err is a transient store or calculation failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCalculationFailed) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsValidation reports whether err is one of the input validation sentinels.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDateRange, ErrInvalidDate, ErrInvalidParameter, ErrInvalidMonth, ErrInvalidUUID, ErrInvalidGranularity,
		ErrTooManyBuckets, ErrInvalidSortBy, ErrInvalidChartType, ErrFutureDate,
		ErrCategoryTypeMismatch, ErrMissingUserID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing-or-foreign entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrMetricNotFound)
}
