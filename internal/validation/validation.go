package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID      = apperrors.ErrInvalidUUID
	ErrInvalidDateRange = apperrors.ErrInvalidDateRange
	ErrInvalidMonth     = apperrors.ErrInvalidMonth
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(str string) (time.Time, error) {
	t, err := time.Parse(DateLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, str)
	}
	return t, nil
}

// ValidateDateRange rejects a range whose start is after its end. Open bounds are allowed.
func ValidateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return fmt.Errorf("%w: dateFrom %s is after dateTo %s",
			ErrInvalidDateRange, from.Format(DateLayout), to.Format(DateLayout))
	}
	return nil
}

// ValidateMonth checks that month is within 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return nil
}
