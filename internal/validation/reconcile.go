package validation

import (
	"time"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// ValidateReconcileRequest validates a reconcile request body and converts it into options.
//
// Optional fields (validated if provided):
//   - propertyId: Must be a valid UUID
//   - fromDate, toDate: Must be in YYYY-MM-DD format, fromDate not after toDate
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateReconcileRequest(req request.ReconcileRequest) (model.ReconcileOptions, error) {
	errors := make(fieldErrors)
	opts := model.ReconcileOptions{
		PropertyID: req.PropertyID,
		Cleanup:    req.Cleanup,
		Validate:   req.Validate,
	}

	if req.PropertyID != "" {
		if err := ValidateUUID(req.PropertyID); err != nil {
			errors["propertyId"] = err.Error()
		}
	}

	opts.FromDate = parseOptionalDate(req.FromDate, "fromDate", errors)
	opts.ToDate = parseOptionalDate(req.ToDate, "toDate", errors)

	if err := errors.err(); err != nil {
		return model.ReconcileOptions{}, err
	}

	if err := ValidateDateRange(opts.FromDate, opts.ToDate); err != nil {
		return model.ReconcileOptions{}, err
	}

	return opts, nil
}

func parseOptionalDate(value, field string, errors fieldErrors) *time.Time {
	if value == "" {
		return nil
	}
	t, err := ParseDate(value)
	if err != nil {
		errors[field] = err.Error()
		return nil
	}
	return &t
}
