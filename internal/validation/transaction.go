package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - propertyId: Must be a valid UUID
//   - type: Must be INCOME or EXPENSE
//   - amount: Must be positive
//   - transactionDate: Must be in YYYY-MM-DD format
//
// Optional fields:
//   - categoryId: Must be a valid UUID if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(fieldErrors)

	if err := ValidateUUID(req.PropertyID); err != nil {
		errors["propertyId"] = err.Error()
	}

	if req.CategoryID != nil {
		if err := ValidateUUID(*req.CategoryID); err != nil {
			errors["categoryId"] = err.Error()
		}
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !model.ValidTransactionTypes[model.TransactionType(req.Type)] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if !validAmount(req.Amount) {
		errors["amount"] = "amount must be at least 0.01"
	}

	if strings.TrimSpace(req.TransactionDate) == "" {
		errors["transactionDate"] = "transactionDate is required"
	} else if _, err := ParseDate(req.TransactionDate); err != nil {
		errors["transactionDate"] = err.Error()
	}

	return errors.err()
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(fieldErrors)

	if req.PropertyID != nil {
		if err := ValidateUUID(*req.PropertyID); err != nil {
			errors["propertyId"] = err.Error()
		}
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if err := ValidateUUID(*req.CategoryID); err != nil {
			errors["categoryId"] = err.Error()
		}
	}
	if req.Type != nil {
		if strings.TrimSpace(*req.Type) == "" {
			errors["type"] = "type is required"
		} else if !model.ValidTransactionTypes[model.TransactionType(*req.Type)] {
			errors["type"] = fmt.Sprintf("invalid type: %s", *req.Type)
		}
	}
	if req.Amount != nil && !validAmount(*req.Amount) {
		errors["amount"] = "amount must be at least 0.01"
	}
	if req.TransactionDate != nil {
		if _, err := ParseDate(*req.TransactionDate); err != nil {
			errors["transactionDate"] = err.Error()
		}
	}

	return errors.err()
}

// validAmount reports whether amount stays positive once rounded to the ledger's two decimals.
func validAmount(amount decimal.Decimal) bool {
	return amount.Round(2).IsPositive()
}
