package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
)

const testID = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0001"

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	return vErr.Fields
}

func TestValidateCreateTransaction(t *testing.T) {
	valid := func() request.CreateTransactionRequest {
		return request.CreateTransactionRequest{
			PropertyID:      testID,
			Type:            "EXPENSE",
			Amount:          decimal.RequireFromString("12.50"),
			TransactionDate: "2024-02-29",
		}
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := ValidateCreateTransaction(valid()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*request.CreateTransactionRequest)
		field  string
	}{
		{"invalid property id", func(r *request.CreateTransactionRequest) { r.PropertyID = "abc" }, "propertyId"},
		{"invalid category id", func(r *request.CreateTransactionRequest) { c := "abc"; r.CategoryID = &c }, "categoryId"},
		{"missing type", func(r *request.CreateTransactionRequest) { r.Type = "" }, "type"},
		{"lowercase type", func(r *request.CreateTransactionRequest) { r.Type = "income" }, "type"},
		{"zero amount", func(r *request.CreateTransactionRequest) { r.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(r *request.CreateTransactionRequest) { r.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"amount rounds to zero", func(r *request.CreateTransactionRequest) { r.Amount = decimal.RequireFromString("0.004") }, "amount"},
		{"missing date", func(r *request.CreateTransactionRequest) { r.TransactionDate = "" }, "transactionDate"},
		{"impossible date", func(r *request.CreateTransactionRequest) { r.TransactionDate = "2023-02-29" }, "transactionDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			got := fields(t, ValidateCreateTransaction(req))
			if _, ok := got[tt.field]; !ok || len(got) != 1 {
				t.Errorf("Expected only a %s error, got %v", tt.field, got)
			}
		})
	}
}

func TestValidateUpdateTransaction(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		if err := ValidateUpdateTransaction(request.UpdateTransactionRequest{}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("empty category clears it", func(t *testing.T) {
		empty := ""
		if err := ValidateUpdateTransaction(request.UpdateTransactionRequest{CategoryID: &empty}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("amount must survive rounding to cents", func(t *testing.T) {
		tiny := decimal.RequireFromString("0.004")
		if _, ok := fields(t, ValidateUpdateTransaction(request.UpdateTransactionRequest{Amount: &tiny}))["amount"]; !ok {
			t.Errorf("Expected an amount error for %s", tiny)
		}

		smallest := decimal.RequireFromString("0.005")
		if err := ValidateUpdateTransaction(request.UpdateTransactionRequest{Amount: &smallest}); err != nil {
			t.Errorf("Expected %s to round up to 0.01, got %v", smallest, err)
		}
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		bad, badType, badDate := "abc", "DIVIDEND", "2024/01/01"
		amount := decimal.Zero

		got := fields(t, ValidateUpdateTransaction(request.UpdateTransactionRequest{
			PropertyID:      &bad,
			Type:            &badType,
			Amount:          &amount,
			TransactionDate: &badDate,
		}))
		for _, field := range []string{"propertyId", "type", "amount", "transactionDate"} {
			if _, ok := got[field]; !ok {
				t.Errorf("Expected a %s error, got %v", field, got)
			}
		}
	})
}

func TestValidateReconcileRequest(t *testing.T) {
	t.Run("empty request reconciles the user", func(t *testing.T) {
		opts, err := ValidateReconcileRequest(request.ReconcileRequest{})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if opts.PropertyID != "" || opts.FromDate != nil || opts.ToDate != nil {
			t.Errorf("Expected empty options, got %+v", opts)
		}
	})

	t.Run("parses dates and flags", func(t *testing.T) {
		opts, err := ValidateReconcileRequest(request.ReconcileRequest{
			PropertyID: testID,
			FromDate:   "2024-01-01",
			ToDate:     "2024-01-01",
			Cleanup:    true,
			Validate:   true,
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if opts.FromDate == nil || !opts.FromDate.Equal(*opts.ToDate) || !opts.Cleanup || !opts.Validate {
			t.Errorf("Unexpected options %+v", opts)
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		_, err := ValidateReconcileRequest(request.ReconcileRequest{FromDate: "yesterday"})
		if _, ok := fields(t, err)["fromDate"]; !ok {
			t.Errorf("Expected a fromDate error, got %v", err)
		}
	})

	t.Run("rejects a reversed range", func(t *testing.T) {
		_, err := ValidateReconcileRequest(request.ReconcileRequest{FromDate: "2024-02-01", ToDate: "2024-01-01"})
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}

func TestValidateMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		if err := ValidateMonth(month); !errors.Is(err, apperrors.ErrInvalidMonth) {
			t.Errorf("ValidateMonth(%d) = %v, want ErrInvalidMonth", month, err)
		}
	}
	for _, month := range []int{1, 12} {
		if err := ValidateMonth(month); err != nil {
			t.Errorf("ValidateMonth(%d) = %v, want nil", month, err)
		}
	}
}

func TestError_Error(t *testing.T) {
	err := &Error{Fields: map[string]string{"type": "required", "amount": "must be positive"}}

	if got, want := err.Error(), "amount: must be positive; type: required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
