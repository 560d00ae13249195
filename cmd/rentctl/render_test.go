package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"usd with thousands", "1234.56", "USD", "$1,234.56"},
		{"rounds to minor unit", "10.005", "USD", "$10.01"},
		{"unknown currency", "12.5", "XXY", "12.50 XXY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if got != tt.want {
				t.Errorf("formatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

// WHY: a per-user summary lists every property so failed ones are visible next to the totals.
func TestReconcileMarkdown_UserSummary(t *testing.T) {
	props, months := 1, 3
	md := reconcileMarkdown(model.ReconcileResult{
		Recalculation: model.RecalculationSummary{
			Type:              "user",
			UpdatedProperties: &props,
			UpdatedMonths:     &months,
			Results: []model.PropertyReconcileResult{
				{PropertyID: "p-1", Updated: 3},
				{PropertyID: "p-2", Error: "store unavailable"},
			},
		},
		Cleanup: &model.CleanupResult{Deleted: 2},
	})

	for _, want := range []string{
		"1 properties, 3 months recalculated.",
		"| `p-1` | 3 | ok |",
		"| `p-2` | 0 | store unavailable |",
		"Cleanup removed 2 empty rows.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestValidationMarkdown_MissingRow(t *testing.T) {
	md := validationMarkdown(model.ValidationResult{Year: 2024, Month: 3}, "USD")

	if !strings.Contains(md, "No aggregate is stored for this period.") {
		t.Errorf("expected missing-row notice:\n%s", md)
	}
	if !strings.Contains(md, "# Validation 2024-03") {
		t.Errorf("expected period heading:\n%s", md)
	}
}

func TestTrendMarkdown_Empty(t *testing.T) {
	md := trendMarkdown(nil, model.GranularityMonthly, "USD")
	if !strings.Contains(md, "No transactions in range.") {
		t.Errorf("expected empty notice:\n%s", md)
	}
}
