package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
)

// Period identifies a calendar month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf returns the calendar month containing date.
func PeriodOf(date time.Time) Period {
	return Period{Year: date.Year(), Month: int(date.Month())}
}

// Start returns the first day of the month at UTC midnight.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month at UTC midnight.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MetricTotals are the values the metrics calculator derives from the ledger for one
// property and month.
type MetricTotals struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	CashFlow         decimal.Decimal `json:"cashFlow"`
	TransactionCount int             `json:"transactionCount"`
}

// IsZero reports whether every total is zero. Rows in this state are stale and
// removed by cleanup.
func (m MetricTotals) IsZero() bool {
	return m.TotalIncome.IsZero() && m.TotalExpenses.IsZero() && m.TransactionCount == 0
}

// MonthlyMetric is a denormalized per-property-per-month rollup of ledger totals,
// stored in the monthly_metric table and keyed by (PropertyID, Year, Month).
type MonthlyMetric struct {
	PropertyID string    `json:"propertyId"`
	UserID     string    `json:"userId"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	UpdatedAt  time.Time `json:"updatedAt"`
	MetricTotals
}

// Period returns the calendar month the metric covers.
func (m MonthlyMetric) Period() Period {
	return Period{Year: m.Year, Month: m.Month}
}

// MetricFilter narrows monthly_metric queries.
type MetricFilter struct {
	UserID      string
	PropertyIDs []string
	From        Period
	To          Period
}

// FieldDifference describes one field where a stored aggregate disagrees with a fresh calculation.
type FieldDifference struct {
	Field      string `json:"field"`
	Stored     string `json:"stored"`
	Calculated string `json:"calculated"`
}

// ValidationResult compares the stored aggregate for a period with the ledger.
type ValidationResult struct {
	PropertyID  string            `json:"propertyId"`
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	IsValid     bool              `json:"isValid"`
	Stored      *MonthlyMetric    `json:"stored,omitempty"`
	Calculated  MetricTotals      `json:"calculated"`
	Differences []FieldDifference `json:"differences,omitempty"`
}

// Err returns an error wrapping apperrors.ErrStaleAggregate when the stored row is
// missing or disagrees with the ledger, and nil otherwise.
func (v ValidationResult) Err() error {
	if v.IsValid {
		return nil
	}
	return fmt.Errorf("%w: %s/%04d-%02d", apperrors.ErrStaleAggregate, v.PropertyID, v.Year, v.Month)
}

// ReconcileOptions selects what a combined reconcile call does.
type ReconcileOptions struct {
	PropertyID string
	FromDate   *time.Time
	ToDate     *time.Time
	Cleanup    bool
	Validate   bool
}

// PropertyReconcileResult is the outcome of reconciling a single property.
type PropertyReconcileResult struct {
	PropertyID string `json:"propertyId"`
	Updated    int    `json:"updated"`
	Error      string `json:"error,omitempty"`
}

// UserReconcileSummary totals a reconciliation over all of a user's properties.
type UserReconcileSummary struct {
	UpdatedProperties int                       `json:"updatedProperties"`
	UpdatedMonths     int                       `json:"updatedMonths"`
	Results           []PropertyReconcileResult `json:"results,omitempty"`
}

// Failed returns the results that carry an error.
func (s UserReconcileSummary) Failed() []PropertyReconcileResult {
	var failed []PropertyReconcileResult
	for _, r := range s.Results {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}
	return failed
}

// RecalculationSummary is the recalculation part of a combined reconcile response.
// Type is "property" or "user"; Updated is set for property scope,
// UpdatedProperties and UpdatedMonths for user scope.
type RecalculationSummary struct {
	Type              string                    `json:"type"`
	PropertyID        string                    `json:"propertyId,omitempty"`
	Updated           *int                      `json:"updated,omitempty"`
	UpdatedProperties *int                      `json:"updatedProperties,omitempty"`
	UpdatedMonths     *int                      `json:"updatedMonths,omitempty"`
	Results           []PropertyReconcileResult `json:"results,omitempty"`
}

// CleanupResult reports how many stale aggregate rows were removed.
type CleanupResult struct {
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// ReconcileResult is the response of a combined reconcile call.
type ReconcileResult struct {
	Validation    *ValidationResult    `json:"validation,omitempty"`
	Recalculation RecalculationSummary `json:"recalculation"`
	Cleanup       *CleanupResult       `json:"cleanup,omitempty"`
}
