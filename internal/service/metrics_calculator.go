package service

import (
	"context"
	"fmt"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// MetricsCalculator derives monthly totals from the ledger.
type MetricsCalculator struct {
	transactionRepo *repository.TransactionRepository
}

// NewMetricsCalculator creates a new MetricsCalculator with the provided repository dependencies.
func NewMetricsCalculator(transactionRepo *repository.TransactionRepository) *MetricsCalculator {
	return &MetricsCalculator{transactionRepo: transactionRepo}
}

// Calculate aggregates the non-deleted ledger rows of one property and calendar month.
//
// Only rows owned by userID with a transaction date between the first and last day of the
// month (inclusive) are counted. CashFlow is income minus expenses.
//
// Returns apperrors.ErrInvalidMonth when month is outside 1..12, and an error wrapping
// apperrors.ErrCalculationFailed when the ledger cannot be read. No partial totals are returned.
func (c *MetricsCalculator) Calculate(ctx context.Context, userID, propertyID string, year, month int) (model.MetricTotals, error) {
	if month < 1 || month > 12 {
		return model.MetricTotals{}, fmt.Errorf("%w: got %d", apperrors.ErrInvalidMonth, month)
	}

	period := model.Period{Year: year, Month: month}

	sums, err := c.transactionRepo.SumByType(ctx, userID, propertyID, period.Start(), period.End())
	if err != nil {
		return model.MetricTotals{}, fmt.Errorf("%w for %s/%s: %w", apperrors.ErrCalculationFailed, propertyID, period, err)
	}

	income := sums[model.TransactionTypeIncome]
	expense := sums[model.TransactionTypeExpense]

	totals := model.MetricTotals{
		TotalIncome:      normaliseMoney(income.Amount),
		TotalExpenses:    normaliseMoney(expense.Amount),
		TransactionCount: income.Count + expense.Count,
	}
	totals.CashFlow = totals.TotalIncome.Sub(totals.TotalExpenses)

	return totals, nil
}
