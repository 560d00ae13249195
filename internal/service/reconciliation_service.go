package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// ReconciliationService keeps the monthly_metric aggregates consistent with the ledger.
//
// Every operation is idempotent: re-running it over an unchanged ledger leaves the stored
// aggregates untouched, so a failed call can be retried as a whole.
type ReconciliationService struct {
	calculator      *MetricsCalculator
	metricRepo      *repository.MetricRepository
	propertyRepo    *repository.PropertyRepository
	transactionRepo *repository.TransactionRepository
	locks           *keyLock
	workers         int
	now             func() time.Time
}

// NewReconciliationService creates a new ReconciliationService with the provided dependencies.
// workers bounds how many properties ReconcileUser processes at once; values below 2 keep it sequential.
func NewReconciliationService(
	calculator *MetricsCalculator,
	metricRepo *repository.MetricRepository,
	propertyRepo *repository.PropertyRepository,
	transactionRepo *repository.TransactionRepository,
	workers int,
) *ReconciliationService {
	return &ReconciliationService{
		calculator:      calculator,
		metricRepo:      metricRepo,
		propertyRepo:    propertyRepo,
		transactionRepo: transactionRepo,
		locks:           newKeyLock(),
		workers:         workers,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for updated_at and for the current month of Reconcile.
func (s *ReconciliationService) WithClock(now func() time.Time) *ReconciliationService {
	s.now = now
	return s
}

// ReconcilePeriod recomputes the aggregate of one property and month from the ledger and
// upserts it. The property must be owned by userID and not deleted.
func (s *ReconciliationService) ReconcilePeriod(ctx context.Context, userID, propertyID string, year, month int) (model.MonthlyMetric, error) {
	if month < 1 || month > 12 {
		return model.MonthlyMetric{}, fmt.Errorf("%w: got %d", apperrors.ErrInvalidMonth, month)
	}

	if _, err := s.propertyRepo.GetPropertyOnID(ctx, userID, propertyID); err != nil {
		return model.MonthlyMetric{}, err
	}

	return s.reconcilePeriod(ctx, userID, propertyID, model.Period{Year: year, Month: month})
}

// reconcilePeriod runs Calculator then upsert for an already authorised property.
// Concurrent reconciliations of the same (property, year, month) are serialised so a slower
// writer can never overwrite totals computed from a newer ledger state.
func (s *ReconciliationService) reconcilePeriod(ctx context.Context, userID, propertyID string, period model.Period) (model.MonthlyMetric, error) {
	unlock := s.locks.Lock(propertyID + "/" + period.String())
	defer unlock()

	totals, err := s.calculator.Calculate(ctx, userID, propertyID, period.Year, period.Month)
	if err != nil {
		return model.MonthlyMetric{}, err
	}

	metric, err := s.metricRepo.UpsertMonthlyMetric(ctx, model.MonthlyMetric{
		PropertyID:   propertyID,
		UserID:       userID,
		Year:         period.Year,
		Month:        period.Month,
		UpdatedAt:    s.now(),
		MetricTotals: totals,
	})
	if err != nil {
		return model.MonthlyMetric{}, fmt.Errorf("failed to store metric for %s/%s: %w", propertyID, period, err)
	}

	return metric, nil
}

// ReconcilePeriods reconciles a set of periods of one property, typically the output of
// AffectedPeriods after a ledger mutation. It stops at the first failure.
func (s *ReconciliationService) ReconcilePeriods(ctx context.Context, userID, propertyID string, periods []model.Period) error {
	for _, p := range periods {
		if _, err := s.reconcilePeriod(ctx, userID, propertyID, p); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileProperty reconciles every month between from and to for one property.
//
// A nil bound defaults to the earliest or latest non-deleted transaction date within the
// other bound. When no transactions fall in range nothing is written and 0 is returned.
// Months are reconciled sequentially to bound store load.
//
// Returns the number of periods touched.
func (s *ReconciliationService) ReconcileProperty(ctx context.Context, userID, propertyID string, from, to *time.Time) (int, error) {
	if from != nil && to != nil && from.After(*to) {
		return 0, apperrors.ErrInvalidDateRange
	}

	if _, err := s.propertyRepo.GetPropertyOnID(ctx, userID, propertyID); err != nil {
		return 0, err
	}

	return s.reconcileProperty(ctx, userID, propertyID, from, to)
}

func (s *ReconciliationService) reconcileProperty(ctx context.Context, userID, propertyID string, from, to *time.Time) (int, error) {
	span, err := s.transactionRepo.GetDateSpan(ctx, userID, propertyID, from, to)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrCalculationFailed, err)
	}
	if span.IsEmpty() {
		return 0, nil
	}

	start, end := span.Earliest, span.Latest
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	updated := 0
	for _, p := range MonthsBetween(start, end) {
		if _, err := s.reconcilePeriod(ctx, userID, propertyID, p); err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

// ReconcileUser applies ReconcileProperty to every non-deleted property of the user.
//
// One property's failure does not abort the others: each outcome is reported in Results,
// in property order (name, then id). UpdatedProperties counts the properties reconciled
// without error and UpdatedMonths the periods touched across all of them.
//
// Properties are processed sequentially unless the service was built with more than one
// worker, in which case they are fanned out with a bounded errgroup.
//
// Returns an error only when the property list itself cannot be read.
func (s *ReconciliationService) ReconcileUser(ctx context.Context, userID string, from, to *time.Time) (model.UserReconcileSummary, error) {
	if from != nil && to != nil && from.After(*to) {
		return model.UserReconcileSummary{}, apperrors.ErrInvalidDateRange
	}

	properties, err := s.propertyRepo.GetProperties(ctx, model.PropertyFilter{UserID: userID})
	if err != nil {
		return model.UserReconcileSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveProperties, err)
	}

	results := make([]model.PropertyReconcileResult, len(properties))

	reconcileOne := func(i int) {
		p := properties[i]
		updated, err := s.reconcileProperty(ctx, userID, p.ID, from, to)
		results[i] = model.PropertyReconcileResult{PropertyID: p.ID, Updated: updated}
		if err != nil {
			log.Printf("reconcile failed for user %s property %s: %v", userID, p.ID, err)
			results[i].Error = err.Error()
		}
	}

	if s.workers > 1 {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i := range properties {
			g.Go(func() error {
				reconcileOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range properties {
			reconcileOne(i)
		}
	}

	summary := model.UserReconcileSummary{Results: results}
	for _, r := range results {
		summary.UpdatedMonths += r.Updated
		if r.Error == "" {
			summary.UpdatedProperties++
		}
	}

	return summary, nil
}

// Validate compares the stored aggregate of a period with a fresh calculation.
// A missing row is reported invalid with no Stored payload.
// The returned result is the report; use ValidationResult.Err to turn a mismatch into
// apperrors.ErrStaleAggregate.
func (s *ReconciliationService) Validate(ctx context.Context, userID, propertyID string, year, month int) (model.ValidationResult, error) {
	if month < 1 || month > 12 {
		return model.ValidationResult{}, fmt.Errorf("%w: got %d", apperrors.ErrInvalidMonth, month)
	}

	if _, err := s.propertyRepo.GetPropertyOnID(ctx, userID, propertyID); err != nil {
		return model.ValidationResult{}, err
	}

	calculated, err := s.calculator.Calculate(ctx, userID, propertyID, year, month)
	if err != nil {
		return model.ValidationResult{}, err
	}

	result := model.ValidationResult{
		PropertyID: propertyID,
		Year:       year,
		Month:      month,
		Calculated: calculated,
	}

	stored, err := s.metricRepo.GetMonthlyMetric(ctx, userID, propertyID, year, month)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result, nil
		}
		return model.ValidationResult{}, err
	}

	result.Stored = &stored
	result.Differences = diffTotals(stored.MetricTotals, calculated)
	result.IsValid = len(result.Differences) == 0

	return result, nil
}

// diffTotals lists every field where stored and calculated disagree.
func diffTotals(stored, calculated model.MetricTotals) []model.FieldDifference {
	var diffs []model.FieldDifference

	money := []struct {
		field              string
		stored, calculated decimal.Decimal
	}{
		{"totalIncome", stored.TotalIncome, calculated.TotalIncome},
		{"totalExpenses", stored.TotalExpenses, calculated.TotalExpenses},
		{"cashFlow", stored.CashFlow, calculated.CashFlow},
	}
	for _, m := range money {
		if !m.stored.Equal(m.calculated) {
			diffs = append(diffs, model.FieldDifference{
				Field:      m.field,
				Stored:     m.stored.StringFixed(moneyPlaces),
				Calculated: m.calculated.StringFixed(moneyPlaces),
			})
		}
	}

	if stored.TransactionCount != calculated.TransactionCount {
		diffs = append(diffs, model.FieldDifference{
			Field:      "transactionCount",
			Stored:     fmt.Sprint(stored.TransactionCount),
			Calculated: fmt.Sprint(calculated.TransactionCount),
		})
	}

	return diffs
}

// Cleanup deletes the user's aggregate rows whose income, expenses and count are all zero.
// Returns the number of rows deleted.
func (s *ReconciliationService) Cleanup(ctx context.Context, userID string) (int64, error) {
	return s.metricRepo.DeleteEmptyMetrics(ctx, userID)
}

// Reconcile is the combined reconciliation entry point.
//
// With opts.Validate and a property, the current month is validated first, so the report
// reflects the aggregate as it was before this call. Recalculation is then property scoped
// when opts.PropertyID is set and user scoped otherwise. Cleanup, when requested, is
// user scoped and best-effort: its failure is reported in the result and never undoes the
// recalculation.
func (s *ReconciliationService) Reconcile(ctx context.Context, userID string, opts model.ReconcileOptions) (model.ReconcileResult, error) {
	if opts.FromDate != nil && opts.ToDate != nil && opts.FromDate.After(*opts.ToDate) {
		return model.ReconcileResult{}, apperrors.ErrInvalidDateRange
	}

	var result model.ReconcileResult

	if opts.Validate && opts.PropertyID != "" {
		current := model.PeriodOf(s.now())
		validation, err := s.Validate(ctx, userID, opts.PropertyID, current.Year, current.Month)
		if err != nil {
			return model.ReconcileResult{}, err
		}
		result.Validation = &validation
	}

	if opts.PropertyID != "" {
		updated, err := s.ReconcileProperty(ctx, userID, opts.PropertyID, opts.FromDate, opts.ToDate)
		if err != nil {
			return model.ReconcileResult{}, err
		}
		result.Recalculation = model.RecalculationSummary{
			Type:       "property",
			PropertyID: opts.PropertyID,
			Updated:    &updated,
		}
	} else {
		summary, err := s.ReconcileUser(ctx, userID, opts.FromDate, opts.ToDate)
		if err != nil {
			return model.ReconcileResult{}, err
		}
		result.Recalculation = model.RecalculationSummary{
			Type:              "user",
			UpdatedProperties: &summary.UpdatedProperties,
			UpdatedMonths:     &summary.UpdatedMonths,
			Results:           summary.Results,
		}
	}

	if opts.Cleanup {
		deleted, err := s.Cleanup(ctx, userID)
		result.Cleanup = &model.CleanupResult{Deleted: deleted}
		if err != nil {
			log.Printf("cleanup failed for user %s: %v", userID, err)
			result.Cleanup.Error = err.Error()
		}
	}

	return result, nil
}
