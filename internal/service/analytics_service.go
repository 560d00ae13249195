package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// AnalyticsService computes KPIs, trends, breakdowns and rankings. It never writes.
//
// KPIs, cash-flow trends, breakdowns and rankings read the ledger directly so arbitrary
// date ranges are exact. The metric trend reads the monthly_metric aggregates.
type AnalyticsService struct {
	transactionRepo *repository.TransactionRepository
	propertyRepo    *repository.PropertyRepository
	metricRepo      *repository.MetricRepository
	maxBuckets      int
}

// NewAnalyticsService creates a new AnalyticsService with the provided repository dependencies.
// maxBuckets caps trend length; zero or negative selects DefaultMaxTrendBuckets.
func NewAnalyticsService(
	transactionRepo *repository.TransactionRepository,
	propertyRepo *repository.PropertyRepository,
	metricRepo *repository.MetricRepository,
	maxBuckets int,
) *AnalyticsService {
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxTrendBuckets
	}
	return &AnalyticsService{
		transactionRepo: transactionRepo,
		propertyRepo:    propertyRepo,
		metricRepo:      metricRepo,
		maxBuckets:      maxBuckets,
	}
}

// =============================================================================
// KPI METHODS
// =============================================================================

// GetKPIs computes portfolio-level indicators over the filtered ledger rows.
//
// Formulas (percentages, rounded to two decimals at output only):
//   - cashOnCashReturn = netIncome / totalInvestment × 100
//   - averageCapRate = mean of (monthlyRent × 12) / marketValue × 100, skipping properties
//     whose effective market value is zero
//   - expenseToIncomeRatio = totalExpenses / totalIncome × 100
//   - averageROI = (totalMarketValue − totalInvestment) / totalInvestment × 100
//
// A zero denominator yields 0. With IncludePropertyDetails each property gets the same
// indicators computed from its own rows.
func (s *AnalyticsService) GetKPIs(ctx context.Context, userID string, req model.KPIRequest) (model.PortfolioKPIs, error) {
	if err := checkRange(req.DateFrom, req.DateTo); err != nil {
		return model.PortfolioKPIs{}, err
	}

	properties, err := s.resolveProperties(ctx, userID, req.PropertyID)
	if err != nil {
		return model.PortfolioKPIs{}, err
	}

	transactions, err := s.loadTransactions(ctx, userID, properties, req.DateFrom, req.DateTo)
	if err != nil {
		return model.PortfolioKPIs{}, err
	}
	byProperty := totalsByProperty(transactions)

	kpis := model.PortfolioKPIs{PropertyCount: len(properties)}
	capRateSum := decimal.Zero
	capRateCount := 0

	for _, p := range properties {
		lt := byProperty[p.ID]
		marketValue := p.EffectiveMarketValue()

		kpis.TransactionCount += lt.count
		kpis.TotalIncome = kpis.TotalIncome.Add(lt.income)
		kpis.TotalExpenses = kpis.TotalExpenses.Add(lt.expenses)
		kpis.TotalInvestment = kpis.TotalInvestment.Add(p.PurchasePrice)
		kpis.TotalMarketValue = kpis.TotalMarketValue.Add(marketValue)
		kpis.TotalMonthlyRent = kpis.TotalMonthlyRent.Add(p.MonthlyRent)

		rate, ok := capRate(p.MonthlyRent, marketValue)
		if ok {
			capRateSum = capRateSum.Add(rate)
			capRateCount++
		}

		if req.IncludePropertyDetails {
			detail := model.PropertyKPIs{
				PropertyID:           p.ID,
				PropertyName:         p.Name,
				TransactionCount:     lt.count,
				TotalIncome:          lt.income,
				TotalExpenses:        lt.expenses,
				NetIncome:            lt.net(),
				PurchasePrice:        p.PurchasePrice,
				MarketValue:          marketValue,
				MonthlyRent:          p.MonthlyRent,
				CashOnCashReturn:     percentage(lt.net(), p.PurchasePrice),
				ExpenseToIncomeRatio: percentage(lt.expenses, lt.income),
				ROI:                  growthPercentage(marketValue, p.PurchasePrice),
			}
			if ok {
				detail.CapRate = round(rate.InexactFloat64())
			}
			kpis.Properties = append(kpis.Properties, detail)
		}
	}

	kpis.NetIncome = kpis.TotalIncome.Sub(kpis.TotalExpenses)
	kpis.CashOnCashReturn = percentage(kpis.NetIncome, kpis.TotalInvestment)
	kpis.ExpenseToIncomeRatio = percentage(kpis.TotalExpenses, kpis.TotalIncome)
	kpis.AverageROI = growthPercentage(kpis.TotalMarketValue, kpis.TotalInvestment)
	if capRateCount > 0 {
		kpis.AverageCapRate = round(capRateSum.Div(decimal.NewFromInt(int64(capRateCount))).InexactFloat64())
	}

	return kpis, nil
}

// =============================================================================
// TREND METHODS
// =============================================================================

// GetCashFlowTrend buckets the filtered ledger rows by granularity.
//
// The span is [DateFrom ?? earliest transaction, DateTo ?? latest transaction]; every bucket
// in it is returned, including empty ones. An empty granularity is chosen with
// SelectGranularity. Returns the points and the granularity used; no rows and no bounds
// yields an empty trend.
func (s *AnalyticsService) GetCashFlowTrend(ctx context.Context, userID string, filter model.AnalyticsFilter, g model.Granularity) ([]model.TrendPoint, model.Granularity, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, g, err
	}
	if err := s.precheckGranularity(g, filter); err != nil {
		return nil, g, err
	}

	properties, err := s.resolveProperties(ctx, userID, filter.PropertyID)
	if err != nil {
		return nil, g, err
	}

	transactions, err := s.loadTransactions(ctx, userID, properties, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, g, err
	}

	var earliest, latest time.Time
	for _, t := range transactions {
		if earliest.IsZero() || t.TransactionDate.Before(earliest) {
			earliest = t.TransactionDate
		}
		if latest.IsZero() || t.TransactionDate.After(latest) {
			latest = t.TransactionDate
		}
	}

	from, to, ok := resolveSpan(filter, earliest, latest)
	if !ok {
		return []model.TrendPoint{}, s.defaultGranularity(g, filter), nil
	}

	g, err = s.granularityFor(g, from, to)
	if err != nil {
		return nil, g, err
	}

	return buildTrend(g, from, to, addTransactions(g, transactions)), g, nil
}

// GetMetricTrend builds a monthly or yearly trend from the stored monthly aggregates.
// Daily and weekly are rejected because aggregates have monthly resolution; an empty
// granularity selects monthly for windows up to three years and yearly beyond.
func (s *AnalyticsService) GetMetricTrend(ctx context.Context, userID string, filter model.AnalyticsFilter, g model.Granularity) ([]model.TrendPoint, model.Granularity, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, g, err
	}
	if g != "" && g != model.GranularityMonthly && g != model.GranularityYearly {
		return nil, g, fmt.Errorf("%w: %q is not available for stored monthly metrics", apperrors.ErrInvalidGranularity, g)
	}

	properties, err := s.resolveProperties(ctx, userID, filter.PropertyID)
	if err != nil {
		return nil, g, err
	}
	if len(properties) == 0 {
		return []model.TrendPoint{}, metricGranularity(g), nil
	}

	metricFilter := model.MetricFilter{UserID: userID, PropertyIDs: propertyIDs(properties)}
	if filter.DateFrom != nil {
		metricFilter.From = model.PeriodOf(*filter.DateFrom)
	}
	if filter.DateTo != nil {
		metricFilter.To = model.PeriodOf(*filter.DateTo)
	}

	var metrics []model.MonthlyMetric
	var earliest, latest time.Time
	err = s.metricRepo.GetMonthlyMetrics(ctx, metricFilter, func(m model.MonthlyMetric) error {
		start := m.Period().Start()
		if earliest.IsZero() {
			earliest = start
		}
		latest = m.Period().End()
		metrics = append(metrics, m)
		return nil
	})
	if err != nil {
		return nil, g, err
	}

	from, to, ok := resolveSpan(filter, earliest, latest)
	if !ok {
		return []model.TrendPoint{}, metricGranularity(g), nil
	}

	if g == "" {
		g = metricGranularity(SelectGranularity(from, to))
	}
	if err := ValidateGranularity(g, from, to, s.maxBuckets); err != nil {
		return nil, g, err
	}

	return buildTrend(g, from, to, addMetrics(g, metrics)), g, nil
}

// =============================================================================
// BREAKDOWN AND RANKING METHODS
// =============================================================================

// GetExpenseBreakdown groups the filtered EXPENSE rows by category name.
// Rows without a known category are reported as model.UncategorizedLabel. Percentages are
// shares of total expenses and 0 when the total is 0. Sorted descending by amount.
func (s *AnalyticsService) GetExpenseBreakdown(ctx context.Context, userID string, filter model.AnalyticsFilter) ([]model.ExpenseCategory, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}

	properties, err := s.resolveProperties(ctx, userID, filter.PropertyID)
	if err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return []model.ExpenseCategory{}, nil
	}

	totals, err := s.transactionRepo.GetExpenseTotalsByCategory(ctx, model.TransactionFilter{
		UserID:      userID,
		PropertyIDs: propertyIDs(properties),
		DateFrom:    filter.DateFrom,
		DateTo:      filter.DateTo,
	})
	if err != nil {
		return nil, err
	}

	return buildExpenseBreakdown(totals), nil
}

// GetPropertyComparison ranks the user's properties over the filtered ledger rows.
// roi is (marketValue − purchasePrice) / purchasePrice × 100. Sorted descending by
// req.SortBy (netIncome when empty); ties keep property order (name, then id).
func (s *AnalyticsService) GetPropertyComparison(ctx context.Context, userID string, req model.ComparisonRequest) ([]model.PropertyRanking, error) {
	if err := checkRange(req.DateFrom, req.DateTo); err != nil {
		return nil, err
	}
	if req.SortBy == "" {
		req.SortBy = model.SortByNetIncome
	}
	if !model.ValidRankingSorts[req.SortBy] {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidSortBy, req.SortBy)
	}

	properties, err := s.resolveProperties(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	transactions, err := s.loadTransactions(ctx, userID, properties, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	byProperty := totalsByProperty(transactions)

	rankings := make([]model.PropertyRanking, 0, len(properties))
	for _, p := range properties {
		lt := byProperty[p.ID]
		rankings = append(rankings, model.PropertyRanking{
			PropertyID:    p.ID,
			PropertyName:  p.Name,
			TotalIncome:   lt.income,
			TotalExpenses: lt.expenses,
			NetIncome:     lt.net(),
			ROI:           growthPercentage(p.EffectiveMarketValue(), p.PurchasePrice),
		})
	}

	rankProperties(rankings, req.SortBy)

	return rankings, nil
}

// GetCharts returns the series selected by req.ChartType: all (cash-flow trend and expense
// breakdown), cashflow, expenses, or metrics (the stored-aggregate trend).
func (s *AnalyticsService) GetCharts(ctx context.Context, userID string, req model.ChartRequest) (model.Charts, error) {
	chartType := req.ChartType
	if chartType == "" {
		chartType = model.ChartTypeAll
	}
	if !model.ValidChartTypes[chartType] {
		return model.Charts{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidChartType, chartType)
	}

	var charts model.Charts

	if chartType == model.ChartTypeAll || chartType == model.ChartTypeCashFlow {
		trend, g, err := s.GetCashFlowTrend(ctx, userID, req.AnalyticsFilter, req.Granularity)
		if err != nil {
			return model.Charts{}, err
		}
		charts.CashFlowTrend = trend
		charts.Granularity = g
	}

	if chartType == model.ChartTypeMetrics {
		trend, g, err := s.GetMetricTrend(ctx, userID, req.AnalyticsFilter, req.Granularity)
		if err != nil {
			return model.Charts{}, err
		}
		charts.MetricTrend = trend
		charts.Granularity = g
	}

	if chartType == model.ChartTypeAll || chartType == model.ChartTypeExpenses {
		breakdown, err := s.GetExpenseBreakdown(ctx, userID, req.AnalyticsFilter)
		if err != nil {
			return model.Charts{}, err
		}
		charts.ExpenseBreakdown = breakdown
	}

	return charts, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveProperties returns the single owned property when propertyID is set, otherwise
// every non-deleted property of the user.
func (s *AnalyticsService) resolveProperties(ctx context.Context, userID, propertyID string) ([]model.Property, error) {
	if propertyID != "" {
		p, err := s.propertyRepo.GetPropertyOnID(ctx, userID, propertyID)
		if err != nil {
			return nil, err
		}
		return []model.Property{p}, nil
	}
	return s.propertyRepo.GetProperties(ctx, model.PropertyFilter{UserID: userID})
}

// loadTransactions reads the non-deleted rows of the given properties within the bounds.
// No properties means no rows; the query would otherwise match every property of the user.
func (s *AnalyticsService) loadTransactions(ctx context.Context, userID string, properties []model.Property, from, to *time.Time) ([]model.Transaction, error) {
	if len(properties) == 0 {
		return nil, nil
	}
	return s.transactionRepo.GetTransactions(ctx, model.TransactionFilter{
		UserID:      userID,
		PropertyIDs: propertyIDs(properties),
		DateFrom:    from,
		DateTo:      to,
	})
}

// precheckGranularity validates an explicit granularity against a fully bounded window
// before any store access.
func (s *AnalyticsService) precheckGranularity(g model.Granularity, filter model.AnalyticsFilter) error {
	if g == "" {
		return nil
	}
	if !model.ValidGranularities[g] {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidGranularity, g)
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		return ValidateGranularity(g, *filter.DateFrom, *filter.DateTo, s.maxBuckets)
	}
	return nil
}

func (s *AnalyticsService) granularityFor(g model.Granularity, from, to time.Time) (model.Granularity, error) {
	if g == "" {
		g = SelectGranularity(from, to)
	}
	if err := ValidateGranularity(g, from, to, s.maxBuckets); err != nil {
		return g, err
	}
	return g, nil
}

func (s *AnalyticsService) defaultGranularity(g model.Granularity, filter model.AnalyticsFilter) model.Granularity {
	if g != "" {
		return g
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		return SelectGranularity(*filter.DateFrom, *filter.DateTo)
	}
	return model.GranularityMonthly
}

// metricGranularity coarsens a granularity to one the monthly aggregates can serve.
func metricGranularity(g model.Granularity) model.Granularity {
	if g == model.GranularityYearly {
		return g
	}
	return model.GranularityMonthly
}

// resolveSpan fills open filter bounds from the observed data range.
// ok is false when a bound is open and there is no data to fill it.
func resolveSpan(filter model.AnalyticsFilter, earliest, latest time.Time) (from, to time.Time, ok bool) {
	if filter.DateFrom != nil {
		from = *filter.DateFrom
	} else {
		from = earliest
	}
	if filter.DateTo != nil {
		to = *filter.DateTo
	} else {
		to = latest
	}
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return apperrors.ErrInvalidDateRange
	}
	return nil
}
