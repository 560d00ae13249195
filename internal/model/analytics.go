package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is the bucket size of a trend series.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// ValidGranularities contains the allowed granularity values.
var ValidGranularities = map[Granularity]bool{
	GranularityDaily:   true,
	GranularityWeekly:  true,
	GranularityMonthly: true,
	GranularityYearly:  true,
}

// RankingSort selects the metric a property comparison is ordered by.
type RankingSort string

const (
	SortByNetIncome   RankingSort = "netIncome"
	SortByTotalIncome RankingSort = "totalIncome"
	SortByROI         RankingSort = "roi"
)

// ValidRankingSorts contains the allowed sortBy values.
var ValidRankingSorts = map[RankingSort]bool{
	SortByNetIncome:   true,
	SortByTotalIncome: true,
	SortByROI:         true,
}

// ChartType selects which series a charts request returns.
type ChartType string

const (
	ChartTypeAll      ChartType = "all"
	ChartTypeCashFlow ChartType = "cashflow"
	ChartTypeExpenses ChartType = "expenses"
	ChartTypeMetrics  ChartType = "metrics"
)

// ValidChartTypes contains the allowed chartType values.
var ValidChartTypes = map[ChartType]bool{
	ChartTypeAll:      true,
	ChartTypeCashFlow: true,
	ChartTypeExpenses: true,
	ChartTypeMetrics:  true,
}

// AnalyticsFilter is the common filter of every analytics query.
// PropertyID empty means the whole portfolio; nil dates mean unbounded.
type AnalyticsFilter struct {
	PropertyID string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// KPIRequest configures a KPI query.
type KPIRequest struct {
	AnalyticsFilter
	IncludePropertyDetails bool
}

// ChartRequest configures a charts query. An empty Granularity lets the
// selector pick one from the window.
type ChartRequest struct {
	AnalyticsFilter
	Granularity Granularity
	ChartType   ChartType
}

// ComparisonRequest configures a property ranking query.
type ComparisonRequest struct {
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   RankingSort
}

// PortfolioKPIs are portfolio-level financial indicators. Ratios are percentages
// rounded to two decimals.
type PortfolioKPIs struct {
	PropertyCount        int             `json:"propertyCount"`
	TransactionCount     int             `json:"transactionCount"`
	TotalIncome          decimal.Decimal `json:"totalIncome"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	NetIncome            decimal.Decimal `json:"netIncome"`
	TotalInvestment      decimal.Decimal `json:"totalInvestment"`
	TotalMarketValue     decimal.Decimal `json:"totalMarketValue"`
	TotalMonthlyRent     decimal.Decimal `json:"totalMonthlyRent"`
	CashOnCashReturn     float64         `json:"cashOnCashReturn"`
	AverageCapRate       float64         `json:"averageCapRate"`
	ExpenseToIncomeRatio float64         `json:"expenseToIncomeRatio"`
	AverageROI           float64         `json:"averageROI"`
	Properties           []PropertyKPIs  `json:"properties,omitempty"`
}

// PropertyKPIs are the same indicators computed from one property's own ledger rows.
type PropertyKPIs struct {
	PropertyID           string          `json:"propertyId"`
	PropertyName         string          `json:"propertyName"`
	TransactionCount     int             `json:"transactionCount"`
	TotalIncome          decimal.Decimal `json:"totalIncome"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	NetIncome            decimal.Decimal `json:"netIncome"`
	PurchasePrice        decimal.Decimal `json:"purchasePrice"`
	MarketValue          decimal.Decimal `json:"marketValue"`
	MonthlyRent          decimal.Decimal `json:"monthlyRent"`
	CashOnCashReturn     float64         `json:"cashOnCashReturn"`
	CapRate              float64         `json:"capRate"`
	ExpenseToIncomeRatio float64         `json:"expenseToIncomeRatio"`
	ROI                  float64         `json:"roi"`
}

// TrendPoint is one bucket of a cash-flow trend.
type TrendPoint struct {
	Period              string          `json:"period"`
	StartDate           string          `json:"startDate"`
	EndDate             string          `json:"endDate"`
	Income              decimal.Decimal `json:"income"`
	Expenses            decimal.Decimal `json:"expenses"`
	NetIncome           decimal.Decimal `json:"netIncome"`
	CumulativeNetIncome decimal.Decimal `json:"cumulativeNetIncome"`
	TransactionCount    int             `json:"transactionCount"`
}

// ExpenseCategory is one slice of an expense breakdown.
type ExpenseCategory struct {
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Percentage       float64         `json:"percentage"`
	TransactionCount int             `json:"transactionCount"`
}

// PropertyRanking is one row of a property comparison.
type PropertyRanking struct {
	Rank          int             `json:"rank"`
	PropertyID    string          `json:"propertyId"`
	PropertyName  string          `json:"propertyName"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	ROI           float64         `json:"roi"`
}

// Charts is the response of a charts query; series not selected by the chart type are nil.
type Charts struct {
	Granularity      Granularity       `json:"granularity"`
	CashFlowTrend    []TrendPoint      `json:"cashFlowTrend,omitempty"`
	ExpenseBreakdown []ExpenseCategory `json:"expenseBreakdown,omitempty"`
	MetricTrend      []TrendPoint      `json:"metricTrend,omitempty"`
}
