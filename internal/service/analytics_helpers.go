package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// ledgerTotals accumulates income, expenses and row count of a set of transactions.
type ledgerTotals struct {
	income   decimal.Decimal
	expenses decimal.Decimal
	count    int
}

func (l *ledgerTotals) add(t model.Transaction) {
	switch t.Type {
	case model.TransactionTypeIncome:
		l.income = l.income.Add(t.Amount)
	case model.TransactionTypeExpense:
		l.expenses = l.expenses.Add(t.Amount)
	}
	l.count++
}

func (l ledgerTotals) net() decimal.Decimal {
	return l.income.Sub(l.expenses)
}

// totalsByProperty groups non-deleted transactions by property id.
func totalsByProperty(transactions []model.Transaction) map[string]ledgerTotals {
	totals := make(map[string]ledgerTotals)
	for _, t := range transactions {
		if t.IsDeleted() {
			continue
		}
		lt := totals[t.PropertyID]
		lt.add(t)
		totals[t.PropertyID] = lt
	}
	return totals
}

// capRate returns annualised rent over market value as an unrounded percentage.
// ok is false when the market value is zero and the property must be skipped.
func capRate(monthlyRent, marketValue decimal.Decimal) (rate decimal.Decimal, ok bool) {
	if marketValue.IsZero() {
		return decimal.Zero, false
	}
	return monthlyRent.Mul(decimal.NewFromInt(12)).Div(marketValue).Mul(hundred), true
}

// propertyIDs returns the ids of properties in order.
func propertyIDs(properties []model.Property) []string {
	ids := make([]string, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}
	return ids
}

// trendBucket is the running state of one trend bucket.
type trendBucket struct {
	ledgerTotals
	start time.Time
}

// buildTrend buckets transactions by granularity over from..to and fills every bucket in
// the span, including those without transactions. Cumulative net income runs in
// chronological order.
func buildTrend(g model.Granularity, from, to time.Time, add func(buckets map[time.Time]*trendBucket)) []model.TrendPoint {
	buckets := make(map[time.Time]*trendBucket)
	var order []time.Time
	for start := BucketStart(g, from); !start.After(to); start = NextBucket(g, start) {
		buckets[start] = &trendBucket{start: start}
		order = append(order, start)
	}

	add(buckets)

	points := make([]model.TrendPoint, 0, len(order))
	cumulative := decimal.Zero
	for _, start := range order {
		b := buckets[start]
		net := b.net()
		cumulative = cumulative.Add(net)
		points = append(points, model.TrendPoint{
			Period:              BucketLabel(g, start),
			StartDate:           start.Format("2006-01-02"),
			EndDate:             BucketEnd(g, start).Format("2006-01-02"),
			Income:              b.income,
			Expenses:            b.expenses,
			NetIncome:           net,
			CumulativeNetIncome: cumulative,
			TransactionCount:    b.count,
		})
	}
	return points
}

// addTransactions returns a bucket filler that adds each non-deleted transaction to its bucket.
func addTransactions(g model.Granularity, transactions []model.Transaction) func(map[time.Time]*trendBucket) {
	return func(buckets map[time.Time]*trendBucket) {
		for _, t := range transactions {
			if t.IsDeleted() {
				continue
			}
			if b, ok := buckets[BucketStart(g, t.TransactionDate)]; ok {
				b.add(t)
			}
		}
	}
}

// addMetrics returns a bucket filler that folds stored monthly aggregates into their bucket.
func addMetrics(g model.Granularity, metrics []model.MonthlyMetric) func(map[time.Time]*trendBucket) {
	return func(buckets map[time.Time]*trendBucket) {
		for _, m := range metrics {
			b, ok := buckets[BucketStart(g, m.Period().Start())]
			if !ok {
				continue
			}
			b.income = b.income.Add(m.TotalIncome)
			b.expenses = b.expenses.Add(m.TotalExpenses)
			b.count += m.TransactionCount
		}
	}
}

// buildExpenseBreakdown merges uncategorised totals under model.UncategorizedLabel, computes
// each category's share of total expenses and sorts descending by amount. Equal amounts keep
// the input order.
func buildExpenseBreakdown(totals []repository.CategoryTotal) []model.ExpenseCategory {
	index := make(map[string]int)
	breakdown := []model.ExpenseCategory{}
	total := decimal.Zero

	for _, ct := range totals {
		name := ct.Name
		if name == "" {
			name = model.UncategorizedLabel
		}
		amount := normaliseMoney(ct.Amount)
		total = total.Add(amount)

		if i, ok := index[name]; ok {
			breakdown[i].Amount = breakdown[i].Amount.Add(amount)
			breakdown[i].TransactionCount += ct.Count
			continue
		}
		index[name] = len(breakdown)
		breakdown = append(breakdown, model.ExpenseCategory{
			Category:         name,
			Amount:           amount,
			TransactionCount: ct.Count,
		})
	}

	for i := range breakdown {
		breakdown[i].Percentage = percentage(breakdown[i].Amount, total)
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Amount.GreaterThan(breakdown[j].Amount)
	})

	return breakdown
}

// rankProperties orders rankings descending by the sort key and assigns 1-based ranks.
// Ties keep the input order.
func rankProperties(rankings []model.PropertyRanking, sortBy model.RankingSort) {
	sort.SliceStable(rankings, func(i, j int) bool {
		switch sortBy {
		case model.SortByTotalIncome:
			return rankings[i].TotalIncome.GreaterThan(rankings[j].TotalIncome)
		case model.SortByROI:
			return rankings[i].ROI > rankings[j].ROI
		default:
			return rankings[i].NetIncome.GreaterThan(rankings[j].NetIncome)
		}
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
}
