package main

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// formatMoney renders amount in the major unit of currency using go-money's formatter.
// Unknown currency codes fall back to a plain two-decimal amount followed by the code.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// table writes a markdown table with header and rows.
func table(b *strings.Builder, header []string, rows [][]string) {
	fmt.Fprintf(b, "| %s |\n", strings.Join(header, " | "))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintf(b, "|%s|\n", strings.Join(sep, "|"))
	for _, row := range rows {
		fmt.Fprintf(b, "| %s |\n", strings.Join(row, " | "))
	}
	b.WriteString("\n")
}

func reconcileMarkdown(r model.ReconcileResult) string {
	var b strings.Builder
	b.WriteString("# Reconcile\n\n")

	if v := r.Validation; v != nil {
		status := "valid"
		if !v.IsValid {
			status = fmt.Sprintf("stale (%d differences)", len(v.Differences))
		}
		fmt.Fprintf(&b, "Current month %04d-%02d was **%s** before recalculation.\n\n", v.Year, v.Month, status)
	}

	rc := r.Recalculation
	switch rc.Type {
	case "property":
		updated := 0
		if rc.Updated != nil {
			updated = *rc.Updated
		}
		fmt.Fprintf(&b, "Property `%s`: %d months recalculated.\n\n", rc.PropertyID, updated)
	default:
		properties, months := 0, 0
		if rc.UpdatedProperties != nil {
			properties = *rc.UpdatedProperties
		}
		if rc.UpdatedMonths != nil {
			months = *rc.UpdatedMonths
		}
		fmt.Fprintf(&b, "%d properties, %d months recalculated.\n\n", properties, months)
		if len(rc.Results) > 0 {
			rows := make([][]string, len(rc.Results))
			for i, res := range rc.Results {
				status := "ok"
				if res.Error != "" {
					status = res.Error
				}
				rows[i] = []string{"`" + res.PropertyID + "`", fmt.Sprint(res.Updated), status}
			}
			table(&b, []string{"Property", "Months", "Status"}, rows)
		}
	}

	if c := r.Cleanup; c != nil {
		if c.Error != "" {
			fmt.Fprintf(&b, "Cleanup failed: %s\n", c.Error)
		} else {
			fmt.Fprintf(&b, "Cleanup removed %d empty rows.\n", c.Deleted)
		}
	}

	return b.String()
}

func validationMarkdown(v model.ValidationResult, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Validation %04d-%02d\n\n", v.Year, v.Month)

	if v.IsValid {
		b.WriteString("The stored aggregate matches the ledger.\n\n")
	} else if v.Stored == nil {
		b.WriteString("No aggregate is stored for this period.\n\n")
	} else {
		rows := make([][]string, len(v.Differences))
		for i, d := range v.Differences {
			rows[i] = []string{d.Field, d.Stored, d.Calculated}
		}
		table(&b, []string{"Field", "Stored", "Calculated"}, rows)
	}

	table(&b, []string{"Income", "Expenses", "Cash flow", "Transactions"}, [][]string{{
		formatMoney(v.Calculated.TotalIncome, currency),
		formatMoney(v.Calculated.TotalExpenses, currency),
		formatMoney(v.Calculated.CashFlow, currency),
		fmt.Sprint(v.Calculated.TransactionCount),
	}})

	return b.String()
}

func kpisMarkdown(k model.PortfolioKPIs, currency string) string {
	var b strings.Builder
	b.WriteString("# Portfolio KPIs\n\n")

	table(&b, []string{"Metric", "Value"}, [][]string{
		{"Properties", fmt.Sprint(k.PropertyCount)},
		{"Transactions", fmt.Sprint(k.TransactionCount)},
		{"Total income", formatMoney(k.TotalIncome, currency)},
		{"Total expenses", formatMoney(k.TotalExpenses, currency)},
		{"Net income", formatMoney(k.NetIncome, currency)},
		{"Total investment", formatMoney(k.TotalInvestment, currency)},
		{"Market value", formatMoney(k.TotalMarketValue, currency)},
		{"Monthly rent", formatMoney(k.TotalMonthlyRent, currency)},
		{"Cash on cash return", formatPercent(k.CashOnCashReturn)},
		{"Average cap rate", formatPercent(k.AverageCapRate)},
		{"Expense to income", formatPercent(k.ExpenseToIncomeRatio)},
		{"Average ROI", formatPercent(k.AverageROI)},
	})

	if len(k.Properties) > 0 {
		b.WriteString("## Properties\n\n")
		rows := make([][]string, len(k.Properties))
		for i, p := range k.Properties {
			rows[i] = []string{
				p.PropertyName,
				formatMoney(p.NetIncome, currency),
				formatPercent(p.CashOnCashReturn),
				formatPercent(p.CapRate),
				formatPercent(p.ROI),
			}
		}
		table(&b, []string{"Property", "Net income", "Cash on cash", "Cap rate", "ROI"}, rows)
	}

	return b.String()
}

func trendMarkdown(points []model.TrendPoint, g model.Granularity, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cash flow (%s)\n\n", g)

	if len(points) == 0 {
		b.WriteString("No transactions in range.\n")
		return b.String()
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			p.Period,
			formatMoney(p.Income, currency),
			formatMoney(p.Expenses, currency),
			formatMoney(p.NetIncome, currency),
			formatMoney(p.CumulativeNetIncome, currency),
		}
	}
	table(&b, []string{"Period", "Income", "Expenses", "Net", "Cumulative"}, rows)

	return b.String()
}

func comparisonMarkdown(rankings []model.PropertyRanking, sortBy model.RankingSort, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Property ranking by %s\n\n", sortBy)

	if len(rankings) == 0 {
		b.WriteString("No properties.\n")
		return b.String()
	}

	rows := make([][]string, len(rankings))
	for i, r := range rankings {
		rows[i] = []string{
			fmt.Sprint(r.Rank),
			r.PropertyName,
			formatMoney(r.TotalIncome, currency),
			formatMoney(r.TotalExpenses, currency),
			formatMoney(r.NetIncome, currency),
			formatPercent(r.ROI),
		}
	}
	table(&b, []string{"#", "Property", "Income", "Expenses", "Net", "ROI"}, rows)

	return b.String()
}
