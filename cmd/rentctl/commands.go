package main

import (
	"context"
	"flag"
	"strconv"

	"github.com/google/subcommands"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

type reconcileCmd struct {
	session
	property string
	from     string
	to       string
	cleanup  bool
	validate bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "recompute monthly aggregates from the ledger" }
func (*reconcileCmd) Usage() string {
	return `rentctl reconcile -user <id> [-property <id>] [-from <date>] [-to <date>] [-validate] [-cleanup]

  Recomputes monthly aggregates for one property or every property of the user.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.property, "property", "", "property id (defaults to all properties)")
	f.StringVar(&c.from, "from", "", "first date to reconcile (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last date to reconcile (YYYY-MM-DD)")
	f.BoolVar(&c.cleanup, "cleanup", false, "remove empty aggregate rows afterwards")
	f.BoolVar(&c.validate, "validate", false, "validate the current month before recalculating")
}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		opts, err := validation.ValidateReconcileRequest(request.ReconcileRequest{
			PropertyID: c.property,
			FromDate:   c.from,
			ToDate:     c.to,
			Cleanup:    c.cleanup,
			Validate:   c.validate,
		})
		if err != nil {
			return "", err
		}
		result, err := c.app.Services.Reconciliation.Reconcile(ctx, c.user, opts)
		if err != nil {
			return "", err
		}
		return reconcileMarkdown(result), nil
	})
}

type validateCmd struct {
	session
	property string
	year     string
	month    string
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "compare a stored monthly aggregate with the ledger" }
func (*validateCmd) Usage() string {
	return `rentctl validate -user <id> -property <id> -year <yyyy> -month <m>

  Reports whether the stored aggregate of a month matches a fresh calculation.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.property, "property", "", "property id")
	f.StringVar(&c.year, "year", "", "year of the period")
	f.StringVar(&c.month, "month", "", "month of the period (1-12)")
}

func (c *validateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		propertyID, year, month, err := request.ParseValidatePeriod(c.property, c.year, c.month)
		if err != nil {
			return "", err
		}
		result, err := c.app.Services.Reconciliation.Validate(ctx, c.user, propertyID, year, month)
		if err != nil {
			return "", err
		}
		return validationMarkdown(result, c.currency), nil
	})
}

type cleanupCmd struct {
	session
}

func (*cleanupCmd) Name() string     { return "cleanup" }
func (*cleanupCmd) Synopsis() string { return "remove empty monthly aggregates of a user" }
func (*cleanupCmd) Usage() string {
	return `rentctl cleanup -user <id>
`
}

func (c *cleanupCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *cleanupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		deleted, err := c.app.Services.Reconciliation.Cleanup(ctx, c.user)
		if err != nil {
			return "", err
		}
		return "# Cleanup\n\nRemoved " + strconv.FormatInt(deleted, 10) + " empty aggregate rows.\n", nil
	})
}

type kpisCmd struct {
	session
	property string
	from     string
	to       string
	details  bool
}

func (*kpisCmd) Name() string     { return "kpis" }
func (*kpisCmd) Synopsis() string { return "display portfolio KPIs" }
func (*kpisCmd) Usage() string {
	return `rentctl kpis -user <id> [-property <id>] [-from <date>] [-to <date>] [-details]
`
}

func (c *kpisCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.property, "property", "", "restrict to one property")
	f.StringVar(&c.from, "from", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "end date (YYYY-MM-DD)")
	f.BoolVar(&c.details, "details", false, "include per-property KPIs")
}

func (c *kpisCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		req, err := request.ParseKPIRequest(c.property, c.from, c.to, strconv.FormatBool(c.details))
		if err != nil {
			return "", err
		}
		kpis, err := c.app.Services.Analytics.GetKPIs(ctx, c.user, req)
		if err != nil {
			return "", err
		}
		return kpisMarkdown(kpis, c.currency), nil
	})
}

type trendCmd struct {
	session
	property    string
	from        string
	to          string
	granularity string
	source      string
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "display the cash flow trend" }
func (*trendCmd) Usage() string {
	return `rentctl trend -user <id> [-property <id>] [-from <date>] [-to <date>] [-g <granularity>] [-source ledger|metrics]

  Buckets income and expenses by day, week, month or year. With -source metrics the
  trend is read from stored monthly aggregates.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.property, "property", "", "restrict to one property")
	f.StringVar(&c.from, "from", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "end date (YYYY-MM-DD)")
	f.StringVar(&c.granularity, "g", "", "daily, weekly, monthly or yearly (chosen from the range when empty)")
	f.StringVar(&c.source, "source", "ledger", "ledger or metrics")
}

func (c *trendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		chartType := string(model.ChartTypeCashFlow)
		if c.source == "metrics" {
			chartType = string(model.ChartTypeMetrics)
		}
		req, err := request.ParseChartRequest(c.property, c.from, c.to, c.granularity, chartType)
		if err != nil {
			return "", err
		}

		analytics := c.app.Services.Analytics
		trend := analytics.GetCashFlowTrend
		if req.ChartType == model.ChartTypeMetrics {
			trend = analytics.GetMetricTrend
		}
		points, g, err := trend(ctx, c.user, req.AnalyticsFilter, req.Granularity)
		if err != nil {
			return "", err
		}
		return trendMarkdown(points, g, c.currency), nil
	})
}

type compareCmd struct {
	session
	from   string
	to     string
	sortBy string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "rank properties by performance" }
func (*compareCmd) Usage() string {
	return `rentctl compare -user <id> [-from <date>] [-to <date>] [-sort netIncome|totalIncome|roi]
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "end date (YYYY-MM-DD)")
	f.StringVar(&c.sortBy, "sort", string(model.SortByNetIncome), "ranking key")
}

func (c *compareCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context) (string, error) {
		req, err := request.ParseComparisonRequest(c.from, c.to, c.sortBy)
		if err != nil {
			return "", err
		}
		rankings, err := c.app.Services.Analytics.GetPropertyComparison(ctx, c.user, req)
		if err != nil {
			return "", err
		}
		return comparisonMarkdown(rankings, req.SortBy, c.currency), nil
	})
}
