package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// ParseAnalyticsFilter extracts and validates the common analytics filter from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - propertyId: Must be a valid UUID
//   - dateFrom/dateTo: Must be YYYY-MM-DD, dateFrom not after dateTo
//
// Returns an error wrapping an apperrors validation sentinel if any parameter fails validation.
func ParseAnalyticsFilter(propertyIDParam, dateFromParam, dateToParam string) (model.AnalyticsFilter, error) {
	filter := model.AnalyticsFilter{PropertyID: strings.TrimSpace(propertyIDParam)}

	if filter.PropertyID != "" {
		if _, err := uuid.Parse(filter.PropertyID); err != nil {
			return model.AnalyticsFilter{}, fmt.Errorf("%w: propertyId %s", apperrors.ErrInvalidUUID, filter.PropertyID)
		}
	}

	from, to, err := parseDateRange(dateFromParam, dateToParam)
	if err != nil {
		return model.AnalyticsFilter{}, err
	}
	filter.DateFrom = from
	filter.DateTo = to

	return filter, nil
}

// ParseKPIRequest extracts a KPI query from query parameters.
// includePropertyDetails accepts any strconv.ParseBool value and defaults to false.
func ParseKPIRequest(propertyIDParam, dateFromParam, dateToParam, includeDetailsParam string) (model.KPIRequest, error) {
	filter, err := ParseAnalyticsFilter(propertyIDParam, dateFromParam, dateToParam)
	if err != nil {
		return model.KPIRequest{}, err
	}

	includeDetails, err := parseOptionalBool(includeDetailsParam, "includePropertyDetails")
	if err != nil {
		return model.KPIRequest{}, err
	}

	return model.KPIRequest{AnalyticsFilter: filter, IncludePropertyDetails: includeDetails}, nil
}

// ParseChartRequest extracts a charts query from query parameters.
//
// Validation rules:
//   - granularity: daily, weekly, monthly or yearly (empty lets the server choose)
//   - chartType: all, cashflow, expenses or metrics (defaults to all)
func ParseChartRequest(propertyIDParam, dateFromParam, dateToParam, granularityParam, chartTypeParam string) (model.ChartRequest, error) {
	filter, err := ParseAnalyticsFilter(propertyIDParam, dateFromParam, dateToParam)
	if err != nil {
		return model.ChartRequest{}, err
	}

	req := model.ChartRequest{AnalyticsFilter: filter, ChartType: model.ChartTypeAll}

	if granularityParam != "" {
		g := model.Granularity(strings.ToLower(strings.TrimSpace(granularityParam)))
		if !model.ValidGranularities[g] {
			return model.ChartRequest{}, fmt.Errorf("%w: %s (must be daily, weekly, monthly or yearly)", apperrors.ErrInvalidGranularity, granularityParam)
		}
		req.Granularity = g
	}

	if chartTypeParam != "" {
		ct := model.ChartType(strings.ToLower(strings.TrimSpace(chartTypeParam)))
		if !model.ValidChartTypes[ct] {
			return model.ChartRequest{}, fmt.Errorf("%w: %s (must be all, cashflow, expenses or metrics)", apperrors.ErrInvalidChartType, chartTypeParam)
		}
		req.ChartType = ct
	}

	return req, nil
}

// ParseComparisonRequest extracts a property ranking query from query parameters.
// sortBy must be netIncome, totalIncome or roi and defaults to netIncome.
func ParseComparisonRequest(dateFromParam, dateToParam, sortByParam string) (model.ComparisonRequest, error) {
	from, to, err := parseDateRange(dateFromParam, dateToParam)
	if err != nil {
		return model.ComparisonRequest{}, err
	}

	req := model.ComparisonRequest{DateFrom: from, DateTo: to, SortBy: model.SortByNetIncome}

	if sortByParam != "" {
		sortBy := model.RankingSort(strings.TrimSpace(sortByParam))
		if !model.ValidRankingSorts[sortBy] {
			return model.ComparisonRequest{}, fmt.Errorf("%w: %s (must be netIncome, totalIncome or roi)", apperrors.ErrInvalidSortBy, sortByParam)
		}
		req.SortBy = sortBy
	}

	return req, nil
}

// ParseValidatePeriod extracts the period of a validation query. All parameters are required.
func ParseValidatePeriod(propertyIDParam, yearParam, monthParam string) (propertyID string, year, month int, err error) {
	propertyID = strings.TrimSpace(propertyIDParam)
	if _, err := uuid.Parse(propertyID); err != nil {
		return "", 0, 0, fmt.Errorf("%w: propertyId %q", apperrors.ErrInvalidUUID, propertyIDParam)
	}

	year, err = strconv.Atoi(yearParam)
	if err != nil || year < 1 || year > 9999 {
		return "", 0, 0, fmt.Errorf("%w: year must be a number between 1 and 9999", apperrors.ErrInvalidParameter)
	}

	month, err = strconv.Atoi(monthParam)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: month must be a number", apperrors.ErrInvalidParameter)
	}
	if month < 1 || month > 12 {
		return "", 0, 0, fmt.Errorf("%w: got %d", apperrors.ErrInvalidMonth, month)
	}

	return propertyID, year, month, nil
}

// ParseTransactionFilter extracts a ledger listing filter from query parameters.
//
// Validation rules:
//   - propertyId: Must be a valid UUID
//   - type: INCOME or EXPENSE
//   - dateFrom/dateTo: Must be YYYY-MM-DD, dateFrom not after dateTo
//   - includeDeleted: any strconv.ParseBool value, defaults to false
func ParseTransactionFilter(userID, propertyIDParam, dateFromParam, dateToParam, typeParam, includeDeletedParam string) (model.TransactionFilter, error) {
	analytics, err := ParseAnalyticsFilter(propertyIDParam, dateFromParam, dateToParam)
	if err != nil {
		return model.TransactionFilter{}, err
	}

	filter := model.TransactionFilter{
		UserID:   userID,
		DateFrom: analytics.DateFrom,
		DateTo:   analytics.DateTo,
	}
	if analytics.PropertyID != "" {
		filter.PropertyIDs = []string{analytics.PropertyID}
	}

	if typeParam != "" {
		txType := model.TransactionType(strings.ToUpper(strings.TrimSpace(typeParam)))
		if !model.ValidTransactionTypes[txType] {
			return model.TransactionFilter{}, fmt.Errorf("%w: type %s (must be INCOME or EXPENSE)", apperrors.ErrInvalidParameter, typeParam)
		}
		filter.Type = txType
	}

	filter.IncludeDeleted, err = parseOptionalBool(includeDeletedParam, "includeDeleted")
	if err != nil {
		return model.TransactionFilter{}, err
	}

	return filter, nil
}

func parseDateRange(dateFromParam, dateToParam string) (from, to *time.Time, err error) {
	if dateFromParam != "" {
		t, err := parseDate(dateFromParam)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid dateFrom: %w", err)
		}
		from = &t
	}

	if dateToParam != "" {
		t, err := parseDate(dateToParam)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid dateTo: %w", err)
		}
		to = &t
	}

	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("%w: dateFrom %s is after dateTo %s", apperrors.ErrInvalidDateRange, dateFromParam, dateToParam)
	}

	return from, to, nil
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(str string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(str))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, str)
	}
	return t, nil
}

func parseOptionalBool(value, name string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", apperrors.ErrInvalidParameter, name)
	}
	return b, nil
}
