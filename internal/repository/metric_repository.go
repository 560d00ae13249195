package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// MetricRepository provides data access methods for the monthly_metric table.
type MetricRepository struct {
	db *database.DB
}

// NewMetricRepository creates a new repository instance.
func NewMetricRepository(db *database.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

const metricColumns = `property_id, user_id, year, month, total_income, total_expenses, cash_flow,
		transaction_count, updated_at`

// UpsertMonthlyMetric inserts or updates the aggregate row keyed by (property, year, month)
// in a single statement and returns the row as stored.
//
// The update branch only fires when at least one total differs from the stored row, so
// re-running a reconciliation over an unchanged ledger leaves updated_at untouched.
func (r *MetricRepository) UpsertMonthlyMetric(ctx context.Context, m model.MonthlyMetric) (model.MonthlyMetric, error) {
	query := `
		INSERT INTO monthly_metric (` + metricColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (property_id, year, month) DO UPDATE SET
			user_id = excluded.user_id,
			total_income = excluded.total_income,
			total_expenses = excluded.total_expenses,
			cash_flow = excluded.cash_flow,
			transaction_count = excluded.transaction_count,
			updated_at = excluded.updated_at
		WHERE monthly_metric.total_income <> excluded.total_income
			OR monthly_metric.total_expenses <> excluded.total_expenses
			OR monthly_metric.cash_flow <> excluded.cash_flow
			OR monthly_metric.transaction_count <> excluded.transaction_count
			OR monthly_metric.user_id <> excluded.user_id
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		m.PropertyID,
		m.UserID,
		m.Year,
		m.Month,
		m.TotalIncome,
		m.TotalExpenses,
		m.CashFlow,
		m.TransactionCount,
		formatTimestamp(m.UpdatedAt),
	)
	if err != nil {
		return model.MonthlyMetric{}, storeErr("failed to upsert monthly_metric", err)
	}

	return r.GetMonthlyMetric(ctx, m.UserID, m.PropertyID, m.Year, m.Month)
}

// GetMonthlyMetric returns the stored aggregate for a period, or ErrMetricNotFound when
// the period has never been reconciled.
func (r *MetricRepository) GetMonthlyMetric(ctx context.Context, userID, propertyID string, year, month int) (model.MonthlyMetric, error) {
	query := `
		SELECT ` + metricColumns + `
		FROM monthly_metric
		WHERE property_id = ? AND user_id = ? AND year = ? AND month = ?
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	m, err := scanMetric(r.db.QueryRowContext(ctx, r.db.Rebind(query), propertyID, userID, year, month))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MonthlyMetric{}, apperrors.ErrMetricNotFound
	}
	if err != nil {
		return model.MonthlyMetric{}, err
	}

	return m, nil
}

// GetMonthlyMetrics streams the stored aggregates matching the filter, ordered by period and
// property, to callback one row at a time.
//
// A zero From or To period leaves that side of the range open. An empty PropertyIDs
// slice selects every property of the user.
//
// Returns an error if the query fails or if the callback returns an error during processing.
func (r *MetricRepository) GetMonthlyMetrics(
	ctx context.Context,
	filter model.MetricFilter,
	callback func(record model.MonthlyMetric) error,
) error {
	query := `
		SELECT ` + metricColumns + `
		FROM monthly_metric
		WHERE user_id = ?
	`
	args := []any{filter.UserID}

	if len(filter.PropertyIDs) > 0 {
		query += " AND property_id IN (" + placeholders(len(filter.PropertyIDs)) + ")"
		for _, id := range filter.PropertyIDs {
			args = append(args, id)
		}
	}

	if filter.From != (model.Period{}) {
		query += " AND (year * 100 + month) >= ?"
		args = append(args, filter.From.Year*100+filter.From.Month)
	}

	if filter.To != (model.Period{}) {
		query += " AND (year * 100 + month) <= ?"
		args = append(args, filter.To.Year*100+filter.To.Month)
	}

	query += " ORDER BY year ASC, month ASC, property_id ASC"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return storeErr("failed to query monthly_metric", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanMetric(rows)
		if err != nil {
			return err
		}

		if err := callback(record); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return storeErr("error iterating monthly_metric", err)
	}

	return nil
}

// DeleteEmptyMetrics removes the user's aggregate rows whose totals and count are all zero.
// Returns the number of rows deleted.
func (r *MetricRepository) DeleteEmptyMetrics(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM monthly_metric
		WHERE user_id = ?
		AND total_income = 0
		AND total_expenses = 0
		AND transaction_count = 0
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return 0, storeErr("failed to delete empty monthly_metric rows", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, storeErr("failed to read affected rows", err)
	}

	return n, nil
}

func scanMetric(row rowScanner) (model.MonthlyMetric, error) {
	var m model.MonthlyMetric
	var updatedAtStr string

	err := row.Scan(
		&m.PropertyID,
		&m.UserID,
		&m.Year,
		&m.Month,
		&m.TotalIncome,
		&m.TotalExpenses,
		&m.CashFlow,
		&m.TransactionCount,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MonthlyMetric{}, err
	}
	if err != nil {
		return model.MonthlyMetric{}, storeErr("failed to scan monthly_metric row", err)
	}

	m.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.MonthlyMetric{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return m, nil
}
