package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// TransactionRepository provides data access methods for the ledger ("transaction" table).
// Rows are only ever soft-deleted; every aggregation query excludes tombstoned rows.
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TypeTotal is the grouped sum and row count of one transaction type.
type TypeTotal struct {
	Amount decimal.Decimal
	Count  int
}

// CategoryTotal is the grouped sum and row count of one category.
// Name is empty for rows without a category or with an unknown category.
type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
	Count  int
}

const transactionColumns = `t.id, t.user_id, t.property_id, t.category_id, t.type, t.amount, t.transaction_date,
		t.is_recurring, t.description, t.created_at, t.updated_at, t.deleted_at`

// buildTransactionWhere renders a TransactionFilter as a WHERE clause against alias t.
func buildTransactionWhere(filter model.TransactionFilter) (string, []any) {
	clauses := []string{"t.user_id = ?"}
	args := []any{filter.UserID}

	if len(filter.PropertyIDs) > 0 {
		clauses = append(clauses, "t.property_id IN ("+placeholders(len(filter.PropertyIDs))+")")
		for _, id := range filter.PropertyIDs {
			args = append(args, id)
		}
	}

	if filter.Type != "" {
		clauses = append(clauses, "t.type = ?")
		args = append(args, string(filter.Type))
	}

	if filter.DateFrom != nil {
		clauses = append(clauses, "t.transaction_date >= ?")
		args = append(args, formatDate(*filter.DateFrom))
	}

	if filter.DateTo != nil {
		clauses = append(clauses, "t.transaction_date <= ?")
		args = append(args, formatDate(*filter.DateTo))
	}

	if !filter.IncludeDeleted {
		clauses = append(clauses, "t.deleted_at IS NULL")
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// GetTransactions retrieves ledger rows matching the filter, sorted by date in ascending order.
// Returns an empty slice if nothing matches.
func (r *TransactionRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	where, args := buildTransactionWhere(filter)

	//#nosec G202 -- Safe: the WHERE clause is assembled from fixed fragments and bind markers
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction" t` + where + `
		ORDER BY t.transaction_date ASC, t.created_at ASC, t.id ASC
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storeErr("failed to query transaction table", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating transaction table", err)
	}

	return transactions, nil
}

// GetTransactionOnID retrieves a single transaction owned by userID, including soft-deleted rows
// so they can be restored. A row owned by another user is reported as ErrTransactionNotFound.
func (r *TransactionRepository) GetTransactionOnID(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction" t
		WHERE t.id = ? AND t.user_id = ?
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	t, err := scanTransaction(r.db.QueryRowContext(ctx, r.db.Rebind(query), transactionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// InsertTransaction stores a new ledger row.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, user_id, property_id, category_id, type, amount, transaction_date,
			is_recurring, description, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		t.ID,
		t.UserID,
		t.PropertyID,
		t.CategoryID,
		string(t.Type),
		t.Amount,
		formatDate(t.TransactionDate),
		t.IsRecurring,
		t.Description,
		formatTimestamp(t.CreatedAt),
		formatTimestamp(t.UpdatedAt),
		formatNullTimestamp(t.DeletedAt),
	)
	if err != nil {
		return storeErr("failed to insert transaction", err)
	}

	return nil
}

// UpdateTransaction overwrites the mutable fields of a ledger row owned by t.UserID.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		UPDATE "transaction"
		SET property_id = ?, category_id = ?, type = ?, amount = ?, transaction_date = ?,
			is_recurring = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		t.PropertyID,
		t.CategoryID,
		string(t.Type),
		t.Amount,
		formatDate(t.TransactionDate),
		t.IsRecurring,
		t.Description,
		formatTimestamp(t.UpdatedAt),
		t.ID,
		t.UserID,
	)
	if err != nil {
		return storeErr("failed to update transaction", err)
	}

	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

// SetDeletedAt writes or clears the soft-delete tombstone of a ledger row.
// A nil deletedAt restores the row.
func (r *TransactionRepository) SetDeletedAt(ctx context.Context, userID, transactionID string, deletedAt *time.Time, updatedAt time.Time) error {
	query := `
		UPDATE "transaction"
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		formatNullTimestamp(deletedAt),
		formatTimestamp(updatedAt),
		transactionID,
		userID,
	)
	if err != nil {
		return storeErr("failed to update transaction tombstone", err)
	}

	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

// SumByType aggregates the non-deleted rows of one property within [start, end] (inclusive),
// grouped by transaction type. Sums are rounded to cents. Types without rows are absent from the map.
func (r *TransactionRepository) SumByType(ctx context.Context, userID, propertyID string, start, end time.Time) (map[model.TransactionType]TypeTotal, error) {
	query := `
		SELECT t.type, COALESCE(SUM(t.amount), 0), COUNT(*)
		FROM "transaction" t
		WHERE t.user_id = ?
		AND t.property_id = ?
		AND t.transaction_date >= ?
		AND t.transaction_date <= ?
		AND t.deleted_at IS NULL
		GROUP BY t.type
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), userID, propertyID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, storeErr("failed to aggregate transaction table", err)
	}
	defer rows.Close()

	totals := make(map[model.TransactionType]TypeTotal)
	for rows.Next() {
		var txType string
		var total TypeTotal
		if err := rows.Scan(&txType, &total.Amount, &total.Count); err != nil {
			return nil, storeErr("failed to scan transaction aggregate", err)
		}
		total.Amount = roundMoney(total.Amount)
		totals[model.TransactionType(txType)] = total
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating transaction aggregate", err)
	}

	return totals, nil
}

// GetDateSpan returns the earliest and latest transaction dates of the non-deleted rows of a
// property, restricted to the optional bounds. The span is empty when no rows match.
func (r *TransactionRepository) GetDateSpan(ctx context.Context, userID, propertyID string, from, to *time.Time) (model.DateSpan, error) {
	filter := model.TransactionFilter{
		UserID:   userID,
		DateFrom: from,
		DateTo:   to,
	}
	if propertyID != "" {
		filter.PropertyIDs = []string{propertyID}
	}
	where, args := buildTransactionWhere(filter)

	//#nosec G202 -- Safe: the WHERE clause is assembled from fixed fragments and bind markers
	query := `
		SELECT MIN(t.transaction_date), MAX(t.transaction_date)
		FROM "transaction" t` + where

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var earliest, latest sql.NullString
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).Scan(&earliest, &latest); err != nil {
		return model.DateSpan{}, storeErr("failed to query transaction date span", err)
	}

	if !earliest.Valid || !latest.Valid {
		return model.DateSpan{}, nil
	}

	var span model.DateSpan
	var err error
	if span.Earliest, err = parseDateColumn(earliest.String); err != nil {
		return model.DateSpan{}, err
	}
	if span.Latest, err = parseDateColumn(latest.String); err != nil {
		return model.DateSpan{}, err
	}

	return span, nil
}

// GetExpenseTotalsByCategory groups the non-deleted EXPENSE rows matching the filter by category name.
// Rows without a category, or whose category no longer exists, share the empty name.
func (r *TransactionRepository) GetExpenseTotalsByCategory(ctx context.Context, filter model.TransactionFilter) ([]CategoryTotal, error) {
	filter.Type = model.TransactionTypeExpense
	filter.IncludeDeleted = false
	where, args := buildTransactionWhere(filter)

	//#nosec G202 -- Safe: the WHERE clause is assembled from fixed fragments and bind markers
	query := `
		SELECT COALESCE(c.name, ''), COALESCE(SUM(t.amount), 0), COUNT(*)
		FROM "transaction" t
		LEFT JOIN category c ON c.id = t.category_id` + where + `
		GROUP BY c.name
		ORDER BY c.name ASC
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storeErr("failed to aggregate expenses by category", err)
	}
	defer rows.Close()

	totals := []CategoryTotal{}
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Name, &ct.Amount, &ct.Count); err != nil {
			return nil, storeErr("failed to scan expense aggregate", err)
		}
		ct.Amount = roundMoney(ct.Amount)
		totals = append(totals, ct)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating expense aggregate", err)
	}

	return totals, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var categoryID, description, deletedAt sql.NullString
	var txType, dateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.PropertyID,
		&categoryID,
		&txType,
		&t.Amount,
		&dateStr,
		&t.IsRecurring,
		&description,
		&createdAtStr,
		&updatedAtStr,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, storeErr("failed to scan transaction table results", err)
	}

	t.Type = model.TransactionType(txType)
	t.Description = description.String
	if categoryID.Valid {
		id := categoryID.String
		t.CategoryID = &id
	}

	t.TransactionDate, err = parseDateColumn(dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse transaction_date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	t.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	t.DeletedAt, err = parseNullTime(deletedAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse deleted_at: %w", err)
	}

	return t, nil
}

// requireAffected turns a zero-row UPDATE into notFound.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to read affected rows", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
