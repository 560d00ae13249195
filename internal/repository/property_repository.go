package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// PropertyRepository provides data access methods for the property table.
type PropertyRepository struct {
	db *database.DB
}

// NewPropertyRepository creates a new PropertyRepository with the provided database connection.
func NewPropertyRepository(db *database.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, user_id, name, address, purchase_price, market_value, monthly_rent, created_at, deleted_at`

// GetProperties retrieves the properties of a user based on filter criteria.
// Soft-deleted properties are excluded unless the filter asks for them.
// Results are ordered by name, then id, which is the stable order every ranking falls back on.
// Returns an empty slice if no properties match.
func (r *PropertyRepository) GetProperties(ctx context.Context, filter model.PropertyFilter) ([]model.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM property
		WHERE user_id = ?
	`
	args := []any{filter.UserID}

	if filter.PropertyID != "" {
		query += " AND id = ?"
		args = append(args, filter.PropertyID)
	}

	if !filter.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}

	query += " ORDER BY name ASC, id ASC"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storeErr("failed to query property table", err)
	}
	defer rows.Close()

	properties := []model.Property{}

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating property table", err)
	}

	return properties, nil
}

// GetPropertyOnID retrieves a single non-deleted property owned by userID.
// A property owned by a different user is reported as ErrPropertyNotFound.
func (r *PropertyRepository) GetPropertyOnID(ctx context.Context, userID, propertyID string) (model.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM property
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	p, err := scanProperty(r.db.QueryRowContext(ctx, r.db.Rebind(query), propertyID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Property{}, apperrors.ErrPropertyNotFound
	}
	if err != nil {
		return model.Property{}, err
	}

	return p, nil
}

// GetUserIDsWithProperties returns every user owning at least one non-deleted property.
// Used by the scheduled reconciliation trigger.
func (r *PropertyRepository) GetUserIDsWithProperties(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM property
		WHERE deleted_at IS NULL
		ORDER BY user_id
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("failed to query property owners", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("failed to scan property owners", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating property owners", err)
	}

	return userIDs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (model.Property, error) {
	var p model.Property
	var address, deletedAt sql.NullString
	var marketValue decimal.NullDecimal
	var createdAt string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&address,
		&p.PurchasePrice,
		&marketValue,
		&p.MonthlyRent,
		&createdAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Property{}, err
	}
	if err != nil {
		return model.Property{}, storeErr("failed to scan property table results", err)
	}

	p.Address = address.String
	if marketValue.Valid {
		mv := marketValue.Decimal
		p.MarketValue = &mv
	}

	p.CreatedAt, err = ParseTime(createdAt)
	if err != nil {
		return model.Property{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	p.DeletedAt, err = parseNullTime(deletedAt)
	if err != nil {
		return model.Property{}, fmt.Errorf("failed to parse deleted_at: %w", err)
	}

	return p, nil
}
