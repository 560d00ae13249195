package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// CategoryRepository reads the category reference table.
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new CategoryRepository with the provided database connection.
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetCategories returns categories ordered by type and name.
func (r *CategoryRepository) GetCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `
		SELECT id, name, type, is_active
		FROM category
	`
	var args []any
	if activeOnly {
		query += " WHERE is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY type ASC, name ASC"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storeErr("failed to query category table", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.IsActive); err != nil {
			return nil, storeErr("failed to scan category table results", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating category table", err)
	}

	return categories, nil
}

// GetCategoryOnID returns a single category, active or not.
func (r *CategoryRepository) GetCategoryOnID(ctx context.Context, categoryID string) (model.Category, error) {
	query := `
		SELECT id, name, type, is_active
		FROM category
		WHERE id = ?
	`

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var c model.Category
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), categoryID).Scan(&c.ID, &c.Name, &c.Type, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, apperrors.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, storeErr("failed to query category", err)
	}

	return c, nil
}
