package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// Seeded category ids; see database/migrations/00002_seed_categories.sql.
const (
	RentCategoryID        = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0001"
	LateFeesCategoryID    = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0002"
	RepairsCategoryID     = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0101"
	InsuranceCategoryID   = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0102"
	PropertyTaxCategoryID = "6c1f6f0e-2b7a-4d0e-9a51-0b6f5d1e0103"
)

// D parses a decimal literal and panics on malformed input. Test use only.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date parses a YYYY-MM-DD literal as UTC midnight and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// FixedClock returns a clock that always reports the given RFC3339 or YYYY-MM-DD instant.
func FixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t = Date(s)
	}
	return func() time.Time { return t }
}

// PropertyBuilder provides a fluent interface for creating test properties.
//
// Example usage:
//
//	// Simple creation with defaults
//	property := testutil.NewProperty(userID).Build(t, db)
//
//	// Customized property
//	property := testutil.NewProperty(userID).
//	    WithName("Harbour View").
//	    WithPurchasePrice("200000").
//	    WithMarketValue("250000").
//	    WithMonthlyRent("1500").
//	    Build(t, db)
type PropertyBuilder struct {
	ID            string
	UserID        string
	Name          string
	Address       string
	PurchasePrice decimal.Decimal
	MarketValue   *decimal.Decimal
	MonthlyRent   decimal.Decimal
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// NewProperty creates a PropertyBuilder owned by userID with sensible defaults.
func NewProperty(userID string) *PropertyBuilder {
	return &PropertyBuilder{
		ID:            MakeID(),
		UserID:        userID,
		Name:          MakePropertyName("Test Property"),
		Address:       "1 Test Street",
		PurchasePrice: D("200000"),
		MonthlyRent:   D("1500"),
		CreatedAt:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithID sets a custom ID.
func (b *PropertyBuilder) WithID(id string) *PropertyBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PropertyBuilder) WithName(name string) *PropertyBuilder {
	b.Name = name
	return b
}

// WithPurchasePrice sets the purchase price.
func (b *PropertyBuilder) WithPurchasePrice(amount string) *PropertyBuilder {
	b.PurchasePrice = D(amount)
	return b
}

// WithMarketValue sets an explicit market value.
func (b *PropertyBuilder) WithMarketValue(amount string) *PropertyBuilder {
	mv := D(amount)
	b.MarketValue = &mv
	return b
}

// WithMonthlyRent sets the monthly rent.
func (b *PropertyBuilder) WithMonthlyRent(amount string) *PropertyBuilder {
	b.MonthlyRent = D(amount)
	return b
}

// Deleted marks the property as soft-deleted.
func (b *PropertyBuilder) Deleted() *PropertyBuilder {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.DeletedAt = &at
	return b
}

// Build creates the property in the database and returns it.
func (b *PropertyBuilder) Build(t *testing.T, db *database.DB) model.Property {
	t.Helper()

	query := `
		INSERT INTO property (id, user_id, name, address, purchase_price, market_value, monthly_rent, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var marketValue any
	if b.MarketValue != nil {
		marketValue = *b.MarketValue
	}

	_, err := db.Exec(query, b.ID, b.UserID, b.Name, b.Address, b.PurchasePrice, marketValue, b.MonthlyRent,
		b.CreatedAt.Format(time.RFC3339), formatNullTime(b.DeletedAt))
	if err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}

	return model.Property{
		ID:            b.ID,
		UserID:        b.UserID,
		Name:          b.Name,
		Address:       b.Address,
		PurchasePrice: b.PurchasePrice,
		MarketValue:   b.MarketValue,
		MonthlyRent:   b.MonthlyRent,
		CreatedAt:     b.CreatedAt,
		DeletedAt:     b.DeletedAt,
	}
}

// CreateProperty creates a property with the given name and default values.
//
// Example usage:
//
//	property := testutil.CreateProperty(t, db, userID, "Harbour View")
func CreateProperty(t *testing.T, db *database.DB, userID, name string) model.Property {
	t.Helper()
	return NewProperty(userID).WithName(name).Build(t, db)
}

// TransactionBuilder provides a fluent interface for creating ledger rows.
//
// Example usage:
//
//	testutil.NewTransaction(property).
//	    Expense("250").
//	    OnDate("2024-03-10").
//	    WithCategory(testutil.RepairsCategoryID).
//	    Build(t, db)
type TransactionBuilder struct {
	ID              string
	UserID          string
	PropertyID      string
	CategoryID      *string
	Type            model.TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
	IsRecurring     bool
	Description     string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// NewTransaction creates a TransactionBuilder for an income row of 1000 on 2024-01-15.
func NewTransaction(property model.Property) *TransactionBuilder {
	return &TransactionBuilder{
		ID:              MakeID(),
		UserID:          property.UserID,
		PropertyID:      property.ID,
		Type:            model.TransactionTypeIncome,
		Amount:          D("1000"),
		TransactionDate: Date("2024-01-15"),
		Description:     "Test transaction",
		CreatedAt:       time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

// Income makes the row an income of amount.
func (b *TransactionBuilder) Income(amount string) *TransactionBuilder {
	b.Type = model.TransactionTypeIncome
	b.Amount = D(amount)
	return b
}

// Expense makes the row an expense of amount.
func (b *TransactionBuilder) Expense(amount string) *TransactionBuilder {
	b.Type = model.TransactionTypeExpense
	b.Amount = D(amount)
	return b
}

// OnDate sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) OnDate(date string) *TransactionBuilder {
	b.TransactionDate = Date(date)
	return b
}

// WithCategory sets the category id.
func (b *TransactionBuilder) WithCategory(categoryID string) *TransactionBuilder {
	b.CategoryID = &categoryID
	return b
}

// WithUser overrides the owning user, e.g. to plant inconsistent rows.
func (b *TransactionBuilder) WithUser(userID string) *TransactionBuilder {
	b.UserID = userID
	return b
}

// Recurring marks the row as recurring.
func (b *TransactionBuilder) Recurring() *TransactionBuilder {
	b.IsRecurring = true
	return b
}

// Deleted soft-deletes the row.
func (b *TransactionBuilder) Deleted() *TransactionBuilder {
	at := b.CreatedAt.Add(time.Hour)
	b.DeletedAt = &at
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *database.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, user_id, property_id, category_id, type, amount, transaction_date,
			is_recurring, description, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := b.CreatedAt.Format(time.RFC3339)
	_, err := db.Exec(query, b.ID, b.UserID, b.PropertyID, b.CategoryID, string(b.Type), b.Amount,
		b.TransactionDate.Format("2006-01-02"), b.IsRecurring, b.Description, createdAt, createdAt,
		formatNullTime(b.DeletedAt))
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:              b.ID,
		UserID:          b.UserID,
		PropertyID:      b.PropertyID,
		CategoryID:      b.CategoryID,
		Type:            b.Type,
		Amount:          b.Amount,
		TransactionDate: b.TransactionDate,
		IsRecurring:     b.IsRecurring,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
		DeletedAt:       b.DeletedAt,
	}
}

// CategoryBuilder provides a fluent interface for creating categories beyond the seeded set.
type CategoryBuilder struct {
	ID       string
	Name     string
	Type     model.TransactionType
	IsActive bool
}

// NewCategory creates an active expense CategoryBuilder.
func NewCategory() *CategoryBuilder {
	return &CategoryBuilder{
		ID:       MakeID(),
		Name:     "Category " + randomAlphanumeric(6),
		Type:     model.TransactionTypeExpense,
		IsActive: true,
	}
}

// WithName sets a custom name.
func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.Name = name
	return b
}

// WithType sets the category type.
func (b *CategoryBuilder) WithType(txType model.TransactionType) *CategoryBuilder {
	b.Type = txType
	return b
}

// Inactive marks the category as inactive.
func (b *CategoryBuilder) Inactive() *CategoryBuilder {
	b.IsActive = false
	return b
}

// Build creates the category in the database and returns it.
func (b *CategoryBuilder) Build(t *testing.T, db *database.DB) model.Category {
	t.Helper()

	_, err := db.Exec(`INSERT INTO category (id, name, type, is_active) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, string(b.Type), b.IsActive)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	return model.Category{ID: b.ID, Name: b.Name, Type: b.Type, IsActive: b.IsActive}
}

// MonthlyMetricBuilder writes aggregate rows directly, bypassing reconciliation.
//
// Example usage:
//
//	// A stale aggregate that no longer matches the ledger
//	testutil.NewMonthlyMetric(property, 2024, 3).WithTotals("999", "0", 1).Build(t, db)
type MonthlyMetricBuilder struct {
	model.MonthlyMetric
}

// NewMonthlyMetric creates an all-zero aggregate for property and period.
func NewMonthlyMetric(property model.Property, year, month int) *MonthlyMetricBuilder {
	return &MonthlyMetricBuilder{model.MonthlyMetric{
		PropertyID: property.ID,
		UserID:     property.UserID,
		Year:       year,
		Month:      month,
		UpdatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

// WithTotals sets income, expenses and count; cash flow is derived.
func (b *MonthlyMetricBuilder) WithTotals(income, expenses string, count int) *MonthlyMetricBuilder {
	b.TotalIncome = D(income)
	b.TotalExpenses = D(expenses)
	b.CashFlow = b.TotalIncome.Sub(b.TotalExpenses)
	b.TransactionCount = count
	return b
}

// WithUpdatedAt sets the stored updated_at.
func (b *MonthlyMetricBuilder) WithUpdatedAt(at time.Time) *MonthlyMetricBuilder {
	b.UpdatedAt = at
	return b
}

// Build creates the aggregate row in the database and returns it.
func (b *MonthlyMetricBuilder) Build(t *testing.T, db *database.DB) model.MonthlyMetric {
	t.Helper()

	query := `
		INSERT INTO monthly_metric (property_id, user_id, year, month, total_income, total_expenses,
			cash_flow, transaction_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.PropertyID, b.UserID, b.Year, b.Month, b.TotalIncome, b.TotalExpenses,
		b.CashFlow, b.TransactionCount, b.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test monthly metric: %v", err)
	}

	return b.MonthlyMetric
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
