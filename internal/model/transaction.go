package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row as money coming in or going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// ValidTransactionTypes contains the allowed transaction type values.
var ValidTransactionTypes = map[TransactionType]bool{
	TransactionTypeIncome:  true,
	TransactionTypeExpense: true,
}

// Transaction represents a single ledger row for a property.
// Rows are never hard-deleted by the mutation paths; DeletedAt marks a tombstone
// that excludes the row from every aggregation.
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	PropertyID      string          `json:"propertyId"`
	CategoryID      *string         `json:"categoryId,omitempty"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transactionDate"`
	IsRecurring     bool            `json:"isRecurring"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the transaction carries a soft-delete tombstone.
func (t Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TransactionFilter narrows ledger queries. Zero values mean "no restriction",
// except UserID which is always required.
type TransactionFilter struct {
	UserID         string
	PropertyIDs    []string
	Type           TransactionType
	DateFrom       *time.Time
	DateTo         *time.Time
	IncludeDeleted bool
}

// TransactionMutation is the result of a ledger write: the row as stored and the
// aggregate periods that were reconciled because of it.
type TransactionMutation struct {
	Transaction       Transaction `json:"transaction"`
	ReconciledPeriods []Period    `json:"reconciledPeriods"`
}

// DateSpan is the earliest and latest transaction date of a ledger selection.
// Both are zero when the selection is empty.
type DateSpan struct {
	Earliest time.Time
	Latest   time.Time
}

// IsEmpty reports whether the span contains no transactions.
func (d DateSpan) IsEmpty() bool {
	return d.Earliest.IsZero() || d.Latest.IsZero()
}
