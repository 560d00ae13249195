package model

// UncategorizedLabel is the name used for expense rows without a known category.
const UncategorizedLabel = "Uncategorized"

// Category is read-only reference data used to label ledger rows.
type Category struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	IsActive bool            `json:"isActive"`
}
