package request

import "github.com/shopspring/decimal"

type CreateTransactionRequest struct {
	PropertyID      string          `json:"propertyId"`
	CategoryID      *string         `json:"categoryId,omitempty"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transactionDate"`
	IsRecurring     bool            `json:"isRecurring"`
	Description     string          `json:"description"`
}

type UpdateTransactionRequest struct {
	PropertyID      *string          `json:"propertyId,omitempty"`
	CategoryID      *string          `json:"categoryId,omitempty"`
	Type            *string          `json:"type,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	TransactionDate *string          `json:"transactionDate,omitempty"`
	IsRecurring     *bool            `json:"isRecurring,omitempty"`
	Description     *string          `json:"description,omitempty"`
}
