package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property represents a rental property owned by a single user.
type Property struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	Name          string           `json:"name"`
	Address       string           `json:"address,omitempty"`
	PurchasePrice decimal.Decimal  `json:"purchasePrice"`
	MarketValue   *decimal.Decimal `json:"marketValue,omitempty"`
	MonthlyRent   decimal.Decimal  `json:"monthlyRent"`
	CreatedAt     time.Time        `json:"createdAt"`
	DeletedAt     *time.Time       `json:"deletedAt,omitempty"`
}

// EffectiveMarketValue returns the market value, falling back to the purchase price
// when no valuation has been recorded.
func (p Property) EffectiveMarketValue() decimal.Decimal {
	if p.MarketValue != nil {
		return *p.MarketValue
	}
	return p.PurchasePrice
}

// PropertyFilter for querying properties
type PropertyFilter struct {
	UserID         string
	PropertyID     string
	IncludeDeleted bool
}
