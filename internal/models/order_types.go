package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the model for the 'orders' table.
// FinalSum and Lines are captured once at creation and never re-derived.
type Order struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user" db:"user_id"`
	CartID    string          `json:"shoppingCart" db:"cart_id"`
	Lines     []OrderLine     `json:"lines" db:"line_items"`
	FinalSum  decimal.Decimal `json:"finalSum" db:"final_sum"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderLine is one priced cart item as it was when the order was placed.
type OrderLine struct {
	CatalogItemID string          `json:"item"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"` // Price at the time of purchase
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}
