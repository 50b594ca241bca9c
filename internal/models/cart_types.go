package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart defines the struct for the 'carts' table.
// TotalSum is denormalized; the cart coordinator is the only writer.
type Cart struct {
	ID        string          `json:"id" db:"id"`
	Items     []CartItem      `json:"items" db:"-"`
	TotalSum  decimal.Decimal `json:"totalSum" db:"total_sum"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table.
// Item is populated from the catalog when the row is read with its price;
// it stays nil if the catalog entry was deleted.
type CartItem struct {
	ID            string       `json:"id" db:"id"`
	CartID        string       `json:"cartId" db:"cart_id"`
	CatalogItemID string       `json:"itemId" db:"catalog_item_id"`
	Item          *CatalogItem `json:"item" db:"-"`
	Quantity      int          `json:"quantity" db:"quantity"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// UnitPrice returns the resolved catalog price, or zero for an orphaned item.
func (ci CartItem) UnitPrice() decimal.Decimal {
	if ci.Item == nil {
		return decimal.Zero
	}
	return ci.Item.Price
}

// LineTotal is price × quantity for a single cart item.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.UnitPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// ComputeTotal re-derives the cart total from its resolved items.
func (c Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
