package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is the model for the 'medicines' table.
// It is read-only from the cart's point of view; carts only hold its ID.
type CatalogItem struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	IsFavorite bool            `json:"isFavorite" db:"is_favorite"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Shop is the model for the 'shops' table.
// MedicineIDs keeps the order from the 'shop_medicines' join table.
type Shop struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	MedicineIDs []string  `json:"-" db:"-"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated by the shop service)
	Medicines []CatalogItem `json:"medicines" db:"-"`
}
