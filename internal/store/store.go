// Package store defines the persistence ports used by the services.
//
// Every method that changes a number (cart total, cart item quantity) takes
// a delta and must apply it atomically in the backing store; callers never
// write a full numeric value computed from an earlier read, except through
// CompareAndSetTotal.
package store

import (
	"context"
	"errors"
	"math"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories when a row does not exist.
// Services translate it into apperrors.NotFound.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a unique key would be violated.
var ErrDuplicate = errors.New("store: duplicate")

// ErrOutOfRange is returned when a write would push a quantity or total
// past what its column can hold.
var ErrOutOfRange = errors.New("store: value out of range")

// MaxQuantity is the largest quantity a cart item row can hold (INT column).
const MaxQuantity = math.MaxInt32

// CatalogRepository holds the priced medicines.
type CatalogRepository interface {
	FindByID(ctx context.Context, id string) (models.CatalogItem, error)
	List(ctx context.Context) ([]models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, id string) error
}

// CartRepository holds cart headers. Items live in CartItemRepository.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	// FindByID returns the cart without items.
	FindByID(ctx context.Context, id string) (models.Cart, error)
	List(ctx context.Context) ([]models.Cart, error)
	// IncrementTotal applies total_sum += delta.
	IncrementTotal(ctx context.Context, id string, delta decimal.Decimal) error
	// CompareAndSetTotal overwrites the total only while it still equals
	// expected. It reports whether the write happened.
	CompareAndSetTotal(ctx context.Context, id string, expected, total decimal.Decimal) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CartItemRepository holds cart items. Reads resolve the catalog entry into
// CartItem.Item (nil when the catalog entry is gone).
type CartItemRepository interface {
	// Create inserts a new item; it fails if (cart, catalog item) already exists.
	Create(ctx context.Context, item *models.CartItem) error
	// AddQuantity inserts the (cart, catalog item) pair or bumps the existing
	// row's quantity by qty. It returns the resulting row and whether it was
	// newly created. A sum above MaxQuantity fails with ErrOutOfRange and
	// leaves the row untouched.
	AddQuantity(ctx context.Context, cartID, catalogItemID string, qty int) (models.CartItem, bool, error)
	FindByID(ctx context.Context, id string) (models.CartItem, error)
	// LockByID reads the item and holds it against concurrent writers until
	// the surrounding transaction ends.
	LockByID(ctx context.Context, id string) (models.CartItem, error)
	ListByCart(ctx context.Context, cartID string) ([]models.CartItem, error)
	List(ctx context.Context) ([]models.CartItem, error)
	// IncrementQuantity applies quantity += delta, failing with
	// ErrOutOfRange when the result would exceed MaxQuantity.
	IncrementQuantity(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
	DeleteByCart(ctx context.Context, cartID string) (int64, error)
}

// OrderRepository holds orders. Orders are never updated after Create.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Delete(ctx context.Context, id string) error
}

// ShopRepository holds shops and their ordered medicine ids.
type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	Update(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id string) (models.Shop, error)
	List(ctx context.Context) ([]models.Shop, error)
	Delete(ctx context.Context, id string) error
}

// Repositories is the set of repositories bound to one connection or
// transaction.
type Repositories struct {
	Catalog   CatalogRepository
	Carts     CartRepository
	CartItems CartItemRepository
	Orders    OrderRepository
	Shops     ShopRepository
}

// Store gives access to repositories outside a transaction and runs fn
// inside one. If fn returns an error nothing it wrote is kept.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
