package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItemRepo struct {
	q Querier
}

// The LEFT JOIN keeps items whose medicine has been deleted; those come back
// with a nil Item.
const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.catalog_item_id, ci.quantity, ci.created_at, ci.updated_at,
		m.id, m.name, m.price, m.is_favorite, m.created_at, m.updated_at
	FROM cart_items ci
	LEFT JOIN medicines m ON m.id = ci.catalog_item_id`

func scanCartItem(row interface{ Scan(...any) error }) (models.CartItem, error) {
	var (
		ci        models.CartItem
		mID       sql.NullString
		mName     sql.NullString
		mPrice    decimal.NullDecimal
		mFavorite sql.NullBool
		mCreated  sql.NullTime
		mUpdated  sql.NullTime
	)
	err := row.Scan(
		&ci.ID, &ci.CartID, &ci.CatalogItemID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt,
		&mID, &mName, &mPrice, &mFavorite, &mCreated, &mUpdated,
	)
	if err != nil {
		return models.CartItem{}, err
	}
	if mID.Valid {
		ci.Item = &models.CatalogItem{
			ID:         mID.String,
			Name:       mName.String,
			Price:      mPrice.Decimal,
			IsFavorite: mFavorite.Bool,
			CreatedAt:  mCreated.Time,
			UpdatedAt:  mUpdated.Time,
		}
	}
	return ci, nil
}

func (r *CartItemRepo) Create(ctx context.Context, item *models.CartItem) error {
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO cart_items (id, cart_id, catalog_item_id, quantity, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.CartID, item.CatalogItemID, item.Quantity, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("cart_items: insert: %w", store.ErrDuplicate)
		}
		return fmt.Errorf("cart_items: insert: %w", classify(err))
	}
	return nil
}

// AddQuantity relies on the (cart_id, catalog_item_id) unique key. MySQL
// reports 1 affected row for an insert and 2 for an update. A missing cart
// fails the foreign key; a sum past the INT column fails the range check.
func (r *CartItemRepo) AddQuantity(ctx context.Context, cartID, catalogItemID string, qty int) (models.CartItem, bool, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, catalog_item_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = VALUES(updated_at)`,
		uuid.NewString(), cartID, catalogItemID, qty, now, now)
	if err != nil {
		return models.CartItem{}, false, fmt.Errorf("cart_items: upsert: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.CartItem{}, false, err
	}

	row := r.q.QueryRowContext(ctx, cartItemSelect+" WHERE ci.cart_id = ? AND ci.catalog_item_id = ?", cartID, catalogItemID)
	item, err := scanCartItem(row)
	if err != nil {
		return models.CartItem{}, false, fmt.Errorf("cart_items: reread: %w", notFound(err))
	}
	return item, n == 1, nil
}

func (r *CartItemRepo) FindByID(ctx context.Context, id string) (models.CartItem, error) {
	item, err := scanCartItem(r.q.QueryRowContext(ctx, cartItemSelect+" WHERE ci.id = ?", id))
	if err != nil {
		return models.CartItem{}, fmt.Errorf("cart_items: find %s: %w", id, notFound(err))
	}
	return item, nil
}

// LockByID must run inside a transaction for the row lock to mean anything.
func (r *CartItemRepo) LockByID(ctx context.Context, id string) (models.CartItem, error) {
	item, err := scanCartItem(r.q.QueryRowContext(ctx, cartItemSelect+" WHERE ci.id = ? FOR UPDATE", id))
	if err != nil {
		return models.CartItem{}, fmt.Errorf("cart_items: lock %s: %w", id, notFound(err))
	}
	return item, nil
}

func (r *CartItemRepo) ListByCart(ctx context.Context, cartID string) ([]models.CartItem, error) {
	return r.list(ctx, cartItemSelect+" WHERE ci.cart_id = ? ORDER BY ci.created_at, ci.id", cartID)
}

func (r *CartItemRepo) List(ctx context.Context) ([]models.CartItem, error) {
	return r.list(ctx, cartItemSelect+" ORDER BY ci.created_at, ci.id")
}

func (r *CartItemRepo) list(ctx context.Context, query string, args ...any) ([]models.CartItem, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cart_items: list: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("cart_items: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartItemRepo) IncrementQuantity(ctx context.Context, id string, delta int) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE cart_items SET quantity = quantity + ?, updated_at = ? WHERE id = ?",
		delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("cart_items: increment quantity: %w", classify(err))
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("cart_items: increment quantity %s: %w", id, err)
	}
	return nil
}

func (r *CartItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("cart_items: delete: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("cart_items: delete %s: %w", id, err)
	}
	return nil
}

func (r *CartItemRepo) DeleteByCart(ctx context.Context, cartID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = ?", cartID)
	if err != nil {
		return 0, fmt.Errorf("cart_items: delete by cart: %w", err)
	}
	return res.RowsAffected()
}
