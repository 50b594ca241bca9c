package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/shopspring/decimal"
)

type CartRepo struct {
	q Querier
}

func (r *CartRepo) Create(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	cart.CreatedAt, cart.UpdatedAt = now, now
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO carts (id, total_sum, created_at, updated_at) VALUES (?, ?, ?, ?)",
		cart.ID, cart.TotalSum, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("carts: insert: %w", classify(err))
	}
	return nil
}

func (r *CartRepo) FindByID(ctx context.Context, id string) (models.Cart, error) {
	var c models.Cart
	err := r.q.QueryRowContext(ctx,
		"SELECT id, total_sum, created_at, updated_at FROM carts WHERE id = ?", id).
		Scan(&c.ID, &c.TotalSum, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Cart{}, fmt.Errorf("carts: find %s: %w", id, notFound(err))
	}
	return c, nil
}

func (r *CartRepo) List(ctx context.Context) ([]models.Cart, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, total_sum, created_at, updated_at FROM carts ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("carts: list: %w", err)
	}
	defer rows.Close()

	carts := []models.Cart{}
	for rows.Next() {
		var c models.Cart
		if err := rows.Scan(&c.ID, &c.TotalSum, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("carts: scan: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

// IncrementTotal never reads the total back; the database applies the delta.
func (r *CartRepo) IncrementTotal(ctx context.Context, id string, delta decimal.Decimal) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE carts SET total_sum = total_sum + CAST(? AS DECIMAL(20,4)), updated_at = ? WHERE id = ?",
		delta.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("carts: increment total: %w", classify(err))
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("carts: increment total %s: %w", id, err)
	}
	return nil
}

func (r *CartRepo) CompareAndSetTotal(ctx context.Context, id string, expected, total decimal.Decimal) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		"UPDATE carts SET total_sum = CAST(? AS DECIMAL(20,4)), updated_at = ? WHERE id = ? AND total_sum = CAST(? AS DECIMAL(20,4))",
		total.String(), time.Now().UTC(), id, expected.String())
	if err != nil {
		return false, fmt.Errorf("carts: compare and set total: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CartRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM carts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("carts: delete: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("carts: delete %s: %w", id, err)
	}
	return nil
}
