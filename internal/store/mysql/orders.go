package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
)

type OrderRepo struct {
	q Querier
}

const orderColumns = "id, user_id, cart_id, line_items, final_sum, created_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var (
		o     models.Order
		lines []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.CartID, &lines, &o.FinalSum, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return models.Order{}, err
	}
	o.Lines = []models.OrderLine{}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &o.Lines); err != nil {
			return models.Order{}, fmt.Errorf("decode line items: %w", err)
		}
	}
	return o, nil
}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.Lines == nil {
		order.Lines = []models.OrderLine{}
	}
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("orders: encode line items: %w", err)
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	_, err = r.q.ExecContext(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		order.ID, order.UserID, order.CartID, lines, order.FinalSum, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if err != nil {
		return models.Order{}, fmt.Errorf("orders: find %s: %w", id, notFound(err))
	}
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context) ([]models.Order, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("orders: scan: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("orders: delete: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("orders: delete %s: %w", id, err)
	}
	return nil
}
