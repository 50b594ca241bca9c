package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
)

type CatalogRepo struct {
	q Querier
}

const medicineColumns = "id, name, price, is_favorite, created_at, updated_at"

func scanMedicine(row interface{ Scan(...any) error }) (models.CatalogItem, error) {
	var m models.CatalogItem
	err := row.Scan(&m.ID, &m.Name, &m.Price, &m.IsFavorite, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *CatalogRepo) FindByID(ctx context.Context, id string) (models.CatalogItem, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+medicineColumns+" FROM medicines WHERE id = ?", id)
	m, err := scanMedicine(row)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("medicines: find %s: %w", id, notFound(err))
	}
	return m, nil
}

func (r *CatalogRepo) List(ctx context.Context) ([]models.CatalogItem, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+medicineColumns+" FROM medicines ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("medicines: list: %w", err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("medicines: scan: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *CatalogRepo) Create(ctx context.Context, item *models.CatalogItem) error {
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO medicines (id, name, price, is_favorite, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.Name, item.Price, item.IsFavorite, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("medicines: insert: %w", err)
	}
	return nil
}

func (r *CatalogRepo) Update(ctx context.Context, item *models.CatalogItem) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		"UPDATE medicines SET name = ?, price = ?, is_favorite = ?, updated_at = ? WHERE id = ?",
		item.Name, item.Price, item.IsFavorite, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("medicines: update: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("medicines: update %s: %w", item.ID, err)
	}
	return nil
}

func (r *CatalogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM medicines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("medicines: delete: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("medicines: delete %s: %w", id, err)
	}
	return nil
}
