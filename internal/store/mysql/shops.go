package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
)

// ShopRepo writes a shop header and its medicine list as separate
// statements; callers use it inside WithinTx.
type ShopRepo struct {
	q Querier
}

func (r *ShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	now := time.Now().UTC()
	shop.CreatedAt, shop.UpdatedAt = now, now
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO shops (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		shop.ID, shop.Name, shop.Slug, shop.CreatedAt, shop.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("shops: insert: %w", store.ErrDuplicate)
		}
		return fmt.Errorf("shops: insert: %w", err)
	}
	return r.writeMedicines(ctx, shop.ID, shop.MedicineIDs)
}

func (r *ShopRepo) Update(ctx context.Context, shop *models.Shop) error {
	shop.UpdatedAt = time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		"UPDATE shops SET name = ?, slug = ?, updated_at = ? WHERE id = ?",
		shop.Name, shop.Slug, shop.UpdatedAt, shop.ID)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("shops: update: %w", store.ErrDuplicate)
		}
		return fmt.Errorf("shops: update: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("shops: update %s: %w", shop.ID, err)
	}
	if _, err := r.q.ExecContext(ctx, "DELETE FROM shop_medicines WHERE shop_id = ?", shop.ID); err != nil {
		return fmt.Errorf("shops: clear medicines: %w", err)
	}
	return r.writeMedicines(ctx, shop.ID, shop.MedicineIDs)
}

func (r *ShopRepo) writeMedicines(ctx context.Context, shopID string, ids []string) error {
	for i, id := range ids {
		_, err := r.q.ExecContext(ctx,
			"INSERT INTO shop_medicines (shop_id, medicine_id, sort_order) VALUES (?, ?, ?)",
			shopID, id, i)
		if err != nil {
			return fmt.Errorf("shops: add medicine %s: %w", id, err)
		}
	}
	return nil
}

func (r *ShopRepo) FindByID(ctx context.Context, id string) (models.Shop, error) {
	var s models.Shop
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at, updated_at FROM shops WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return models.Shop{}, fmt.Errorf("shops: find %s: %w", id, notFound(err))
	}

	byShop, err := r.medicineIDs(ctx, "SELECT shop_id, medicine_id FROM shop_medicines WHERE shop_id = ? ORDER BY sort_order", id)
	if err != nil {
		return models.Shop{}, err
	}
	s.MedicineIDs = orEmpty(byShop[id])
	return s, nil
}

func (r *ShopRepo) List(ctx context.Context) ([]models.Shop, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT id, name, slug, created_at, updated_at FROM shops ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("shops: list: %w", err)
	}
	defer rows.Close()

	shops := []models.Shop{}
	for rows.Next() {
		var s models.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("shops: scan: %w", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One query for every shop's medicine list instead of one per shop.
	byShop, err := r.medicineIDs(ctx, "SELECT shop_id, medicine_id FROM shop_medicines ORDER BY shop_id, sort_order")
	if err != nil {
		return nil, err
	}
	for i := range shops {
		shops[i].MedicineIDs = orEmpty(byShop[shops[i].ID])
	}
	return shops, nil
}

func (r *ShopRepo) medicineIDs(ctx context.Context, query string, args ...any) (map[string][]string, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("shops: list medicines: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var shopID, medID string
		if err := rows.Scan(&shopID, &medID); err != nil {
			return nil, fmt.Errorf("shops: scan medicine: %w", err)
		}
		out[shopID] = append(out[shopID], medID)
	}
	return out, rows.Err()
}

func (r *ShopRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM shops WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("shops: delete: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("shops: delete %s: %w", id, err)
	}
	return nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
