package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func missing(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

func outOfRange(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrOutOfRange)
}

// --- medicines ---

type catalogRepo struct{ a access }

func (r *catalogRepo) FindByID(_ context.Context, id string) (m models.CatalogItem, err error) {
	err = r.a(func(d *data) error {
		var ok bool
		if m, ok = d.medicines.get(id); !ok {
			return missing("medicine", id)
		}
		return nil
	})
	return m, err
}

func (r *catalogRepo) List(_ context.Context) (out []models.CatalogItem, err error) {
	err = r.a(func(d *data) error {
		out = d.medicines.all()
		return nil
	})
	slices.SortStableFunc(out, func(a, b models.CatalogItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

func (r *catalogRepo) Create(_ context.Context, item *models.CatalogItem) error {
	return r.a(func(d *data) error {
		if _, ok := d.medicines.get(item.ID); ok {
			return fmt.Errorf("medicine %s: %w", item.ID, store.ErrDuplicate)
		}
		now := time.Now().UTC()
		item.CreatedAt, item.UpdatedAt = now, now
		d.medicines.put(item.ID, *item)
		return nil
	})
}

func (r *catalogRepo) Update(_ context.Context, item *models.CatalogItem) error {
	return r.a(func(d *data) error {
		prev, ok := d.medicines.get(item.ID)
		if !ok {
			return missing("medicine", item.ID)
		}
		item.CreatedAt = prev.CreatedAt
		item.UpdatedAt = time.Now().UTC()
		d.medicines.put(item.ID, *item)
		return nil
	})
}

func (r *catalogRepo) Delete(_ context.Context, id string) error {
	return r.a(func(d *data) error {
		if !d.medicines.del(id) {
			return missing("medicine", id)
		}
		return nil
	})
}

// --- carts ---

type cartRepo struct{ a access }

func (r *cartRepo) Create(_ context.Context, cart *models.Cart) error {
	return r.a(func(d *data) error {
		if _, ok := d.carts.get(cart.ID); ok {
			return fmt.Errorf("cart %s: %w", cart.ID, store.ErrDuplicate)
		}
		now := time.Now().UTC()
		cart.CreatedAt, cart.UpdatedAt = now, now
		row := *cart
		row.Items = nil
		d.carts.put(cart.ID, row)
		return nil
	})
}

func (r *cartRepo) FindByID(_ context.Context, id string) (c models.Cart, err error) {
	err = r.a(func(d *data) error {
		var ok bool
		if c, ok = d.carts.get(id); !ok {
			return missing("cart", id)
		}
		return nil
	})
	return c, err
}

func (r *cartRepo) List(_ context.Context) (out []models.Cart, err error) {
	err = r.a(func(d *data) error {
		out = d.carts.all()
		return nil
	})
	return out, err
}

func (r *cartRepo) IncrementTotal(_ context.Context, id string, delta decimal.Decimal) error {
	return r.a(func(d *data) error {
		c, ok := d.carts.get(id)
		if !ok {
			return missing("cart", id)
		}
		c.TotalSum = c.TotalSum.Add(delta)
		c.UpdatedAt = time.Now().UTC()
		d.carts.put(id, c)
		return nil
	})
}

func (r *cartRepo) CompareAndSetTotal(_ context.Context, id string, expected, total decimal.Decimal) (swapped bool, err error) {
	err = r.a(func(d *data) error {
		c, ok := d.carts.get(id)
		if !ok || !c.TotalSum.Equal(expected) {
			return nil
		}
		c.TotalSum = total
		c.UpdatedAt = time.Now().UTC()
		d.carts.put(id, c)
		swapped = true
		return nil
	})
	return swapped, err
}

// Delete also drops the cart's items, like the foreign key cascade in MySQL.
func (r *cartRepo) Delete(_ context.Context, id string) error {
	return r.a(func(d *data) error {
		if !d.carts.del(id) {
			return missing("cart", id)
		}
		for _, it := range d.items.all() {
			if it.CartID == id {
				d.items.del(it.ID)
			}
		}
		return nil
	})
}

// --- cart items ---

type cartItemRepo struct{ a access }

// resolve attaches the current medicine, or leaves Item nil if it is gone.
func resolve(d *data, it models.CartItem) models.CartItem {
	if m, ok := d.medicines.get(it.CatalogItemID); ok {
		it.Item = &m
	} else {
		it.Item = nil
	}
	return it
}

func findPair(d *data, cartID, catalogItemID string) (models.CartItem, bool) {
	for _, it := range d.items.all() {
		if it.CartID == cartID && it.CatalogItemID == catalogItemID {
			return it, true
		}
	}
	return models.CartItem{}, false
}

func (r *cartItemRepo) Create(_ context.Context, item *models.CartItem) error {
	return r.a(func(d *data) error {
		if _, ok := d.carts.get(item.CartID); !ok {
			return missing("cart", item.CartID)
		}
		if _, ok := findPair(d, item.CartID, item.CatalogItemID); ok {
			return fmt.Errorf("cart item %s/%s: %w", item.CartID, item.CatalogItemID, store.ErrDuplicate)
		}
		now := time.Now().UTC()
		item.CreatedAt, item.UpdatedAt = now, now
		row := *item
		row.Item = nil
		d.items.put(item.ID, row)
		return nil
	})
}

func (r *cartItemRepo) AddQuantity(_ context.Context, cartID, catalogItemID string, qty int) (out models.CartItem, created bool, err error) {
	err = r.a(func(d *data) error {
		if _, ok := d.carts.get(cartID); !ok {
			return missing("cart", cartID)
		}
		now := time.Now().UTC()
		it, ok := findPair(d, cartID, catalogItemID)
		if ok {
			if it.Quantity > store.MaxQuantity-qty {
				return outOfRange("cart item", it.ID)
			}
			it.Quantity += qty
			it.UpdatedAt = now
		} else {
			if qty > store.MaxQuantity {
				return outOfRange("cart item", cartID+"/"+catalogItemID)
			}
			it = models.CartItem{
				ID:            uuid.NewString(),
				CartID:        cartID,
				CatalogItemID: catalogItemID,
				Quantity:      qty,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			created = true
		}
		d.items.put(it.ID, it)
		out = resolve(d, it)
		return nil
	})
	return out, created, err
}

func (r *cartItemRepo) FindByID(_ context.Context, id string) (out models.CartItem, err error) {
	err = r.a(func(d *data) error {
		it, ok := d.items.get(id)
		if !ok {
			return missing("cart item", id)
		}
		out = resolve(d, it)
		return nil
	})
	return out, err
}

// LockByID is FindByID here: a transaction already holds the store lock.
func (r *cartItemRepo) LockByID(ctx context.Context, id string) (models.CartItem, error) {
	return r.FindByID(ctx, id)
}

func (r *cartItemRepo) ListByCart(_ context.Context, cartID string) (out []models.CartItem, err error) {
	err = r.a(func(d *data) error {
		out = []models.CartItem{}
		for _, it := range d.items.all() {
			if it.CartID == cartID {
				out = append(out, resolve(d, it))
			}
		}
		return nil
	})
	return out, err
}

func (r *cartItemRepo) List(_ context.Context) (out []models.CartItem, err error) {
	err = r.a(func(d *data) error {
		out = []models.CartItem{}
		for _, it := range d.items.all() {
			out = append(out, resolve(d, it))
		}
		return nil
	})
	return out, err
}

func (r *cartItemRepo) IncrementQuantity(_ context.Context, id string, delta int) error {
	return r.a(func(d *data) error {
		it, ok := d.items.get(id)
		if !ok {
			return missing("cart item", id)
		}
		if delta > 0 && it.Quantity > store.MaxQuantity-delta {
			return outOfRange("cart item", id)
		}
		it.Quantity += delta
		it.UpdatedAt = time.Now().UTC()
		d.items.put(id, it)
		return nil
	})
}

func (r *cartItemRepo) Delete(_ context.Context, id string) error {
	return r.a(func(d *data) error {
		if !d.items.del(id) {
			return missing("cart item", id)
		}
		return nil
	})
}

func (r *cartItemRepo) DeleteByCart(_ context.Context, cartID string) (n int64, err error) {
	err = r.a(func(d *data) error {
		for _, it := range d.items.all() {
			if it.CartID == cartID {
				d.items.del(it.ID)
				n++
			}
		}
		return nil
	})
	return n, err
}

// --- orders ---

type orderRepo struct{ a access }

func copyOrder(o models.Order) models.Order {
	o.Lines = append([]models.OrderLine{}, o.Lines...)
	return o
}

func (r *orderRepo) Create(_ context.Context, order *models.Order) error {
	return r.a(func(d *data) error {
		if _, ok := d.orders.get(order.ID); ok {
			return fmt.Errorf("order %s: %w", order.ID, store.ErrDuplicate)
		}
		now := time.Now().UTC()
		order.CreatedAt, order.UpdatedAt = now, now
		d.orders.put(order.ID, copyOrder(*order))
		return nil
	})
}

func (r *orderRepo) FindByID(_ context.Context, id string) (out models.Order, err error) {
	err = r.a(func(d *data) error {
		o, ok := d.orders.get(id)
		if !ok {
			return missing("order", id)
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

func (r *orderRepo) List(_ context.Context) (out []models.Order, err error) {
	err = r.a(func(d *data) error {
		for _, o := range d.orders.all() {
			out = append(out, copyOrder(o))
		}
		return nil
	})
	if out == nil {
		out = []models.Order{}
	}
	return out, err
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	return r.a(func(d *data) error {
		if !d.orders.del(id) {
			return missing("order", id)
		}
		return nil
	})
}

// --- shops ---

type shopRepo struct{ a access }

func copyShop(s models.Shop) models.Shop {
	s.MedicineIDs = append([]string{}, s.MedicineIDs...)
	s.Medicines = nil
	return s
}

func slugTaken(d *data, slug, exceptID string) bool {
	for _, s := range d.shops.all() {
		if s.Slug == slug && s.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *shopRepo) Create(_ context.Context, shop *models.Shop) error {
	return r.a(func(d *data) error {
		if _, ok := d.shops.get(shop.ID); ok || slugTaken(d, shop.Slug, "") {
			return fmt.Errorf("shop %s: %w", shop.Slug, store.ErrDuplicate)
		}
		now := time.Now().UTC()
		shop.CreatedAt, shop.UpdatedAt = now, now
		d.shops.put(shop.ID, copyShop(*shop))
		return nil
	})
}

func (r *shopRepo) Update(_ context.Context, shop *models.Shop) error {
	return r.a(func(d *data) error {
		prev, ok := d.shops.get(shop.ID)
		if !ok {
			return missing("shop", shop.ID)
		}
		if slugTaken(d, shop.Slug, shop.ID) {
			return fmt.Errorf("shop %s: %w", shop.Slug, store.ErrDuplicate)
		}
		shop.CreatedAt = prev.CreatedAt
		shop.UpdatedAt = time.Now().UTC()
		d.shops.put(shop.ID, copyShop(*shop))
		return nil
	})
}

func (r *shopRepo) FindByID(_ context.Context, id string) (out models.Shop, err error) {
	err = r.a(func(d *data) error {
		s, ok := d.shops.get(id)
		if !ok {
			return missing("shop", id)
		}
		out = copyShop(s)
		return nil
	})
	return out, err
}

func (r *shopRepo) List(_ context.Context) (out []models.Shop, err error) {
	err = r.a(func(d *data) error {
		out = []models.Shop{}
		for _, s := range d.shops.all() {
			out = append(out, copyShop(s))
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b models.Shop) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

func (r *shopRepo) Delete(_ context.Context, id string) error {
	return r.a(func(d *data) error {
		if !d.shops.del(id) {
			return missing("shop", id)
		}
		return nil
	})
}
