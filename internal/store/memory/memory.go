// Package memory is an in-process store.Store used for development
// (STORE_DRIVER=memory) and service tests.
//
// A transaction takes the store lock, works on a private copy of every
// table and swaps it in on success, so a failed or cancelled transaction
// leaves nothing behind.
package memory

import (
	"context"
	"sync"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
)

type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{rows: map[string]T{}}
}

func (t table[T]) clone() table[T] {
	out := table[T]{rows: make(map[string]T, len(t.rows)), order: append([]string(nil), t.order...)}
	for k, v := range t.rows {
		out.rows[k] = v
	}
	return out
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, k := range t.order {
		if k == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns rows in insertion order.
func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.rows[k])
	}
	return out
}

type data struct {
	medicines table[models.CatalogItem]
	carts     table[models.Cart]
	items     table[models.CartItem]
	orders    table[models.Order]
	shops     table[models.Shop]
}

func (d *data) clone() *data {
	return &data{
		medicines: d.medicines.clone(),
		carts:     d.carts.clone(),
		items:     d.items.clone(),
		orders:    d.orders.clone(),
		shops:     d.shops.clone(),
	}
}

// access runs fn against the table set the repository is bound to.
type access func(fn func(d *data) error) error

type Store struct {
	mu   sync.Mutex
	data *data
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: &data{
		medicines: newTable[models.CatalogItem](),
		carts:     newTable[models.Cart](),
		items:     newTable[models.CartItem](),
		orders:    newTable[models.Order](),
		shops:     newTable[models.Shop](),
	}}
}

func reposFor(a access) store.Repositories {
	return store.Repositories{
		Catalog:   &catalogRepo{a: a},
		Carts:     &cartRepo{a: a},
		CartItems: &cartItemRepo{a: a},
		Orders:    &orderRepo{a: a},
		Shops:     &shopRepo{a: a},
	}
}

// Repos returns repositories where every call is its own atomic step.
func (s *Store) Repos() store.Repositories {
	return reposFor(func(fn func(d *data) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.data)
	})
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r store.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	err := fn(ctx, reposFor(func(f func(d *data) error) error { return f(work) }))
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) Close() error { return nil }
