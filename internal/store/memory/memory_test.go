package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	r := s.Repos()
	require.NoError(t, r.Catalog.Create(ctx, &models.CatalogItem{ID: "m-1", Name: "Lipitor", Price: decimal.RequireFromString("9.00")}))
	require.NoError(t, r.Carts.Create(ctx, &models.Cart{ID: "c-1", TotalSum: decimal.Zero}))
}

func TestAddQuantityUpserts(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	items := s.Repos().CartItems

	first, created, err := items.AddQuantity(ctx, "c-1", "m-1", 1)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first.Item)
	assert.Equal(t, "Lipitor", first.Item.Name)

	second, created, err := items.AddQuantity(ctx, "c-1", "m-1", 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	all, err := items.ListByCart(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = items.AddQuantity(ctx, "nope", "m-1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if _, _, err := r.CartItems.AddQuantity(ctx, "c-1", "m-1", 1); err != nil {
			return err
		}
		if err := r.Carts.IncrementTotal(ctx, "c-1", decimal.NewFromInt(9)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cart, err := s.Repos().Carts.FindByID(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, cart.TotalSum.IsZero())
	items, err := s.Repos().CartItems.ListByCart(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWithinTxCommits(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		return r.Carts.IncrementTotal(ctx, "c-1", decimal.RequireFromString("18.00"))
	})
	require.NoError(t, err)

	cart, err := s.Repos().Carts.FindByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "18", cart.TotalSum.String())
}

func TestWithinTxCancelledContext(t *testing.T) {
	s := New()
	seed(t, s)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		cancel()
		return r.Carts.IncrementTotal(ctx, "c-1", decimal.NewFromInt(9))
	})
	require.ErrorIs(t, err, context.Canceled)

	cart, err := s.Repos().Carts.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, cart.TotalSum.IsZero())
}

func TestCompareAndSetTotal(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	carts := s.Repos().Carts

	ok, err := carts.CompareAndSetTotal(ctx, "c-1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = carts.CompareAndSetTotal(ctx, "c-1", decimal.Zero, decimal.NewFromInt(9))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteCartCascadesItems(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	r := s.Repos()

	_, _, err := r.CartItems.AddQuantity(ctx, "c-1", "m-1", 1)
	require.NoError(t, err)
	require.NoError(t, r.Carts.Delete(ctx, "c-1"))

	all, err := r.CartItems.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, r.Carts.Delete(ctx, "c-1"), store.ErrNotFound)
}

func TestDeletedMedicineLeavesOrphan(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	r := s.Repos()

	it, _, err := r.CartItems.AddQuantity(ctx, "c-1", "m-1", 2)
	require.NoError(t, err)
	require.NoError(t, r.Catalog.Delete(ctx, "m-1"))

	got, err := r.CartItems.FindByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Item)
}

func TestOrderLinesAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := s.Repos()

	o := &models.Order{ID: "o-1", UserID: "u-1", CartID: "c-1", Lines: []models.OrderLine{{CatalogItemID: "m-1", Quantity: 1}}}
	require.NoError(t, r.Orders.Create(ctx, o))
	o.Lines[0].Quantity = 99

	got, err := r.Orders.FindByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)
}

func TestShopSlugUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := s.Repos()

	require.NoError(t, r.Shops.Create(ctx, &models.Shop{ID: "s-1", Name: "A", Slug: "a"}))
	err := r.Shops.Create(ctx, &models.Shop{ID: "s-2", Name: "A", Slug: "a"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestQuantityCannotPassColumnLimit(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	items := s.Repos().CartItems

	full, _, err := items.AddQuantity(ctx, "c-1", "m-1", store.MaxQuantity)
	require.NoError(t, err)

	_, _, err = items.AddQuantity(ctx, "c-1", "m-1", 1)
	assert.ErrorIs(t, err, store.ErrOutOfRange)
	assert.ErrorIs(t, items.IncrementQuantity(ctx, full.ID, 1), store.ErrOutOfRange)

	got, err := items.FindByID(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, store.MaxQuantity, got.Quantity)

	require.NoError(t, items.IncrementQuantity(ctx, full.ID, -1))
	got, err = items.FindByID(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, store.MaxQuantity-1, got.Quantity)
}
