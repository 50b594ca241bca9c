// Package cart keeps a cart's stored total equal to the sum of its items'
// price × quantity. It is the only code that writes carts.total_sum.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/apperrors"
	"github.com/01moynul/med-delivery-golang/internal/auth"
	"github.com/01moynul/med-delivery-golang/internal/events"
	"github.com/01moynul/med-delivery-golang/internal/metrics"
	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultQuantity is used when an add request does not name a quantity.
const DefaultQuantity = 1

// MaxQuantity caps a single cart item's quantity, after merging and adding.
const MaxQuantity = store.MaxQuantity

func checkQuantity(q int) error {
	if q <= 0 {
		return apperrors.InvalidArgument("quantity must be greater than 0")
	}
	if q > MaxQuantity {
		return apperrors.InvalidArgument("quantity must not exceed %d", MaxQuantity)
	}
	return nil
}

// outOfRange turns store.ErrOutOfRange into InvalidArgument.
func outOfRange(err error) error {
	return apperrors.Classify(err, store.ErrOutOfRange, apperrors.ErrInvalidArgument,
		"quantity or cart total out of range")
}

// Line is one requested (catalog item, quantity) pair.
type Line struct {
	CatalogItemID string
	Quantity      int
}

type Coordinator struct {
	store   store.Store
	events  events.Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewCoordinator(st store.Store, pub events.Publisher, m *metrics.Metrics, log *slog.Logger) *Coordinator {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{store: st, events: pub, metrics: m, log: log.With("component", "cart")}
}

// mergeLines validates quantities and folds repeated catalog ids into one
// line, keeping the order in which ids first appear.
func mergeLines(lines []Line) ([]Line, error) {
	merged := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.CatalogItemID == "" {
			return nil, apperrors.InvalidArgument("item is required")
		}
		if err := checkQuantity(l.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[l.CatalogItemID]; ok {
			if err := checkQuantity(merged[i].Quantity + l.Quantity); err != nil {
				return nil, err
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.CatalogItemID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// CreateCart stores a new cart with one item per distinct catalog id.
// Every price is resolved before the first write.
func (c *Coordinator) CreateCart(ctx context.Context, lines []Line) (models.Cart, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return models.Cart{}, err
	}

	cart := models.Cart{ID: uuid.NewString(), Items: []models.CartItem{}}
	err = c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		// 1. --- Resolve prices ---
		priced := make([]models.CatalogItem, len(merged))
		total := decimal.Zero
		for i, l := range merged {
			item, err := findCatalogItem(ctx, r, l.CatalogItemID)
			if err != nil {
				return err
			}
			priced[i] = item
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		// 2. --- Write the cart and its items ---
		cart.TotalSum = total
		if err := r.Carts.Create(ctx, &cart); err != nil {
			return outOfRange(err)
		}
		for i, l := range merged {
			ci := models.CartItem{
				ID:            uuid.NewString(),
				CartID:        cart.ID,
				CatalogItemID: l.CatalogItemID,
				Quantity:      l.Quantity,
			}
			if err := r.CartItems.Create(ctx, &ci); err != nil {
				return err
			}
			ci.Item = &priced[i]
			cart.Items = append(cart.Items, ci)
		}
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}

	c.committed(ctx, "create_cart", events.TopicCartCreated, events.CartEvent{
		CartID:     cart.ID,
		TotalDelta: cart.TotalSum,
	})
	return cart, nil
}

// AddItem adds quantity of a catalog item to a cart. Adding an item the cart
// already holds bumps that item's quantity; created reports which happened.
func (c *Coordinator) AddItem(ctx context.Context, cartID, catalogItemID string, quantity int) (item models.CartItem, created bool, err error) {
	if catalogItemID == "" {
		return models.CartItem{}, false, apperrors.InvalidArgument("item is required")
	}
	if err := checkQuantity(quantity); err != nil {
		return models.CartItem{}, false, err
	}

	var delta decimal.Decimal
	err = c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		catalogItem, err := findCatalogItem(ctx, r, catalogItemID)
		if err != nil {
			return err
		}
		if _, err := r.Carts.FindByID(ctx, cartID); err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", cartID)
		}

		item, created, err = r.CartItems.AddQuantity(ctx, cartID, catalogItemID, quantity)
		if err != nil {
			return outOfRange(apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", cartID))
		}
		delta = catalogItem.Price.Mul(decimal.NewFromInt(int64(quantity)))
		return outOfRange(r.Carts.IncrementTotal(ctx, cartID, delta))
	})
	if err != nil {
		return models.CartItem{}, false, err
	}

	c.committed(ctx, "add_item", events.TopicCartItemAdded, events.CartEvent{
		CartID:        cartID,
		CartItemID:    item.ID,
		CatalogItemID: catalogItemID,
		Quantity:      item.Quantity,
		TotalDelta:    delta,
	})
	return item, created, nil
}

// UpdateItemQuantity sets an item's quantity and moves the cart total by
// the difference.
func (c *Coordinator) UpdateItemQuantity(ctx context.Context, cartItemID string, quantity int) (models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return models.CartItem{}, err
	}

	var (
		item  models.CartItem
		delta decimal.Decimal
	)
	err := c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		var err error
		item, err = r.CartItems.LockByID(ctx, cartItemID)
		if err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart item %s not found", cartItemID)
		}
		if item.Item == nil {
			return apperrors.NotFound("catalog item %s not found", item.CatalogItemID)
		}

		diff := quantity - item.Quantity
		if diff == 0 {
			return nil
		}
		if err := r.CartItems.IncrementQuantity(ctx, item.ID, diff); err != nil {
			return outOfRange(err)
		}
		delta = item.Item.Price.Mul(decimal.NewFromInt(int64(diff)))
		if err := r.Carts.IncrementTotal(ctx, item.CartID, delta); err != nil {
			return outOfRange(err)
		}
		item.Quantity = quantity
		item.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return models.CartItem{}, err
	}

	c.committed(ctx, "update_item", events.TopicCartItemUpdated, events.CartEvent{
		CartID:        item.CartID,
		CartItemID:    item.ID,
		CatalogItemID: item.CatalogItemID,
		Quantity:      item.Quantity,
		TotalDelta:    delta,
	})
	return item, nil
}

// RemoveItem takes the item's line total off the cart and then deletes it,
// both in one transaction.
func (c *Coordinator) RemoveItem(ctx context.Context, cartItemID string) error {
	var (
		item  models.CartItem
		delta decimal.Decimal
	)
	err := c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		var err error
		item, err = r.CartItems.LockByID(ctx, cartItemID)
		if err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart item %s not found", cartItemID)
		}

		// An orphaned item (medicine deleted) contributes nothing.
		delta = item.LineTotal().Neg()
		if err := r.Carts.IncrementTotal(ctx, item.CartID, delta); err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", item.CartID)
		}
		return r.CartItems.Delete(ctx, item.ID)
	})
	if err != nil {
		return err
	}

	c.committed(ctx, "remove_item", events.TopicCartItemRemoved, events.CartEvent{
		CartID:        item.CartID,
		CartItemID:    item.ID,
		CatalogItemID: item.CatalogItemID,
		TotalDelta:    delta,
	})
	return nil
}

// DeleteCart removes the cart and all of its items.
func (c *Coordinator) DeleteCart(ctx context.Context, cartID string) error {
	var total decimal.Decimal
	err := c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		cart, err := r.Carts.FindByID(ctx, cartID)
		if err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", cartID)
		}
		total = cart.TotalSum
		if _, err := r.CartItems.DeleteByCart(ctx, cartID); err != nil {
			return err
		}
		return apperrors.NotFoundIf(r.Carts.Delete(ctx, cartID), store.ErrNotFound, "cart %s not found", cartID)
	})
	if err != nil {
		return err
	}

	c.committed(ctx, "delete_cart", events.TopicCartDeleted, events.CartEvent{
		CartID:     cartID,
		TotalDelta: total.Neg(),
	})
	return nil
}

// GetCart returns the cart with its items resolved against the catalog.
// If the stored total has drifted from the items it is rewritten, but only
// while it still holds the value that was read.
func (c *Coordinator) GetCart(ctx context.Context, cartID string) (models.Cart, error) {
	var cart models.Cart
	err := c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		var err error
		cart, err = loadCart(ctx, r, cartID)
		if err != nil {
			return err
		}

		stored, computed := cart.TotalSum, cart.ComputeTotal()
		if stored.Equal(computed) {
			return nil
		}

		c.log.WarnContext(ctx, "cart total drift",
			"cart_id", cartID,
			"stored", stored.String(),
			"computed", computed.String(),
		)
		if c.metrics != nil {
			c.metrics.TotalDrift.Inc()
		}
		if _, err := r.Carts.CompareAndSetTotal(ctx, cartID, stored, computed); err != nil {
			return fmt.Errorf("heal cart total: %w", err)
		}
		cart.TotalSum = computed
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// Recompute returns the stored and the recomputed total without writing.
func (c *Coordinator) Recompute(ctx context.Context, cartID string) (stored, computed decimal.Decimal, err error) {
	err = c.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		cart, err := loadCart(ctx, r, cartID)
		if err != nil {
			return err
		}
		stored, computed = cart.TotalSum, cart.ComputeTotal()
		return nil
	})
	return stored, computed, err
}

// ListCarts returns every cart with items and recomputed totals. Admin only.
func (c *Coordinator) ListCarts(ctx context.Context, who auth.Identity) ([]models.Cart, error) {
	if !who.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}

	repos := c.store.Repos()
	carts, err := repos.Carts.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := repos.CartItems.List(ctx)
	if err != nil {
		return nil, err
	}

	byCart := make(map[string][]models.CartItem, len(carts))
	for _, it := range items {
		byCart[it.CartID] = append(byCart[it.CartID], it)
	}
	for i := range carts {
		carts[i].Items = byCart[carts[i].ID]
		if carts[i].Items == nil {
			carts[i].Items = []models.CartItem{}
		}
		carts[i].TotalSum = carts[i].ComputeTotal()
	}
	return carts, nil
}

func (c *Coordinator) GetCartItem(ctx context.Context, cartItemID string) (models.CartItem, error) {
	item, err := c.store.Repos().CartItems.FindByID(ctx, cartItemID)
	if err != nil {
		return models.CartItem{}, apperrors.NotFoundIf(err, store.ErrNotFound, "cart item %s not found", cartItemID)
	}
	return item, nil
}

// ListCartItems returns every cart item across carts. Admin only.
func (c *Coordinator) ListCartItems(ctx context.Context, who auth.Identity) ([]models.CartItem, error) {
	if !who.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}
	return c.store.Repos().CartItems.List(ctx)
}

// committed records a successful mutation and publishes its event.
// Publishing is best effort: the write is already durable.
func (c *Coordinator) committed(ctx context.Context, op, topic string, ev events.CartEvent) {
	if c.metrics != nil {
		c.metrics.CartMutations.WithLabelValues(op).Inc()
	}
	ev.Timestamp = time.Now().UTC()
	if err := c.events.Publish(ctx, topic, ev.CartID, ev); err != nil {
		c.log.ErrorContext(ctx, "publish cart event", "topic", topic, "cart_id", ev.CartID, "error", err)
	}
}

func loadCart(ctx context.Context, r store.Repositories, cartID string) (models.Cart, error) {
	cart, err := r.Carts.FindByID(ctx, cartID)
	if err != nil {
		return models.Cart{}, apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", cartID)
	}
	cart.Items, err = r.CartItems.ListByCart(ctx, cartID)
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func findCatalogItem(ctx context.Context, r store.Repositories, id string) (models.CatalogItem, error) {
	item, err := r.Catalog.FindByID(ctx, id)
	if err != nil {
		return models.CatalogItem{}, apperrors.NotFoundIf(err, store.ErrNotFound, "catalog item %s not found", id)
	}
	return item, nil
}
