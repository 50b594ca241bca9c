// Package order places orders against carts. An order's lines and final sum
// are captured when it is created and never recomputed.
package order

import (
	"context"
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

type Service struct {
	store   store.Store
	events  events.Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(st store.Store, pub events.Publisher, m *metrics.Metrics, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, events: pub, metrics: m, log: log.With("component", "order")}
}

// CreateOrder snapshots the cart at current catalog prices. The final sum
// is derived from the items, not read from the cart's stored total.
func (s *Service) CreateOrder(ctx context.Context, purchaserID, cartID string) (models.Order, error) {
	if purchaserID == "" {
		return models.Order{}, apperrors.InvalidArgument("user is required")
	}
	if cartID == "" {
		return models.Order{}, apperrors.InvalidArgument("shoppingCart is required")
	}

	order := models.Order{
		ID:     uuid.NewString(),
		UserID: purchaserID,
		CartID: cartID,
		Lines:  []models.OrderLine{},
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		// 1. --- Load the cart with current prices ---
		if _, err := r.Carts.FindByID(ctx, cartID); err != nil {
			return apperrors.NotFoundIf(err, store.ErrNotFound, "cart %s not found", cartID)
		}
		items, err := r.CartItems.ListByCart(ctx, cartID)
		if err != nil {
			return err
		}

		// 2. --- Price every line ---
		sum := decimal.Zero
		for _, it := range items {
			if it.Item == nil {
				return apperrors.NotFound("catalog item %s not found", it.CatalogItemID)
			}
			line := models.OrderLine{
				CatalogItemID: it.CatalogItemID,
				Name:          it.Item.Name,
				UnitPrice:     it.Item.Price,
				Quantity:      it.Quantity,
				LineTotal:     it.LineTotal(),
			}
			sum = sum.Add(line.LineTotal)
			order.Lines = append(order.Lines, line)
		}
		order.FinalSum = sum

		// 3. --- Persist ---
		return r.Orders.Create(ctx, &order)
	})
	if err != nil {
		return models.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	ev := events.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		CartID:    order.CartID,
		FinalSum:  order.FinalSum,
		Timestamp: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, events.TopicOrderCreated, order.ID, ev); err != nil {
		s.log.ErrorContext(ctx, "publish order event", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := s.store.Repos().Orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, apperrors.NotFoundIf(err, store.ErrNotFound, "order %s not found", id)
	}
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return apperrors.NotFoundIf(s.store.Repos().Orders.Delete(ctx, id), store.ErrNotFound, "order %s not found", id)
}

// ListOrders is admin only.
func (s *Service) ListOrders(ctx context.Context, who auth.Identity) ([]models.Order, error) {
	if !who.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}
	return s.store.Repos().Orders.List(ctx)
}
