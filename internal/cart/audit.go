package cart

import (
	"context"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/models"
)

// Drift is a cart whose stored total disagrees with its items.
type Drift struct {
	CartID   string
	Stored   string
	Computed string
}

// Audit compares every cart's stored total with its items. It only
// reports; GetCart is what rewrites a drifted total.
func (c *Coordinator) Audit(ctx context.Context) ([]Drift, error) {
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

	var drifted []Drift
	for _, cart := range carts {
		cart.Items = byCart[cart.ID]
		computed := cart.ComputeTotal()
		if !computed.Equal(cart.TotalSum) {
			drifted = append(drifted, Drift{CartID: cart.ID, Stored: cart.TotalSum.String(), Computed: computed.String()})
		}
	}
	return drifted, nil
}

// RunAudit runs Audit every interval until ctx is cancelled.
func (c *Coordinator) RunAudit(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	c.log.Info("cart audit started", "interval", every)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			drifted, err := c.Audit(ctx)
			if err != nil {
				c.log.ErrorContext(ctx, "cart audit failed", "error", err)
				continue
			}
			for _, d := range drifted {
				c.log.WarnContext(ctx, "cart total drift", "cart_id", d.CartID, "stored", d.Stored, "computed", d.Computed, "source", "audit")
			}
		}
	}
}
