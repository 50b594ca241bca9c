package handlers

import (
	"log/slog"

	"github.com/01moynul/med-delivery-golang/internal/cart"
	"github.com/01moynul/med-delivery-golang/internal/catalog"
	"github.com/01moynul/med-delivery-golang/internal/order"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Carts   *cart.Coordinator
	Orders  *order.Service
	Catalog *catalog.Service
	Shops   *catalog.ShopService
	Log     *slog.Logger
}
