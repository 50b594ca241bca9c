package routes

import (
	"log/slog"
	"net/http"

	"github.com/01moynul/med-delivery-golang/internal/handlers"
	"github.com/01moynul/med-delivery-golang/internal/metrics"
	"github.com/01moynul/med-delivery-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options carries what the router needs besides the handlers.
type Options struct {
	Tokens     middleware.TokenValidator
	Metrics    *metrics.Metrics
	Log        *slog.Logger
	CORSOrigin string
	// StaticDir, when set, is served at / for the storefront build.
	StaticDir string
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// --- Global middleware ---
	// CORS goes first so preflight requests never reach auth.
	router.Use(
		middleware.CORS(opts.CORSOrigin),
		middleware.RequestLogger(opts.Log),
		middleware.Recovery(opts.Log),
	)
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	requireAuth := middleware.AuthMiddleware(opts.Tokens)
	optionalAuth := middleware.OptionalAuth(opts.Tokens)
	requireAdmin := middleware.RequireAdmin()
	withAdmin := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{requireAuth, requireAdmin, h}
	}

	v1 := router.Group("/api/v1")
	{
		// --- Carts ---
		v1.POST("/carts", h.CreateCart)
		v1.GET("/carts", withAdmin(h.ListCarts)...)
		v1.GET("/carts/:id", h.GetCart)
		v1.DELETE("/carts/:id", h.DeleteCart)

		// --- Cart items ---
		v1.POST("/cart-items", h.CreateCartItem)
		v1.GET("/cart-items", withAdmin(h.ListCartItems)...)
		v1.GET("/cart-items/:id", h.GetCartItem)
		v1.PUT("/cart-items/:id", h.UpdateCartItem)
		v1.PATCH("/cart-items/:id", h.UpdateCartItem)
		v1.DELETE("/cart-items/:id", h.DeleteCartItem)

		// --- Orders ---
		v1.POST("/orders", optionalAuth, h.CreateOrder)
		v1.GET("/orders", withAdmin(h.ListOrders)...)
		v1.GET("/orders/:id", h.GetOrder)
		v1.DELETE("/orders/:id", h.DeleteOrder)

		// --- Medicines ---
		v1.GET("/medicines", h.ListMedicines)
		v1.GET("/medicines/:id", h.GetMedicine)

		// --- Shops ---
		v1.GET("/shops", h.ListShops)
		v1.GET("/shops/:id", h.GetShop)

		// --- Admin catalog management ---
		admin := v1.Group("/")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.POST("/medicines", h.CreateMedicine)
			admin.PUT("/medicines/:id", h.UpdateMedicine)
			admin.DELETE("/medicines/:id", h.DeleteMedicine)

			admin.POST("/shops", h.CreateShop)
			admin.PUT("/shops/:id", h.UpdateShop)
			admin.DELETE("/shops/:id", h.DeleteShop)
		}
	}

	if opts.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return router
}
