package handlers

import (
	"net/http"

	"github.com/01moynul/med-delivery-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CreateOrderInput defines the JSON for POST /orders.
type CreateOrderInput struct {
	User         string `json:"user"`
	ShoppingCart string `json:"shoppingCart" binding:"required"`
}

// CreateOrder places an order for a cart. A verified bearer token names the
// purchaser; otherwise the "user" field does.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}

	purchaser := input.User
	if who, ok := middleware.IdentityFrom(c); ok {
		purchaser = who.UserID
	}

	created, err := h.Orders.CreateOrder(c.Request.Context(), purchaser, input.ShoppingCart)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) GetOrder(c *gin.Context) {
	found, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handlers) ListOrders(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	orders, err := h.Orders.ListOrders(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) DeleteOrder(c *gin.Context) {
	if err := h.Orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
