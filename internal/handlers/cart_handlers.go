package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/01moynul/med-delivery-golang/internal/cart"
	"github.com/01moynul/med-delivery-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//

// CartLineInput is one entry of CreateCartInput.Items.
type CartLineInput struct {
	Item     string `json:"item" binding:"required"`
	Quantity *int   `json:"quantity"`
}

// CreateCartInput defines the JSON for POST /carts. An empty body creates
// an empty cart.
type CreateCartInput struct {
	Items []CartLineInput `json:"items" binding:"dive"`
}

// quantityOrDefault keeps an explicit 0 or negative value so the
// coordinator can reject it.
func quantityOrDefault(q *int) int {
	if q == nil {
		return cart.DefaultQuantity
	}
	return *q
}

func (h *Handlers) CreateCart(c *gin.Context) {
	var input CreateCartInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		badInput(c, err)
		return
	}

	lines := make([]cart.Line, 0, len(input.Items))
	for _, it := range input.Items {
		lines = append(lines, cart.Line{CatalogItemID: it.Item, Quantity: quantityOrDefault(it.Quantity)})
	}

	created, err := h.Carts.CreateCart(c.Request.Context(), lines)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetCart is the handler for GET /carts/:id.
func (h *Handlers) GetCart(c *gin.Context) {
	found, err := h.Carts.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handlers) ListCarts(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	carts, err := h.Carts.ListCarts(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carts)
}

func (h *Handlers) DeleteCart(c *gin.Context) {
	if err := h.Carts.DeleteCart(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// --- Cart Item Handlers ---
//

// AddToCartInput defines the JSON for adding an item to a cart.
type AddToCartInput struct {
	CartID   string `json:"cartId" binding:"required"`
	Item     string `json:"item" binding:"required"`
	Quantity *int   `json:"quantity"`
}

// CreateCartItem adds an item to a cart, bumping the quantity if the cart
// already holds it.
func (h *Handlers) CreateCartItem(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}

	item, _, err := h.Carts.AddItem(c.Request.Context(), input.CartID, input.Item, quantityOrDefault(input.Quantity))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) GetCartItem(c *gin.Context) {
	item, err := h.Carts.GetCartItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) ListCartItems(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	items, err := h.Carts.ListCartItems(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateQuantityInput defines the JSON for PUT/PATCH /cart-items/:id.
type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var input UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}

	item, err := h.Carts.UpdateItemQuantity(c.Request.Context(), c.Param("id"), *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) DeleteCartItem(c *gin.Context) {
	if err := h.Carts.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
