package handlers

import (
	"net/http"

	"github.com/01moynul/med-delivery-golang/internal/catalog"
	"github.com/01moynul/med-delivery-golang/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- Medicines ---

// MedicineInput defines the JSON for creating or replacing a medicine.
type MedicineInput struct {
	Name       string           `json:"name" binding:"required"`
	Price      *decimal.Decimal `json:"price" binding:"required"`
	IsFavorite bool             `json:"isFavorite"`
}

func (in MedicineInput) toService() catalog.MedicineInput {
	return catalog.MedicineInput{Name: in.Name, Price: *in.Price, IsFavorite: in.IsFavorite}
}

func (h *Handlers) ListMedicines(c *gin.Context) {
	meds, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meds)
}

func (h *Handlers) GetMedicine(c *gin.Context) {
	m, err := h.Catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handlers) CreateMedicine(c *gin.Context) {
	var input MedicineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}
	who, _ := middleware.IdentityFrom(c)

	m, err := h.Catalog.Create(c.Request.Context(), who, input.toService())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handlers) UpdateMedicine(c *gin.Context) {
	var input MedicineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}
	who, _ := middleware.IdentityFrom(c)

	m, err := h.Catalog.Update(c.Request.Context(), who, c.Param("id"), input.toService())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handlers) DeleteMedicine(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	if err := h.Catalog.Delete(c.Request.Context(), who, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Shops ---

// ShopInput defines the JSON for creating or replacing a shop.
type ShopInput struct {
	Name      string   `json:"name" binding:"required"`
	Medicines []string `json:"medicines"`
}

func (h *Handlers) ListShops(c *gin.Context) {
	shops, err := h.Shops.ListShops(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

// GetShop is the handler for GET /shops/:id?sortByPrice=true.
func (h *Handlers) GetShop(c *gin.Context) {
	sortByPrice := c.Query("sortByPrice") == "true"
	shop, err := h.Shops.GetShop(c.Request.Context(), c.Param("id"), sortByPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *Handlers) CreateShop(c *gin.Context) {
	var input ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}
	who, _ := middleware.IdentityFrom(c)

	shop, err := h.Shops.CreateShop(c.Request.Context(), who, catalog.ShopInput{Name: input.Name, MedicineIDs: input.Medicines})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (h *Handlers) UpdateShop(c *gin.Context) {
	var input ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c, err)
		return
	}
	who, _ := middleware.IdentityFrom(c)

	shop, err := h.Shops.UpdateShop(c.Request.Context(), who, c.Param("id"), catalog.ShopInput{Name: input.Name, MedicineIDs: input.Medicines})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *Handlers) DeleteShop(c *gin.Context) {
	who, _ := middleware.IdentityFrom(c)
	if err := h.Shops.DeleteShop(c.Request.Context(), who, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
