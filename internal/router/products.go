package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *Handler) GetAllProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(products)))
	c.JSON(http.StatusOK, global.SuccessResponse("Products fetched", products))
}

func (h *Handler) GetFlashSales(c *gin.Context) {
	products, err := h.products.FlashSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Flash sale products fetched", products))
}

func (h *Handler) GetProductByID(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product fetched", product))
}

// GetProductBySlug reads the slug from the :id segment.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product fetched", product))
}

func (h *Handler) GetProductAvailability(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	avail, err := h.products.Availability(c.Request.Context(), id, c.Query("color"), c.Query("size"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Availability fetched", avail))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse("Product created", product))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product updated", product))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product deleted", gin.H{"_id": product.ID, "sku": product.SKU}))
}
