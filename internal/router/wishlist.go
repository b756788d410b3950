package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req models.WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	productID, err := bson.ObjectIDFromHex(req.Product)
	if err != nil {
		respondError(c, global.InvalidArgument("product", "Invalid product ID"))
		return
	}

	if err := h.wishlist.Add(c.Request.Context(), currentUser(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product added to wishlist", nil))
}

func (h *Handler) GetWishlist(c *gin.Context) {
	entries, err := h.wishlist.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Wishlist fetched", entries))
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(c.Request.Context(), currentUser(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Product removed from wishlist", nil))
}

func (h *Handler) ClearWishlist(c *gin.Context) {
	n, err := h.wishlist.Clear(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Wishlist cleared", gin.H{"deletedCount": n}))
}

func (h *Handler) CheckWishlist(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	in, err := h.wishlist.Check(c.Request.Context(), currentUser(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Wishlist checked", gin.H{"inWishlist": in}))
}
