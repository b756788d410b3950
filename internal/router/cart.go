package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func cartResponse(msg string, view *models.CartView) global.APIResponse {
	return global.SuccessResponse(msg, view).WithTotal(view.TotalValue)
}

// bindCartItem parses a cart item body. A nil defaultQty makes quantity mandatory.
func bindCartItem(c *gin.Context, defaultQty *int) (cart.ItemInput, bool) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return cart.ItemInput{}, false
	}
	if req.Quantity == nil {
		req.Quantity = defaultQty
	}
	in, err := cart.ParseItemInput(req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return cart.ItemInput{}, false
	}
	return in, true
}

func (h *Handler) AddToCart(c *gin.Context) {
	qty := cart.DefaultAddQuantity
	in, ok := bindCartItem(c, &qty)
	if !ok {
		return
	}

	view, err := h.carts.Add(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Item added to cart", view))
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.carts.Fetch(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Cart fetched", view))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	in, ok := bindCartItem(c, nil)
	if !ok {
		return
	}

	view, err := h.carts.Update(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Cart updated", view))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}
	var variationID *bson.ObjectID
	if raw := c.Query("variationId"); raw != "" {
		vid, err := bson.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, global.InvalidArgument("variationId", "Invalid variation ID"))
			return
		}
		variationID = &vid
	}

	view, err := h.carts.Remove(c.Request.Context(), currentUser(c), productID, variationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Item removed from cart", view))
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Cart cleared", nil))
}
