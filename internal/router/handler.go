package router

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/storage"
	"julianmorley.ca/con-plar/storefront/pkg/wishlist"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ImageStore interface {
	Upload(ctx context.Context, contentType string, r io.Reader) (*storage.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// Handler holds the services the HTTP routes call into.
type Handler struct {
	db       Pinger
	auth     *auth.Service
	products *catalog.Service
	carts    *cart.Service
	orders   *orders.Service
	wishlist *wishlist.Service
	images   ImageStore
}

type Deps struct {
	DB       Pinger
	Auth     *auth.Service
	Products *catalog.Service
	Carts    *cart.Service
	Orders   *orders.Service
	Wishlist *wishlist.Service
	Images   ImageStore
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		db:       d.DB,
		auth:     d.Auth,
		products: d.Products,
		carts:    d.Carts,
		orders:   d.Orders,
		wishlist: d.Wishlist,
		images:   d.Images,
	}
}

// respondError writes the envelope for err with the status its kind maps to.
func respondError(c *gin.Context, err error) {
	status := global.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, global.ErrorResponseFor(err))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "invalid_request"},
	}))
}

// objectIDParam parses the named path parameter as an ObjectID.
func objectIDParam(c *gin.Context, name string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid ID format", []global.ValidationError{
			{Field: name, Message: "Must be a valid ObjectID", Code: global.KindInvalidArgument.String()},
		}))
		return bson.ObjectID{}, false
	}
	return id, true
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		log.Printf("Health check failed: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("OK", map[string]string{"status": "OK", "database": "Connected"}))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse("User registered successfully", user))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Login successful", gin.H{"token": token, "user": user}))
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Password reset link sent to your email", nil))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Password reset successfully", nil))
}

func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Users fetched", users))
}

func (h *Handler) GetUserByID(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("User fetched", user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.auth.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("User deleted", nil))
}
