package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/metrics"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// NewEngine builds the gin engine with CORS and request metrics installed.
// m may be nil.
func NewEngine(production bool, origins []string, m *metrics.AppMetrics) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if m != nil {
		r.Use(RequestMetrics(m))
	}
	return r
}

func InitializeRoutes(r *gin.Engine, h *Handler) {
	requireAuth := RequireAuth(h.auth)
	requireAdmin := RequireAdmin()

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/forgot-password", h.ForgotPassword)
		api.POST("/reset-password/:resetToken", h.ResetPassword)

		users := api.Group("/users", requireAuth, requireAdmin)
		{
			users.GET("", h.GetAllUsers)
			users.GET("/:id", h.GetUserByID)
			users.DELETE("/:id", h.DeleteUser)
		}

		products := api.Group("/products")
		{
			products.GET("", h.GetAllProducts)
			products.GET("/flash-sales", h.GetFlashSales)
			products.GET("/:id", h.GetProductByID)
			products.GET("/:id/byslug", h.GetProductBySlug)
			products.GET("/:id/availability", h.GetProductAvailability)
			products.POST("", requireAuth, requireAdmin, h.CreateProduct)
			products.PUT("/:id", requireAuth, requireAdmin, h.UpdateProduct)
			products.DELETE("/:id", requireAuth, requireAdmin, h.DeleteProduct)
		}

		cart := api.Group("/cart", requireAuth)
		{
			cart.GET("", h.GetCart)
			cart.POST("", h.AddToCart)
			cart.PUT("", h.UpdateCartItem)
			cart.DELETE("/clear", h.ClearCart)
			cart.DELETE("/:productId", h.RemoveFromCart)
		}

		orders := api.Group("/orders", requireAuth)
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.GetMyOrders)
			orders.GET("/summary", requireAdmin, h.GetOrderSummary)
			orders.GET("/:orderId", h.GetOrderByID)
			orders.PUT("/:orderId/status", requireAdmin, h.UpdateOrderStatus)
		}

		wishlist := api.Group("/wishlist", requireAuth)
		{
			wishlist.GET("", h.GetWishlist)
			wishlist.POST("", h.AddToWishlist)
			wishlist.DELETE("/clear", h.ClearWishlist)
			wishlist.DELETE("/:productId", h.RemoveFromWishlist)
			wishlist.GET("/check/:productId", h.CheckWishlist)
		}

		upload := api.Group("/upload", requireAuth, requireAdmin)
		{
			upload.POST("/image", h.UploadImage)
			upload.POST("/delete-image", h.DeleteImage)
		}
	}
}
