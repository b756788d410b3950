package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/metrics"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(raw string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's id and role on the context.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Authorization token required", nil))
			return
		}

		claims, err := a.Authenticate(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(global.HTTPStatus(err), global.ErrorResponseFor(err))
			return
		}
		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired token", nil))
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, global.ErrorResponse("Admin access required", nil))
			return
		}
		c.Next()
	}
}

// RequestMetrics records count, errors and latency per matched route.
func RequestMetrics(m *metrics.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func currentUser(c *gin.Context) bson.ObjectID {
	v, _ := c.Get(ctxUserID)
	id, _ := v.(bson.ObjectID)
	return id
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == models.RoleAdmin
}
