package httpx

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/foodtruck-orders/internal/order"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderVendorID  = "X-Vendor-ID"

	ctxRequestID = "rid"
	ctxIdentity  = "identity"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.InfoContext(c.Request.Context(), "http request",
			"rid", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start),
		)
	}
}

// Identity reads the vendor id forwarded by the auth gateway. Requests
// without a valid id are rejected on the routes that use it.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(HeaderVendorID), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing vendor identity"})
			return
		}
		c.Set(ctxIdentity, order.Identity{VendorID: id})
		c.Next()
	}
}

// IdentityFrom returns the identity set by Identity.
func IdentityFrom(c *gin.Context) order.Identity {
	id, _ := c.Get(ctxIdentity)
	ident, _ := id.(order.Identity)
	return ident
}

func RequestIDFrom(c *gin.Context) string { return c.GetString(ctxRequestID) }
