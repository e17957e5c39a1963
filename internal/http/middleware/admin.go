package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards operator endpoints. With no key configured the
// admin surface is switched off entirely.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.Fail("admin API not configured"))
			return
		}

		provided := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("invalid or missing admin key"))
			return
		}
		c.Next()
	}
}
