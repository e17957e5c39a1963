package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/ratelimit"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimit admits each authenticated service against its own per-window
// quota. It must run after RequireService.
func RateLimit(limiter ratelimit.Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		auth := GetAuth(ctx)
		if auth == nil {
			c.Next()
			return
		}

		key := "service:" + strconv.FormatInt(auth.ServiceID, 10)
		decision, err := limiter.Admit(ctx, key, int(auth.RateLimit), window)
		if err != nil {
			// Fail open.
			slog.WarnContext(ctx, "rate limiter unavailable, admitting request", "error", err)
			c.Next()
			return
		}

		c.Header(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		c.Header(HeaderRateLimitReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			slog.InfoContext(ctx, "rate limit exceeded", "count", decision.Count, "limit", decision.Limit)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Fail("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
