package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
)

type contextKey string

const authContextKey contextKey = "service_auth"

// RequireService authenticates the calling service from its bearer secret.
// Logging and the handlers downstream see the service id on the context.
func RequireService(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		credential, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("missing or malformed service credential"))
			return
		}

		auth, err := authService.Authenticate(ctx, credential)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("invalid service credential"))
				return
			}
			c.Error(err) //nolint:errcheck
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail("failed to authenticate service"))
			return
		}

		ctx = context.WithValue(ctx, authContextKey, auth)
		ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &auth.ServiceID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequirePermission must run after RequireService.
func RequirePermission(permission model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := GetAuth(c.Request.Context())
		if auth == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("not authenticated"))
			return
		}
		if !auth.Authorize(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail("missing permission "+string(permission)))
			return
		}
		c.Next()
	}
}

func GetAuth(ctx context.Context) *service.AuthContext {
	auth, _ := ctx.Value(authContextKey).(*service.AuthContext)
	return auth
}

// WithAuth returns ctx carrying auth. Handler tests use it to skip the
// credential lookup.
func WithAuth(ctx context.Context, auth *service.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
