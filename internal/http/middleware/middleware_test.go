package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/ratelimit"
	"basegraph.app/approvals/internal/service"
)

type mockAuthService struct {
	authenticateFn func(ctx context.Context, credential string) (*service.AuthContext, error)
}

func (m *mockAuthService) Authenticate(ctx context.Context, credential string) (*service.AuthContext, error) {
	return m.authenticateFn(ctx, credential)
}

type failingLimiter struct{}

func (failingLimiter) Admit(context.Context, string, int, time.Duration) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var _ = Describe("RequireService and RequirePermission", func() {
	var (
		router *gin.Engine
		auth   *mockAuthService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		auth = &mockAuthService{
			authenticateFn: func(_ context.Context, credential string) (*service.AuthContext, error) {
				if credential != "sk_good" {
					return nil, service.ErrUnauthorized
				}
				return &service.AuthContext{
					ServiceID:   3,
					Permissions: []model.Permission{model.PermissionApprovalsRead},
					RateLimit:   10,
				}, nil
			},
		}

		router.Use(middleware.RequireService(auth))
		router.GET("/read", middleware.RequirePermission(model.PermissionApprovalsRead), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"service_id": middleware.GetAuth(c.Request.Context()).ServiceID})
		})
		router.POST("/write", middleware.RequirePermission(model.PermissionApprovalsWrite), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})

	It("admits a valid bearer credential", func() {
		req := httptest.NewRequest(http.MethodGet, "/read", nil)
		req.Header.Set("Authorization", "Bearer sk_good")

		w := serve(router, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"service_id":3}`))
	})

	DescribeTable("rejects bad credentials with 401",
		func(header string) {
			req := httptest.NewRequest(http.MethodGet, "/read", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}

			w := serve(router, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring(`"success":false`))
		},
		Entry("missing header", ""),
		Entry("wrong scheme", "Basic sk_good"),
		Entry("empty token", "Bearer "),
		Entry("unknown secret", "Bearer sk_bad"),
	)

	It("returns 403 when the permission is missing", func() {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.Header.Set("Authorization", "Bearer sk_good")

		w := serve(router, req)

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("approvals:write"))
	})

	It("returns 500 when the identity store fails", func() {
		auth.authenticateFn = func(context.Context, string) (*service.AuthContext, error) {
			return nil, errors.New("db down")
		}
		req := httptest.NewRequest(http.MethodGet, "/read", nil)
		req.Header.Set("Authorization", "Bearer sk_good")

		w := serve(router, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("RateLimit", func() {
	var (
		router *gin.Engine
		now    time.Time
	)

	build := func(limiter ratelimit.Limiter) {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.Use(func(c *gin.Context) {
			ac := &service.AuthContext{ServiceID: 3, RateLimit: 2}
			c.Request = c.Request.WithContext(middleware.WithAuth(c.Request.Context(), ac))
			c.Next()
		})
		router.Use(middleware.RateLimit(limiter, time.Minute))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	BeforeEach(func() {
		now = time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
		build(ratelimit.NewMemory().WithClock(func() time.Time { return now }))
	})

	It("admits up to the quota, then answers 429", func() {
		for i, remaining := range []string{"1", "0"} {
			w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusOK), "request %d", i+1)
			Expect(w.Header().Get(middleware.HeaderRateLimitLimit)).To(Equal("2"))
			Expect(w.Header().Get(middleware.HeaderRateLimitRemaining)).To(Equal(remaining))
		}

		w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(w.Body.String()).To(ContainSubstring("rate limit exceeded"))
		Expect(w.Header().Get(middleware.HeaderRateLimitRemaining)).To(Equal("0"))
		Expect(w.Header().Get(middleware.HeaderRateLimitReset)).To(Equal("1748779260"))
	})

	It("admits again once the window rolls over", func() {
		for range 3 {
			serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
		}
		now = now.Add(time.Minute)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("fails open when the limiter errors", func() {
		build(failingLimiter{})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(middleware.HeaderRateLimitLimit)).To(BeEmpty())
	})
})

var _ = Describe("RequireAdminKey", func() {
	build := func(key string) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/admin", middleware.RequireAdminKey(key), func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	It("admits the configured key", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set(middleware.AdminKeyHeader, "k3y")

		Expect(serve(build("k3y"), req).Code).To(Equal(http.StatusOK))
	})

	It("rejects a wrong key", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set(middleware.AdminKeyHeader, "nope")

		Expect(serve(build("k3y"), req).Code).To(Equal(http.StatusUnauthorized))
	})

	It("is disabled without a configured key", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)

		Expect(serve(build(""), req).Code).To(Equal(http.StatusServiceUnavailable))
	})
})

var _ = Describe("RequestID and Recovery", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())
		router.GET("/echo", func(c *gin.Context) {
			fields := logger.GetLogFields(c.Request.Context())
			c.String(http.StatusOK, *fields.RequestID)
		})
		router.GET("/panic", func(c *gin.Context) { panic("boom") })
	})

	It("keeps a caller supplied request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")

		w := serve(router, req)

		Expect(w.Body.String()).To(Equal("req-123"))
		Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("req-123"))
	})

	It("mints a uuid when none is supplied", func() {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/echo", nil))

		Expect(w.Body.String()).To(MatchRegexp(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`))
	})

	It("turns a panic into a 500 envelope", func() {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"success":false,"error":"internal server error"}`))
	})
})
