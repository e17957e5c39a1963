package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/handler"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/ratelimit"
	"basegraph.app/approvals/internal/service"
)

type RouterConfig struct {
	AdminAPIKey     string
	Limiter         ratelimit.Limiter
	RateLimitWindow time.Duration
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminHandler := handler.NewAdminHandler(services.ServiceIdentities())
	AdminRouter(router.Group("/admin"), adminHandler, cfg.AdminAPIKey)

	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewMemory()
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireService(services.Auth()))
	v1.Use(middleware.RateLimit(cfg.Limiter, cfg.RateLimitWindow))
	{
		approvalHandler := handler.NewApprovalHandler(services.Approvals())
		ApprovalRouter(v1.Group("/approvals"), approvalHandler)

		webhookHandler := handler.NewWebhookHandler(services.Webhooks(), services.Stats())
		WebhookRouter(v1.Group("/webhooks"), webhookHandler)

		eventHandler := handler.NewEventHandler(services.Events())
		EventRouter(v1.Group("/events"), eventHandler)

		statsHandler := handler.NewStatsHandler(services.Stats())
		StatsRouter(v1.Group("/stats"), statsHandler)
	}
}
