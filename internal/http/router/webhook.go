package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/handler"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/model"
)

func WebhookRouter(rg *gin.RouterGroup, h *handler.WebhookHandler) {
	read := middleware.RequirePermission(model.PermissionWebhooksRead)
	write := middleware.RequirePermission(model.PermissionWebhooksWrite)

	rg.GET("/schema", read, h.Schema)

	rg.POST("", write, h.Register)
	rg.GET("", read, h.List)
	rg.GET("/:id", read, h.Get)
	rg.PATCH("/:id", write, h.Update)
	rg.DELETE("/:id", write, h.Delete)
	rg.GET("/:id/deliveries", read, h.Deliveries)
	rg.GET("/:id/stats", read, h.Stats)
	rg.POST("/:id/test", write, h.Test)
}
