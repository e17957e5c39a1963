package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/handler"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/model"
)

func EventRouter(rg *gin.RouterGroup, h *handler.EventHandler) {
	rg.POST("", middleware.RequirePermission(model.PermissionEventsWrite), h.Create)
	rg.GET("", middleware.RequirePermission(model.PermissionEventsRead), h.List)
	rg.GET("/:id", middleware.RequirePermission(model.PermissionEventsRead), h.Get)
}

func StatsRouter(rg *gin.RouterGroup, h *handler.StatsHandler) {
	rg.GET("/approvals", middleware.RequirePermission(model.PermissionStatsRead), h.Approvals)
}
