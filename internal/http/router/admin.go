package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/handler"
	"basegraph.app/approvals/internal/http/middleware"
)

// AdminRouter mounts the operator endpoints behind the admin key.
func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler, adminAPIKey string) {
	admin := rg.Group("")
	admin.Use(middleware.RequireAdminKey(adminAPIKey))
	{
		admin.POST("/services", h.CreateService)
		admin.POST("/services/:id/deactivate", h.DeactivateService)
	}
}
