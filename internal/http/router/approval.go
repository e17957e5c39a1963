package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/handler"
	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/model"
)

func ApprovalRouter(rg *gin.RouterGroup, h *handler.ApprovalHandler) {
	read := middleware.RequirePermission(model.PermissionApprovalsRead)
	write := middleware.RequirePermission(model.PermissionApprovalsWrite)

	rg.POST("", write, h.Create)
	rg.GET("", read, h.List)
	rg.GET("/:id", read, h.Get)
	rg.PATCH("/:id", write, h.Update)
	rg.DELETE("/:id", write, h.Delete)
	rg.POST("/:id/approve", write, h.Approve)
	rg.POST("/:id/reject", write, h.Reject)
	rg.POST("/:id/cancel", write, h.Cancel)
}
