package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/service"
)

type StatsHandler struct {
	stats service.StatsService
}

func NewStatsHandler(stats service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Approvals(c *gin.Context) {
	stats, err := h.stats.ApprovalStats(c.Request.Context(), serviceID(c))
	if err != nil {
		respondError(c, err, "failed to compute approval stats")
		return
	}

	c.JSON(http.StatusOK, dto.OK(stats))
}
