package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/webhook"
)

type WebhookHandler struct {
	webhooks service.WebhookService
	stats    service.StatsService
}

func NewWebhookHandler(webhooks service.WebhookService, stats service.StatsService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, stats: stats}
}

func (h *WebhookHandler) Register(c *gin.Context) {
	var req dto.RegisterWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := h.webhooks.Register(c.Request.Context(), serviceID(c), req.Params())
	if err != nil {
		respondError(c, err, "failed to register webhook")
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.RegisterWebhookResponse{WebhookRegistration: reg, Secret: reg.Secret}))
}

func (h *WebhookHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page := service.NewPage(q.Limit, q.Offset)
	regs, total, err := h.webhooks.List(c.Request.Context(), serviceID(c), page)
	if err != nil {
		respondError(c, err, "failed to list webhooks")
		return
	}

	paged(c, regs, total, page)
}

func (h *WebhookHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reg, err := h.webhooks.Get(c.Request.Context(), serviceID(c), id)
	if err != nil {
		respondError(c, err, "failed to get webhook")
		return
	}

	c.JSON(http.StatusOK, dto.OK(reg))
}

func (h *WebhookHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := h.webhooks.Update(c.Request.Context(), serviceID(c), id, req.Params())
	if err != nil {
		respondError(c, err, "failed to update webhook")
		return
	}

	c.JSON(http.StatusOK, dto.OK(reg))
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.webhooks.Delete(c.Request.Context(), serviceID(c), id); err != nil {
		respondError(c, err, "failed to delete webhook")
		return
	}

	c.JSON(http.StatusOK, dto.OK(gin.H{"deleted": true}))
}

func (h *WebhookHandler) Deliveries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page := service.NewPage(q.Limit, q.Offset)
	deliveries, total, err := h.webhooks.Deliveries(c.Request.Context(), serviceID(c), id, page)
	if err != nil {
		respondError(c, err, "failed to list deliveries")
		return
	}

	paged(c, deliveries, total, page)
}

func (h *WebhookHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.stats.DeliveryStats(c.Request.Context(), serviceID(c), id, q.Days)
	if err != nil {
		respondError(c, err, "failed to compute delivery stats")
		return
	}

	c.JSON(http.StatusOK, dto.OK(stats))
}

// Test sends a synthetic event and reports the outcome. A failed delivery
// is still a 200: the attempt itself is the result.
func (h *WebhookHandler) Test(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	delivery, err := h.webhooks.Test(c.Request.Context(), serviceID(c), id)
	if err != nil {
		respondError(c, err, "failed to send test webhook")
		return
	}

	c.JSON(http.StatusOK, dto.OK(delivery))
}

// Schema publishes the JSON Schema of the outbound webhook body.
func (h *WebhookHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OK(webhook.PayloadSchema()))
}
