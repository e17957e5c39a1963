package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/service"
)

type EventHandler struct {
	events service.EventService
}

func NewEventHandler(events service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.events.Create(c.Request.Context(), serviceID(c), req.Params())
	if err != nil {
		respondError(c, err, "failed to create event")
		return
	}

	c.JSON(http.StatusCreated, dto.OK(event))
}

func (h *EventHandler) List(c *gin.Context) {
	var q dto.EventListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page := service.NewPage(q.Limit, q.Offset)
	events, total, err := h.events.List(c.Request.Context(), serviceID(c), q.Filter(), page)
	if err != nil {
		respondError(c, err, "failed to list events")
		return
	}

	paged(c, events, total, page)
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.Get(c.Request.Context(), serviceID(c), id)
	if err != nil {
		respondError(c, err, "failed to get event")
		return
	}

	c.JSON(http.StatusOK, dto.OK(event))
}
