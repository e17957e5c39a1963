package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
)

type ApprovalHandler struct {
	approvals service.ApprovalService
}

func NewApprovalHandler(approvals service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

func (h *ApprovalHandler) Create(c *gin.Context) {
	var req dto.CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	approval, err := h.approvals.Create(c.Request.Context(), serviceID(c), req.Params())
	if err != nil {
		respondError(c, err, "failed to create approval")
		return
	}

	c.JSON(http.StatusCreated, dto.OK(approval))
}

func (h *ApprovalHandler) List(c *gin.Context) {
	var q dto.ApprovalListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page := service.NewPage(q.Limit, q.Offset)
	approvals, total, err := h.approvals.List(c.Request.Context(), serviceID(c), q.Filter(), page)
	if err != nil {
		respondError(c, err, "failed to list approvals")
		return
	}

	paged(c, approvals, total, page)
}

// Get returns the approval together with its per-level decisions.
func (h *ApprovalHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	approval, err := h.approvals.Get(ctx, serviceID(c), id)
	if err != nil {
		respondError(c, err, "failed to get approval")
		return
	}
	decisions, err := h.approvals.Decisions(ctx, serviceID(c), id)
	if err != nil {
		respondError(c, err, "failed to get approval")
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ApprovalDetailResponse{Approval: approval, Decisions: decisions}))
}

func (h *ApprovalHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	approval, err := h.approvals.Update(c.Request.Context(), serviceID(c), id, req.Params())
	if err != nil {
		respondError(c, err, "failed to update approval")
		return
	}

	c.JSON(http.StatusOK, dto.OK(approval))
}

func (h *ApprovalHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.approvals.Delete(c.Request.Context(), serviceID(c), id); err != nil {
		respondError(c, err, "failed to delete approval")
		return
	}

	c.JSON(http.StatusOK, dto.OK(gin.H{"deleted": true}))
}

func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.transition(c, h.approvals.Approve, "failed to approve")
}

func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.transition(c, h.approvals.Reject, "failed to reject")
}

func (h *ApprovalHandler) Cancel(c *gin.Context) {
	h.transition(c, h.approvals.Cancel, "failed to cancel")
}

type transitionFunc func(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error)

func (h *ApprovalHandler) transition(c *gin.Context, fn transitionFunc, fallback string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// The body is optional for all three transitions.
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	approval, err := fn(c.Request.Context(), serviceID(c), id, req.Params())
	if err != nil {
		respondError(c, err, fallback)
		return
	}

	c.JSON(http.StatusOK, dto.OK(approval))
}
