package dto

import (
	"time"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
)

type ApproverRequest struct {
	UserID     string  `json:"user_id" binding:"required,max=255"`
	Level      int32   `json:"level" binding:"required,min=1"`
	Role       *string `json:"role,omitempty" binding:"omitempty,max=255"`
	Department *string `json:"department,omitempty" binding:"omitempty,max=255"`
}

type CreateApprovalRequest struct {
	ApprovalType model.ApprovalType `json:"approval_type" binding:"required"`
	ExternalID   *string            `json:"external_id,omitempty" binding:"omitempty,max=255"`
	Title        string             `json:"title" binding:"required,max=500"`
	Description  *string            `json:"description,omitempty"`
	Priority     *model.Priority    `json:"priority,omitempty"`
	Urgency      *model.Urgency     `json:"urgency,omitempty"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	Approvers    []ApproverRequest  `json:"approvers" binding:"required,min=1,dive"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
}

func (r CreateApprovalRequest) Params() service.CreateApprovalParams {
	approvers := make([]model.Approver, len(r.Approvers))
	for i, a := range r.Approvers {
		approvers[i] = model.Approver{
			UserID:     a.UserID,
			Level:      a.Level,
			Role:       a.Role,
			Department: a.Department,
		}
	}
	return service.CreateApprovalParams{
		Type:        r.ApprovalType,
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Urgency:     r.Urgency,
		DueDate:     r.DueDate,
		Approvers:   approvers,
		Metadata:    r.Metadata,
	}
}

type UpdateApprovalRequest struct {
	Title       *string         `json:"title,omitempty" binding:"omitempty,max=500"`
	Description *string         `json:"description,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Urgency     *model.Urgency  `json:"urgency,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

func (r UpdateApprovalRequest) Params() service.UpdateApprovalParams {
	return service.UpdateApprovalParams{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Urgency:     r.Urgency,
		DueDate:     r.DueDate,
		Metadata:    r.Metadata,
	}
}

// TransitionRequest is the optional body of approve, reject and cancel.
type TransitionRequest struct {
	UserID  *string `json:"user_id,omitempty"`
	Level   *int32  `json:"level,omitempty"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

func (r TransitionRequest) Params() service.TransitionParams {
	return service.TransitionParams{UserID: r.UserID, Level: r.Level, Comment: r.Comment}
}

type ApprovalListQuery struct {
	ListQuery
	Status     *string `form:"status"`
	Type       *string `form:"approval_type"`
	Priority   *string `form:"priority"`
	Urgency    *string `form:"urgency"`
	ExternalID *string `form:"external_id"`
}

func (q ApprovalListQuery) Filter() store.ApprovalFilter {
	var f store.ApprovalFilter
	if q.Status != nil {
		f.Status = (*model.ApprovalStatus)(q.Status)
	}
	if q.Type != nil {
		f.Type = (*model.ApprovalType)(q.Type)
	}
	if q.Priority != nil {
		f.Priority = (*model.Priority)(q.Priority)
	}
	if q.Urgency != nil {
		f.Urgency = (*model.Urgency)(q.Urgency)
	}
	f.ExternalID = q.ExternalID
	return f
}

type ApprovalDetailResponse struct {
	*model.Approval
	Decisions []model.Decision `json:"decisions"`
}
