package dto

import (
	"encoding/json"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
)

type CreateEventRequest struct {
	EventType  model.EventType `json:"event_type" binding:"required"`
	ApprovalID *int64          `json:"approval_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func (r CreateEventRequest) Params() service.CreateEventParams {
	return service.CreateEventParams{
		EventType:  r.EventType,
		ApprovalID: r.ApprovalID,
		Payload:    r.Payload,
	}
}

type EventListQuery struct {
	ListQuery
	EventType  *string `form:"event_type"`
	ApprovalID *int64  `form:"approval_id"`
}

func (q EventListQuery) Filter() store.EventFilter {
	return store.EventFilter{
		EventType:  (*model.EventType)(q.EventType),
		ApprovalID: q.ApprovalID,
	}
}
