package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
)

// approvalEventData is the "data" section of approval webhooks.
type approvalEventData struct {
	Approval *model.Approval `json:"approval"`
	Decision *model.Decision `json:"decision,omitempty"`
}

func newApprovalEvent(serviceID int64, eventType model.EventType, approval *model.Approval, decision *model.Decision) (*model.WebhookEvent, error) {
	payload, err := json.Marshal(approvalEventData{Approval: approval, Decision: decision})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	approvalID := approval.ID
	return &model.WebhookEvent{
		ID:         id.New(),
		ServiceID:  serviceID,
		EventType:  eventType,
		ApprovalID: &approvalID,
		Payload:    payload,
	}, nil
}

// publish hands a committed event to the dispatch queue. A failure here is
// not surfaced: the sweeper re-enqueues events that stay undispatched.
func publish(ctx context.Context, producer queue.Producer, log *slog.Logger, event *model.WebhookEvent) {
	if event == nil || producer == nil {
		return
	}
	task := queue.EventDispatch(event.ID, string(event.EventType), logger.TraceIDFromContext(ctx))
	if err := producer.Enqueue(ctx, task); err != nil {
		log.WarnContext(ctx, "failed to enqueue webhook event; sweeper will retry",
			"event_id", event.ID,
			"event_type", event.EventType,
			"error", err)
	}
}
