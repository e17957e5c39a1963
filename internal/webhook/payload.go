package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"basegraph.app/approvals/internal/model"
)

// Payload is the JSON body POSTed to subscribers. Timestamp is the event's
// creation time and ApprovalID falls back to the approval snapshot in Data,
// so retries send identical bytes even after the approval is deleted.
// Custom events without a snapshot lose approval_id once it is detached.
type Payload struct {
	ID          int64           `json:"id" jsonschema:"description=Webhook event id. Stable across retries; use it to deduplicate."`
	Event       model.EventType `json:"event" jsonschema:"enum=approval.created,enum=approval.updated,enum=approval.approved,enum=approval.rejected,enum=approval.cancelled,enum=approval.escalated,enum=approval.delegated"`
	ServiceID   int64           `json:"service_id"`
	ServiceName string          `json:"service_name"`
	ApprovalID  *int64          `json:"approval_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp" jsonschema:"format=date-time"`
	Data        json.RawMessage `json:"data" jsonschema:"type=object,description=Event specific snapshot, usually the approval"`
}

// BuildPayload renders the canonical body for event.
func BuildPayload(event *model.WebhookEvent, service *model.ServiceIdentity) ([]byte, error) {
	data := event.Payload
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	body, err := json.Marshal(Payload{
		ID:          event.ID,
		Event:       event.EventType,
		ServiceID:   service.ID,
		ServiceName: service.Name,
		ApprovalID:  approvalID(event.ApprovalID, data),
		Timestamp:   event.CreatedAt.UTC(),
		Data:        data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}
	return body, nil
}

func approvalID(linked *int64, data json.RawMessage) *int64 {
	if linked != nil {
		return linked
	}
	var snapshot struct {
		Approval *struct {
			ID int64 `json:"id"`
		} `json:"approval"`
	}
	if json.Unmarshal(data, &snapshot) != nil || snapshot.Approval == nil || snapshot.Approval.ID == 0 {
		return nil
	}
	return &snapshot.Approval.ID
}
