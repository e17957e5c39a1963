package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log line emitted with a context that
// carries them. Request middleware sets ServiceID, the worker sets
// MessageID and EventID, and services add the entity they operate on.
type LogFields struct {
	RequestID      *string // Inbound X-Request-Id, generated when absent
	ServiceID      *int64  // Authenticated calling service
	ApprovalID     *int64  // Approval being created or transitioned
	EventID        *int64  // Webhook event being dispatched
	RegistrationID *int64  // Webhook registration receiving a delivery
	DeliveryID     *int64  // Delivery attempt row
	MessageID      *string // Redis stream message ID
	EventType      *string // e.g. "approval.approved"
	Component      string  // e.g. "approvals.worker.dispatch"
}

// WithLogFields merges fields into the context. Later non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.ServiceID != nil {
		result.ServiceID = next.ServiceID
	}
	if next.ApprovalID != nil {
		result.ApprovalID = next.ApprovalID
	}
	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.RegistrationID != nil {
		result.RegistrationID = next.RegistrationID
	}
	if next.DeliveryID != nil {
		result.DeliveryID = next.DeliveryID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v, handy for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes and appends "..." when it was cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
