package model

import (
	"encoding/json"
	"slices"
	"time"
)

type EventType string

const (
	EventTypeApprovalCreated   EventType = "approval.created"
	EventTypeApprovalUpdated   EventType = "approval.updated"
	EventTypeApprovalApproved  EventType = "approval.approved"
	EventTypeApprovalRejected  EventType = "approval.rejected"
	EventTypeApprovalCancelled EventType = "approval.cancelled"
	// Escalated and delegated are accepted for subscription and manual
	// publishing but nothing in the workflow emits them.
	EventTypeApprovalEscalated EventType = "approval.escalated"
	EventTypeApprovalDelegated EventType = "approval.delegated"
)

// EventTypes lists the closed set of event types in a stable order.
func EventTypes() []EventType {
	return []EventType{
		EventTypeApprovalCreated,
		EventTypeApprovalUpdated,
		EventTypeApprovalApproved,
		EventTypeApprovalRejected,
		EventTypeApprovalCancelled,
		EventTypeApprovalEscalated,
		EventTypeApprovalDelegated,
	}
}

func (e EventType) IsValid() bool {
	return slices.Contains(EventTypes(), e)
}

type WebhookRegistration struct {
	ID             int64       `json:"id"`
	ServiceID      int64       `json:"service_id"`
	URL            string      `json:"url"`
	Events         []EventType `json:"events"`
	Secret         string      `json:"-"`
	RetryCount     int32       `json:"retry_count"`
	TimeoutSeconds int32       `json:"timeout_seconds"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (r *WebhookRegistration) Subscribes(eventType EventType) bool {
	return slices.Contains(r.Events, eventType)
}

func (r *WebhookRegistration) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// WebhookEvent is an immutable record of something that happened to an
// approval. DispatchedAt is set once the event has been fanned out.
type WebhookEvent struct {
	ID           int64           `json:"id"`
	ServiceID    int64           `json:"service_id"`
	EventType    EventType       `json:"event_type"`
	ApprovalID   *int64          `json:"approval_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "PENDING"
	DeliveryStatusSuccess DeliveryStatus = "SUCCESS"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
)

func (d DeliveryStatus) IsValid() bool {
	switch d {
	case DeliveryStatusPending, DeliveryStatusSuccess, DeliveryStatusFailed:
		return true
	}
	return false
}

// WebhookDelivery is one HTTP attempt to push an event to a registration.
// Retries append new rows for the same event.
type WebhookDelivery struct {
	ID             int64          `json:"id"`
	RegistrationID int64          `json:"registration_id"`
	EventID        int64          `json:"event_id"`
	Status         DeliveryStatus `json:"status"`
	ResponseCode   *int32         `json:"response_code,omitempty"`
	ResponseBody   *string        `json:"response_body,omitempty"`
	AttemptCount   int32          `json:"attempt_count"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	NextRetryAt    *time.Time     `json:"next_retry_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
