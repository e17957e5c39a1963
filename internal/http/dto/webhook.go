package dto

import (
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
)

type RegisterWebhookRequest struct {
	URL            string            `json:"url" binding:"required,max=2048"`
	Events         []model.EventType `json:"events" binding:"required,min=1"`
	RetryCount     *int32            `json:"retry_count,omitempty"`
	TimeoutSeconds *int32            `json:"timeout_seconds,omitempty"`
}

func (r RegisterWebhookRequest) Params() service.RegisterWebhookParams {
	return service.RegisterWebhookParams{
		URL:            r.URL,
		Events:         r.Events,
		RetryCount:     r.RetryCount,
		TimeoutSeconds: r.TimeoutSeconds,
	}
}

// RegisterWebhookResponse is the only response that carries the signing secret.
type RegisterWebhookResponse struct {
	*model.WebhookRegistration
	Secret string `json:"secret"`
}

type UpdateWebhookRequest struct {
	URL            *string           `json:"url,omitempty" binding:"omitempty,max=2048"`
	Events         []model.EventType `json:"events,omitempty"`
	RetryCount     *int32            `json:"retry_count,omitempty"`
	TimeoutSeconds *int32            `json:"timeout_seconds,omitempty"`
	IsActive       *bool             `json:"is_active,omitempty"`
}

func (r UpdateWebhookRequest) Params() service.UpdateWebhookParams {
	return service.UpdateWebhookParams{
		URL:            r.URL,
		Events:         r.Events,
		RetryCount:     r.RetryCount,
		TimeoutSeconds: r.TimeoutSeconds,
		IsActive:       r.IsActive,
	}
}

type StatsQuery struct {
	Days int `form:"days"`
}
