package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/store"
	"basegraph.app/approvals/internal/webhook"
)

// Dispatcher is the subset of webhook.Dispatcher the processor drives.
type Dispatcher interface {
	Fanout(ctx context.Context, event *model.WebhookEvent) ([]model.WebhookDelivery, error)
	Attempt(ctx context.Context, p webhook.AttemptParams) (*model.WebhookDelivery, error)
}

type ProcessorDeps struct {
	Dispatcher    Dispatcher
	Events        store.WebhookEventStore
	Deliveries    store.WebhookDeliveryStore
	Registrations store.WebhookRegistrationStore
}

type deliveryProcessor struct {
	dispatcher    Dispatcher
	events        store.WebhookEventStore
	deliveries    store.WebhookDeliveryStore
	registrations store.WebhookRegistrationStore
}

func NewProcessor(deps ProcessorDeps) TaskProcessor {
	return &deliveryProcessor{
		dispatcher:    deps.Dispatcher,
		events:        deps.Events,
		deliveries:    deps.Deliveries,
		registrations: deps.Registrations,
	}
}

func (p *deliveryProcessor) Process(ctx context.Context, msg queue.Message) error {
	switch msg.TaskType {
	case queue.TaskTypeEventDispatch:
		return p.dispatchEvent(ctx, msg.EventID)
	case queue.TaskTypeDeliveryRetry:
		if msg.DeliveryID == nil {
			return fmt.Errorf("delivery_retry without delivery_id")
		}
		return p.retryDelivery(ctx, *msg.DeliveryID)
	default:
		return fmt.Errorf("unsupported task type %q", msg.TaskType)
	}
}

func (p *deliveryProcessor) dispatchEvent(ctx context.Context, eventID int64) error {
	event, err := p.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "event no longer exists, skipping dispatch")
			return nil
		}
		return fmt.Errorf("loading event: %w", err)
	}

	if event.DispatchedAt != nil {
		slog.InfoContext(ctx, "event already dispatched, skipping")
		return nil
	}

	deliveries, err := p.dispatcher.Fanout(ctx, event)
	if err != nil {
		return fmt.Errorf("fanning out event: %w", err)
	}

	slog.InfoContext(ctx, "event dispatched", "deliveries", len(deliveries))
	return nil
}

func (p *deliveryProcessor) retryDelivery(ctx context.Context, deliveryID int64) error {
	previous, err := p.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "delivery no longer exists, skipping retry")
			return nil
		}
		return fmt.Errorf("loading delivery: %w", err)
	}

	if previous.Status != model.DeliveryStatusFailed {
		slog.InfoContext(ctx, "delivery is not failed, skipping retry", "status", previous.Status)
		return nil
	}

	latest, err := p.deliveries.LatestAttempt(ctx, previous.RegistrationID, previous.EventID)
	if err != nil {
		return fmt.Errorf("loading latest attempt: %w", err)
	}
	if latest > previous.AttemptCount {
		slog.InfoContext(ctx, "delivery already superseded by a newer attempt, skipping retry",
			"attempt_count", previous.AttemptCount,
			"latest_attempt", latest)
		return nil
	}

	reg, err := p.registrations.GetByID(ctx, previous.RegistrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "registration deleted, dropping retry")
			return nil
		}
		return fmt.Errorf("loading registration: %w", err)
	}
	if !reg.IsActive {
		slog.InfoContext(ctx, "registration inactive, dropping retry")
		return nil
	}
	if previous.AttemptCount >= reg.RetryCount {
		slog.InfoContext(ctx, "retry budget exhausted, dropping retry",
			"attempt_count", previous.AttemptCount,
			"retry_count", reg.RetryCount)
		return nil
	}

	event, err := p.events.GetByID(ctx, previous.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "event no longer exists, dropping retry")
			return nil
		}
		return fmt.Errorf("loading event: %w", err)
	}

	delivery, err := p.dispatcher.Attempt(ctx, webhook.AttemptParams{
		Event:         event,
		Registration:  reg,
		AttemptNumber: previous.AttemptCount + 1,
		AllowRetry:    true,
	})
	if err != nil {
		return fmt.Errorf("retrying delivery: %w", err)
	}

	slog.InfoContext(ctx, "delivery retried",
		"new_delivery_id", delivery.ID,
		"status", delivery.Status,
		"attempt", delivery.AttemptCount)
	return nil
}
