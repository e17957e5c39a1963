package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/store"
)

type CreateEventParams struct {
	EventType  model.EventType
	ApprovalID *int64
	Payload    json.RawMessage
}

// EventService publishes and browses webhook events. Events created here go
// through the same dispatch path as workflow events.
type EventService interface {
	Create(ctx context.Context, serviceID int64, params CreateEventParams) (*model.WebhookEvent, error)
	Get(ctx context.Context, serviceID, eventID int64) (*model.WebhookEvent, error)
	List(ctx context.Context, serviceID int64, filter store.EventFilter, page Page) ([]model.WebhookEvent, int64, error)
}

type eventService struct {
	stores StoreProvider
	queue  queue.Producer
	logger *slog.Logger
}

func NewEventService(stores StoreProvider, producer queue.Producer, logger *slog.Logger) EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{stores: stores, queue: producer, logger: logger}
}

func (s *eventService) Create(ctx context.Context, serviceID int64, params CreateEventParams) (*model.WebhookEvent, error) {
	if !params.EventType.IsValid() {
		return nil, invalidf("unknown event type %q", params.EventType)
	}

	payload := params.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage(`{}`)
	}
	var object map[string]any
	if err := json.Unmarshal(payload, &object); err != nil || object == nil {
		return nil, invalidf("payload must be a JSON object")
	}

	if params.ApprovalID != nil {
		if _, err := s.stores.Approvals().Get(ctx, serviceID, *params.ApprovalID); err != nil {
			return nil, fromStore(err, "getting approval")
		}
	}

	event := &model.WebhookEvent{
		ID:         id.New(),
		ServiceID:  serviceID,
		EventType:  params.EventType,
		ApprovalID: params.ApprovalID,
		Payload:    payload,
	}
	if err := s.stores.WebhookEvents().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("creating webhook event: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, EventID: &event.ID})
	s.logger.InfoContext(ctx, "webhook event published", "event_type", event.EventType)

	publish(ctx, s.queue, s.logger, event)
	return event, nil
}

func (s *eventService) Get(ctx context.Context, serviceID, eventID int64) (*model.WebhookEvent, error) {
	event, err := s.stores.WebhookEvents().Get(ctx, serviceID, eventID)
	if err != nil {
		return nil, fromStore(err, "getting webhook event")
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, serviceID int64, filter store.EventFilter, page Page) ([]model.WebhookEvent, int64, error) {
	if filter.EventType != nil && !filter.EventType.IsValid() {
		return nil, 0, invalidf("unknown event type %q", *filter.EventType)
	}
	events, err := s.stores.WebhookEvents().List(ctx, serviceID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing webhook events: %w", err)
	}
	total, err := s.stores.WebhookEvents().Count(ctx, serviceID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting webhook events: %w", err)
	}
	return events, total, nil
}
