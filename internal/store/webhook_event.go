package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type webhookEventStore struct {
	queries *sqlc.Queries
}

func newWebhookEventStore(queries *sqlc.Queries) WebhookEventStore {
	return &webhookEventStore{queries: queries}
}

func (s *webhookEventStore) Create(ctx context.Context, event *model.WebhookEvent) error {
	row, err := s.queries.CreateWebhookEvent(ctx, sqlc.CreateWebhookEventParams{
		ID:           event.ID,
		ServiceID:    event.ServiceID,
		EventType:    string(event.EventType),
		ApprovalID:   event.ApprovalID,
		Payload:      event.Payload,
		DispatchedAt: toTimestamptz(event.DispatchedAt),
	})
	if err != nil {
		return err
	}
	*event = *toWebhookEventModel(row)
	return nil
}

func (s *webhookEventStore) Get(ctx context.Context, serviceID, id int64) (*model.WebhookEvent, error) {
	row, err := s.queries.GetWebhookEventForService(ctx, sqlc.GetWebhookEventForServiceParams{ID: id, ServiceID: serviceID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWebhookEventModel(row), nil
}

func (s *webhookEventStore) GetByID(ctx context.Context, id int64) (*model.WebhookEvent, error) {
	row, err := s.queries.GetWebhookEvent(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWebhookEventModel(row), nil
}

func (s *webhookEventStore) List(ctx context.Context, serviceID int64, filter EventFilter, limit, offset int32) ([]model.WebhookEvent, error) {
	rows, err := s.queries.ListWebhookEvents(ctx, sqlc.ListWebhookEventsParams{
		ServiceID:  serviceID,
		EventType:  enumPtr(filter.EventType),
		ApprovalID: filter.ApprovalID,
		RowLimit:   limit,
		RowOffset:  offset,
	})
	if err != nil {
		return nil, err
	}
	return toWebhookEventModels(rows), nil
}

func (s *webhookEventStore) Count(ctx context.Context, serviceID int64, filter EventFilter) (int64, error) {
	return s.queries.CountWebhookEvents(ctx, sqlc.CountWebhookEventsParams{
		ServiceID:  serviceID,
		EventType:  enumPtr(filter.EventType),
		ApprovalID: filter.ApprovalID,
	})
}

func (s *webhookEventStore) MarkDispatched(ctx context.Context, id int64) error {
	return s.queries.MarkWebhookEventDispatched(ctx, id)
}

func (s *webhookEventStore) ListUndispatched(ctx context.Context, createdBefore time.Time, limit int32) ([]model.WebhookEvent, error) {
	rows, err := s.queries.ListUndispatchedWebhookEvents(ctx, sqlc.ListUndispatchedWebhookEventsParams{
		CreatedBefore: at(createdBefore),
		BatchSize:     limit,
	})
	if err != nil {
		return nil, err
	}
	return toWebhookEventModels(rows), nil
}

func (s *webhookEventStore) DetachApproval(ctx context.Context, approvalID int64) error {
	return s.queries.DetachWebhookEventsFromApproval(ctx, &approvalID)
}

func toWebhookEventModel(row sqlc.WebhookEvent) *model.WebhookEvent {
	return &model.WebhookEvent{
		ID:           row.ID,
		ServiceID:    row.ServiceID,
		EventType:    model.EventType(row.EventType),
		ApprovalID:   row.ApprovalID,
		Payload:      row.Payload,
		DispatchedAt: fromTimestamptz(row.DispatchedAt),
		CreatedAt:    row.CreatedAt.Time,
	}
}

func toWebhookEventModels(rows []sqlc.WebhookEvent) []model.WebhookEvent {
	result := make([]model.WebhookEvent, len(rows))
	for i, row := range rows {
		result[i] = *toWebhookEventModel(row)
	}
	return result
}
