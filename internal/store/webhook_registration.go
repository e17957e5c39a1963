package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type webhookRegistrationStore struct {
	queries *sqlc.Queries
}

func newWebhookRegistrationStore(queries *sqlc.Queries) WebhookRegistrationStore {
	return &webhookRegistrationStore{queries: queries}
}

func (s *webhookRegistrationStore) Create(ctx context.Context, reg *model.WebhookRegistration) error {
	row, err := s.queries.CreateWebhookRegistration(ctx, sqlc.CreateWebhookRegistrationParams{
		ID:             reg.ID,
		ServiceID:      reg.ServiceID,
		Url:            reg.URL,
		Events:         eventStrings(reg.Events),
		Secret:         reg.Secret,
		RetryCount:     reg.RetryCount,
		TimeoutSeconds: reg.TimeoutSeconds,
	})
	if err != nil {
		return err
	}
	*reg = *toWebhookRegistrationModel(row)
	return nil
}

func (s *webhookRegistrationStore) Get(ctx context.Context, serviceID, id int64) (*model.WebhookRegistration, error) {
	row, err := s.queries.GetWebhookRegistration(ctx, sqlc.GetWebhookRegistrationParams{ID: id, ServiceID: serviceID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWebhookRegistrationModel(row), nil
}

func (s *webhookRegistrationStore) GetByID(ctx context.Context, id int64) (*model.WebhookRegistration, error) {
	row, err := s.queries.GetWebhookRegistrationByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWebhookRegistrationModel(row), nil
}

func (s *webhookRegistrationStore) List(ctx context.Context, serviceID int64, limit, offset int32) ([]model.WebhookRegistration, error) {
	rows, err := s.queries.ListWebhookRegistrations(ctx, sqlc.ListWebhookRegistrationsParams{
		ServiceID: serviceID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	return toWebhookRegistrationModels(rows), nil
}

func (s *webhookRegistrationStore) Count(ctx context.Context, serviceID int64) (int64, error) {
	return s.queries.CountWebhookRegistrations(ctx, serviceID)
}

func (s *webhookRegistrationStore) ListSubscribed(ctx context.Context, serviceID int64, eventType model.EventType) ([]model.WebhookRegistration, error) {
	rows, err := s.queries.ListActiveWebhookRegistrationsForEvent(ctx, sqlc.ListActiveWebhookRegistrationsForEventParams{
		ServiceID: serviceID,
		EventType: string(eventType),
	})
	if err != nil {
		return nil, err
	}
	return toWebhookRegistrationModels(rows), nil
}

func (s *webhookRegistrationStore) Update(ctx context.Context, reg *model.WebhookRegistration) error {
	row, err := s.queries.UpdateWebhookRegistration(ctx, sqlc.UpdateWebhookRegistrationParams{
		ID:             reg.ID,
		ServiceID:      reg.ServiceID,
		Url:            reg.URL,
		Events:         eventStrings(reg.Events),
		RetryCount:     reg.RetryCount,
		TimeoutSeconds: reg.TimeoutSeconds,
		IsActive:       reg.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*reg = *toWebhookRegistrationModel(row)
	return nil
}

func (s *webhookRegistrationStore) Delete(ctx context.Context, serviceID, id int64) error {
	n, err := s.queries.DeleteWebhookRegistration(ctx, sqlc.DeleteWebhookRegistrationParams{ID: id, ServiceID: serviceID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func eventStrings(events []model.EventType) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e)
	}
	return out
}

func toWebhookRegistrationModel(row sqlc.WebhookRegistration) *model.WebhookRegistration {
	events := make([]model.EventType, len(row.Events))
	for i, e := range row.Events {
		events[i] = model.EventType(e)
	}
	return &model.WebhookRegistration{
		ID:             row.ID,
		ServiceID:      row.ServiceID,
		URL:            row.Url,
		Events:         events,
		Secret:         row.Secret,
		RetryCount:     row.RetryCount,
		TimeoutSeconds: row.TimeoutSeconds,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

func toWebhookRegistrationModels(rows []sqlc.WebhookRegistration) []model.WebhookRegistration {
	result := make([]model.WebhookRegistration, len(rows))
	for i, row := range rows {
		result[i] = *toWebhookRegistrationModel(row)
	}
	return result
}
