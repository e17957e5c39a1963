package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type webhookDeliveryStore struct {
	queries *sqlc.Queries
}

func newWebhookDeliveryStore(queries *sqlc.Queries) WebhookDeliveryStore {
	return &webhookDeliveryStore{queries: queries}
}

func (s *webhookDeliveryStore) Create(ctx context.Context, delivery *model.WebhookDelivery) error {
	row, err := s.queries.CreateWebhookDelivery(ctx, sqlc.CreateWebhookDeliveryParams{
		ID:             delivery.ID,
		RegistrationID: delivery.RegistrationID,
		EventID:        delivery.EventID,
		Status:         string(delivery.Status),
		AttemptCount:   delivery.AttemptCount,
	})
	if err != nil {
		return err
	}
	*delivery = *toWebhookDeliveryModel(row)
	return nil
}

func (s *webhookDeliveryStore) Complete(ctx context.Context, delivery *model.WebhookDelivery) error {
	row, err := s.queries.CompleteWebhookDelivery(ctx, sqlc.CompleteWebhookDeliveryParams{
		ID:           delivery.ID,
		Status:       string(delivery.Status),
		ResponseCode: delivery.ResponseCode,
		ResponseBody: delivery.ResponseBody,
		DeliveredAt:  toTimestamptz(delivery.DeliveredAt),
		NextRetryAt:  toTimestamptz(delivery.NextRetryAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*delivery = *toWebhookDeliveryModel(row)
	return nil
}

func (s *webhookDeliveryStore) GetByID(ctx context.Context, id int64) (*model.WebhookDelivery, error) {
	row, err := s.queries.GetWebhookDelivery(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWebhookDeliveryModel(row), nil
}

func (s *webhookDeliveryStore) ListByRegistration(ctx context.Context, registrationID int64, limit, offset int32) ([]model.WebhookDelivery, error) {
	rows, err := s.queries.ListWebhookDeliveriesByRegistration(ctx, sqlc.ListWebhookDeliveriesByRegistrationParams{
		RegistrationID: registrationID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, err
	}
	return toWebhookDeliveryModels(rows), nil
}

func (s *webhookDeliveryStore) CountByRegistration(ctx context.Context, registrationID int64) (int64, error) {
	return s.queries.CountWebhookDeliveriesByRegistration(ctx, registrationID)
}

func (s *webhookDeliveryStore) LatestAttempt(ctx context.Context, registrationID, eventID int64) (int32, error) {
	return s.queries.LatestWebhookDeliveryAttempt(ctx, sqlc.LatestWebhookDeliveryAttemptParams{
		RegistrationID: registrationID,
		EventID:        eventID,
	})
}

func (s *webhookDeliveryStore) ClaimDue(ctx context.Context, now time.Time, limit int32) ([]model.WebhookDelivery, error) {
	rows, err := s.queries.ClaimDueWebhookDeliveries(ctx, sqlc.ClaimDueWebhookDeliveriesParams{
		DueBefore: at(now),
		BatchSize: limit,
	})
	if err != nil {
		return nil, err
	}
	return toWebhookDeliveryModels(rows), nil
}

func (s *webhookDeliveryStore) Reschedule(ctx context.Context, id int64, when time.Time) error {
	return s.queries.RescheduleWebhookDelivery(ctx, sqlc.RescheduleWebhookDeliveryParams{
		ID:          id,
		NextRetryAt: at(when),
	})
}

func (s *webhookDeliveryStore) DeleteByRegistration(ctx context.Context, registrationID int64) error {
	return s.queries.DeleteWebhookDeliveriesByRegistration(ctx, registrationID)
}

func toWebhookDeliveryModel(row sqlc.WebhookDelivery) *model.WebhookDelivery {
	return &model.WebhookDelivery{
		ID:             row.ID,
		RegistrationID: row.RegistrationID,
		EventID:        row.EventID,
		Status:         model.DeliveryStatus(row.Status),
		ResponseCode:   row.ResponseCode,
		ResponseBody:   row.ResponseBody,
		AttemptCount:   row.AttemptCount,
		DeliveredAt:    fromTimestamptz(row.DeliveredAt),
		NextRetryAt:    fromTimestamptz(row.NextRetryAt),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

func toWebhookDeliveryModels(rows []sqlc.WebhookDelivery) []model.WebhookDelivery {
	result := make([]model.WebhookDelivery, len(rows))
	for i, row := range rows {
		result[i] = *toWebhookDeliveryModel(row)
	}
	return result
}
