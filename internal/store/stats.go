package store

import (
	"context"
	"time"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type statsStore struct {
	queries *sqlc.Queries
}

func newStatsStore(queries *sqlc.Queries) StatsStore {
	return &statsStore{queries: queries}
}

func (s *statsStore) ApprovalBreakdown(ctx context.Context, serviceID int64) ([]model.ApprovalCountRow, error) {
	rows, err := s.queries.ApprovalBreakdown(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	result := make([]model.ApprovalCountRow, len(rows))
	for i, row := range rows {
		result[i] = model.ApprovalCountRow{
			Status:   model.ApprovalStatus(row.Status),
			Priority: model.Priority(row.Priority),
			Urgency:  model.Urgency(row.Urgency),
			Type:     model.ApprovalType(row.ApprovalType),
			Count:    row.Count,
		}
	}
	return result, nil
}

func (s *statsStore) AverageCompletionSeconds(ctx context.Context, serviceID int64) (float64, error) {
	return s.queries.AverageApprovalCompletionSeconds(ctx, serviceID)
}

func (s *statsStore) RegistrationDeliveryCounts(ctx context.Context, registrationID int64, since time.Time) (model.DeliveryCounts, error) {
	row, err := s.queries.RegistrationDeliveryCounts(ctx, sqlc.RegistrationDeliveryCountsParams{
		RegistrationID: registrationID,
		Since:          at(since),
	})
	if err != nil {
		return model.DeliveryCounts{}, err
	}
	return model.DeliveryCounts{Total: row.Total, Success: row.Success, Failed: row.Failed, Pending: row.Pending}, nil
}

func (s *statsStore) ServiceDeliveryCounts(ctx context.Context, serviceID int64, since time.Time) (model.DeliveryCounts, error) {
	row, err := s.queries.ServiceDeliveryCounts(ctx, sqlc.ServiceDeliveryCountsParams{
		ServiceID: serviceID,
		Since:     at(since),
	})
	if err != nil {
		return model.DeliveryCounts{}, err
	}
	return model.DeliveryCounts{Total: row.Total, Success: row.Success, Failed: row.Failed, Pending: row.Pending}, nil
}
