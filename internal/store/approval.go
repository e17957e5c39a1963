package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type approvalStore struct {
	queries *sqlc.Queries
}

func newApprovalStore(queries *sqlc.Queries) ApprovalStore {
	return &approvalStore{queries: queries}
}

func (s *approvalStore) Create(ctx context.Context, approval *model.Approval) error {
	approvers, err := json.Marshal(approval.Approvers)
	if err != nil {
		return fmt.Errorf("marshal approvers: %w", err)
	}
	metadata, err := marshalMetadata(approval.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.CreateApproval(ctx, sqlc.CreateApprovalParams{
		ID:           approval.ID,
		ServiceID:    approval.ServiceID,
		ApprovalType: string(approval.Type),
		ExternalID:   approval.ExternalID,
		Title:        approval.Title,
		Description:  approval.Description,
		Priority:     string(approval.Priority),
		Urgency:      string(approval.Urgency),
		DueDate:      toTimestamptz(approval.DueDate),
		TotalLevels:  approval.TotalLevels,
		Approvers:    approvers,
		Metadata:     metadata,
	})
	if err != nil {
		return err
	}

	created, err := toApprovalModel(row)
	if err != nil {
		return err
	}
	*approval = *created
	return nil
}

func (s *approvalStore) Get(ctx context.Context, serviceID, id int64) (*model.Approval, error) {
	row, err := s.queries.GetApproval(ctx, sqlc.GetApprovalParams{ID: id, ServiceID: serviceID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toApprovalModel(row)
}

func (s *approvalStore) GetForUpdate(ctx context.Context, serviceID, id int64) (*model.Approval, error) {
	row, err := s.queries.GetApprovalForUpdate(ctx, sqlc.GetApprovalForUpdateParams{ID: id, ServiceID: serviceID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toApprovalModel(row)
}

func (s *approvalStore) List(ctx context.Context, serviceID int64, filter ApprovalFilter, limit, offset int32) ([]model.Approval, error) {
	rows, err := s.queries.ListApprovals(ctx, sqlc.ListApprovalsParams{
		ServiceID:    serviceID,
		Status:       enumPtr(filter.Status),
		ApprovalType: enumPtr(filter.Type),
		Priority:     enumPtr(filter.Priority),
		Urgency:      enumPtr(filter.Urgency),
		ExternalID:   filter.ExternalID,
		RowLimit:     limit,
		RowOffset:    offset,
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Approval, 0, len(rows))
	for _, row := range rows {
		a, err := toApprovalModel(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, nil
}

func (s *approvalStore) Count(ctx context.Context, serviceID int64, filter ApprovalFilter) (int64, error) {
	return s.queries.CountApprovals(ctx, sqlc.CountApprovalsParams{
		ServiceID:    serviceID,
		Status:       enumPtr(filter.Status),
		ApprovalType: enumPtr(filter.Type),
		Priority:     enumPtr(filter.Priority),
		Urgency:      enumPtr(filter.Urgency),
		ExternalID:   filter.ExternalID,
	})
}

func (s *approvalStore) UpdateDetails(ctx context.Context, approval *model.Approval) error {
	metadata, err := marshalMetadata(approval.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.UpdateApprovalDetails(ctx, sqlc.UpdateApprovalDetailsParams{
		ID:          approval.ID,
		ServiceID:   approval.ServiceID,
		Title:       approval.Title,
		Description: approval.Description,
		Priority:    string(approval.Priority),
		Urgency:     string(approval.Urgency),
		DueDate:     toTimestamptz(approval.DueDate),
		Metadata:    metadata,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	updated, err := toApprovalModel(row)
	if err != nil {
		return err
	}
	*approval = *updated
	return nil
}

func (s *approvalStore) Advance(ctx context.Context, params AdvanceParams) (*model.Approval, error) {
	row, err := s.queries.AdvanceApproval(ctx, sqlc.AdvanceApprovalParams{
		NextLevel:     params.NextLevel,
		NextStatus:    string(params.NextStatus),
		CompletedAt:   toTimestamptz(params.CompletedAt),
		ID:            params.ID,
		ExpectedLevel: params.ExpectedLevel,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return toApprovalModel(row)
}

func (s *approvalStore) Delete(ctx context.Context, serviceID, id int64) error {
	n, err := s.queries.DeleteApproval(ctx, sqlc.DeleteApprovalParams{ID: id, ServiceID: serviceID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func toApprovalModel(row sqlc.Approval) (*model.Approval, error) {
	var approvers []model.Approver
	if err := json.Unmarshal(row.Approvers, &approvers); err != nil {
		return nil, fmt.Errorf("unmarshal approvers of approval %d: %w", row.ID, err)
	}

	metadata := map[string]any{}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata of approval %d: %w", row.ID, err)
		}
	}

	return &model.Approval{
		ID:           row.ID,
		ServiceID:    row.ServiceID,
		Type:         model.ApprovalType(row.ApprovalType),
		ExternalID:   row.ExternalID,
		Title:        row.Title,
		Description:  row.Description,
		Priority:     model.Priority(row.Priority),
		Urgency:      model.Urgency(row.Urgency),
		DueDate:      fromTimestamptz(row.DueDate),
		CurrentLevel: row.CurrentLevel,
		TotalLevels:  row.TotalLevels,
		Approvers:    approvers,
		Status:       model.ApprovalStatus(row.Status),
		Metadata:     metadata,
		CompletedAt:  fromTimestamptz(row.CompletedAt),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}, nil
}
