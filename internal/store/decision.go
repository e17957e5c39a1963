package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type decisionStore struct {
	queries *sqlc.Queries
}

func newDecisionStore(queries *sqlc.Queries) DecisionStore {
	return &decisionStore{queries: queries}
}

func (s *decisionStore) Create(ctx context.Context, decision *model.Decision) error {
	row, err := s.queries.CreateDecision(ctx, sqlc.CreateDecisionParams{
		ID:         decision.ID,
		ApprovalID: decision.ApprovalID,
		ApproverID: decision.ApproverID,
		Level:      decision.Level,
	})
	if err != nil {
		return err
	}
	*decision = *toDecisionModel(row)
	return nil
}

func (s *decisionStore) ListByApproval(ctx context.Context, approvalID int64) ([]model.Decision, error) {
	rows, err := s.queries.ListDecisionsByApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	result := make([]model.Decision, len(rows))
	for i, row := range rows {
		result[i] = *toDecisionModel(row)
	}
	return result, nil
}

func (s *decisionStore) Record(ctx context.Context, approvalID int64, level int32, status model.DecisionStatus, comment *string, decidedAt time.Time) (*model.Decision, error) {
	row, err := s.queries.RecordDecision(ctx, sqlc.RecordDecisionParams{
		ApprovalID: approvalID,
		Level:      level,
		Decision:   string(status),
		Comment:    comment,
		DecidedAt:  at(decidedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return toDecisionModel(row), nil
}

func (s *decisionStore) Annotate(ctx context.Context, approvalID int64, level int32, comment *string) (*model.Decision, error) {
	row, err := s.queries.AnnotateDecision(ctx, sqlc.AnnotateDecisionParams{
		ApprovalID: approvalID,
		Level:      level,
		Comment:    comment,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return toDecisionModel(row), nil
}

func (s *decisionStore) DeleteByApproval(ctx context.Context, approvalID int64) error {
	return s.queries.DeleteDecisionsByApproval(ctx, approvalID)
}

func toDecisionModel(row sqlc.ApprovalDecision) *model.Decision {
	return &model.Decision{
		ID:         row.ID,
		ApprovalID: row.ApprovalID,
		ApproverID: row.ApproverID,
		Level:      row.Level,
		Decision:   model.DecisionStatus(row.Decision),
		Comment:    row.Comment,
		DecidedAt:  fromTimestamptz(row.DecidedAt),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
