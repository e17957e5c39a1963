package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/directory"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/store"
)

type CreateApprovalParams struct {
	Type        model.ApprovalType
	ExternalID  *string
	Title       string
	Description *string
	Priority    *model.Priority
	Urgency     *model.Urgency
	DueDate     *time.Time
	Approvers   []model.Approver
	Metadata    map[string]any
}

// UpdateApprovalParams carries the descriptive fields; nil leaves a field as is.
type UpdateApprovalParams struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Urgency     *model.Urgency
	DueDate     *time.Time
	Metadata    map[string]any
}

// TransitionParams identifies the caller of approve, reject or cancel. Level
// and UserID are optional; when given they must match the current level and
// its approver.
type TransitionParams struct {
	UserID  *string
	Level   *int32
	Comment *string
}

type ApprovalService interface {
	Create(ctx context.Context, serviceID int64, params CreateApprovalParams) (*model.Approval, error)
	Get(ctx context.Context, serviceID, approvalID int64) (*model.Approval, error)
	List(ctx context.Context, serviceID int64, filter store.ApprovalFilter, page Page) ([]model.Approval, int64, error)
	Decisions(ctx context.Context, serviceID, approvalID int64) ([]model.Decision, error)
	Approve(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error)
	Reject(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error)
	Cancel(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error)
	Update(ctx context.Context, serviceID, approvalID int64, params UpdateApprovalParams) (*model.Approval, error)
	Delete(ctx context.Context, serviceID, approvalID int64) error
}

type approvalService struct {
	stores   StoreProvider
	txRunner TxRunner
	queue    queue.Producer
	resolver directory.Resolver
	now      func() time.Time
	logger   *slog.Logger
}

func NewApprovalService(stores StoreProvider, txRunner TxRunner, producer queue.Producer, resolver directory.Resolver, logger *slog.Logger) ApprovalService {
	if resolver == nil {
		resolver = directory.Permissive{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &approvalService{
		stores:   stores,
		txRunner: txRunner,
		queue:    producer,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *approvalService) Create(ctx context.Context, serviceID int64, params CreateApprovalParams) (*model.Approval, error) {
	if err := s.validateCreate(ctx, params); err != nil {
		return nil, err
	}

	priority := model.PriorityNormal
	if params.Priority != nil {
		priority = *params.Priority
	}
	urgency := model.UrgencyNormal
	if params.Urgency != nil {
		urgency = *params.Urgency
	}

	approvers := slices.Clone(params.Approvers)
	slices.SortFunc(approvers, func(a, b model.Approver) int { return cmp.Compare(a.Level, b.Level) })

	approval := &model.Approval{
		ID:          id.New(),
		ServiceID:   serviceID,
		Type:        params.Type,
		ExternalID:  params.ExternalID,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Priority:    priority,
		Urgency:     urgency,
		DueDate:     params.DueDate,
		TotalLevels: int32(len(approvers)),
		Approvers:   approvers,
		Metadata:    params.Metadata,
	}

	var event *model.WebhookEvent
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Approvals().Create(ctx, approval); err != nil {
			return fmt.Errorf("creating approval: %w", err)
		}

		for _, ap := range approvers {
			decision := &model.Decision{
				ID:         id.New(),
				ApprovalID: approval.ID,
				ApproverID: ap.UserID,
				Level:      ap.Level,
				Decision:   model.DecisionStatusPending,
			}
			if err := sp.Decisions().Create(ctx, decision); err != nil {
				return fmt.Errorf("creating decision for level %d: %w", ap.Level, err)
			}
		}

		var err error
		event, err = newApprovalEvent(serviceID, model.EventTypeApprovalCreated, approval, nil)
		if err != nil {
			return err
		}
		if err := sp.WebhookEvents().Create(ctx, event); err != nil {
			return fmt.Errorf("creating webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, ApprovalID: &approval.ID})
	s.logger.InfoContext(ctx, "approval created",
		"approval_type", approval.Type,
		"total_levels", approval.TotalLevels)

	publish(ctx, s.queue, s.logger, event)
	return approval, nil
}

func (s *approvalService) validateCreate(ctx context.Context, params CreateApprovalParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return invalidf("title is required")
	}
	if !params.Type.IsValid() {
		return invalidf("invalid approval_type %q", params.Type)
	}
	if len(params.Approvers) == 0 {
		return invalidf("at least one approver is required")
	}

	for _, ap := range params.Approvers {
		if strings.TrimSpace(ap.UserID) == "" {
			return invalidf("approver user_id is required")
		}
		if _, err := s.resolver.Resolve(ctx, ap.UserID); err != nil {
			if errors.Is(err, directory.ErrUserNotFound) {
				return invalidf("approver %q not found", ap.UserID)
			}
			return fmt.Errorf("resolving approver %q: %w", ap.UserID, err)
		}
	}

	if err := checkContiguousLevels(params.Approvers); err != nil {
		return err
	}

	if params.Priority != nil && !params.Priority.IsValid() {
		return invalidf("invalid priority %q", *params.Priority)
	}
	if params.Urgency != nil && !params.Urgency.IsValid() {
		return invalidf("invalid urgency %q", *params.Urgency)
	}
	return nil
}

// checkContiguousLevels requires the approver levels to be exactly 1..n.
func checkContiguousLevels(approvers []model.Approver) error {
	levels := make([]int32, len(approvers))
	for i, ap := range approvers {
		levels[i] = ap.Level
	}
	slices.Sort(levels)
	for i, level := range levels {
		if level != int32(i+1) {
			return invalidf("approver levels must be contiguous starting at 1, got %v", levels)
		}
	}
	return nil
}

func (s *approvalService) Get(ctx context.Context, serviceID, approvalID int64) (*model.Approval, error) {
	approval, err := s.stores.Approvals().Get(ctx, serviceID, approvalID)
	if err != nil {
		return nil, fromStore(err, "getting approval")
	}
	return approval, nil
}

func (s *approvalService) List(ctx context.Context, serviceID int64, filter store.ApprovalFilter, page Page) ([]model.Approval, int64, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidf("invalid status %q", *filter.Status)
	}
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, 0, invalidf("invalid approval_type %q", *filter.Type)
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return nil, 0, invalidf("invalid priority %q", *filter.Priority)
	}
	if filter.Urgency != nil && !filter.Urgency.IsValid() {
		return nil, 0, invalidf("invalid urgency %q", *filter.Urgency)
	}

	approvals, err := s.stores.Approvals().List(ctx, serviceID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing approvals: %w", err)
	}
	total, err := s.stores.Approvals().Count(ctx, serviceID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting approvals: %w", err)
	}
	return approvals, total, nil
}

func (s *approvalService) Decisions(ctx context.Context, serviceID, approvalID int64) ([]model.Decision, error) {
	if _, err := s.stores.Approvals().Get(ctx, serviceID, approvalID); err != nil {
		return nil, fromStore(err, "getting approval")
	}
	decisions, err := s.stores.Decisions().ListByApproval(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	return decisions, nil
}

type transitionKind int

const (
	transitionApprove transitionKind = iota
	transitionReject
	transitionCancel
)

func (k transitionKind) String() string {
	switch k {
	case transitionApprove:
		return "approve"
	case transitionReject:
		return "reject"
	default:
		return "cancel"
	}
}

func (s *approvalService) Approve(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error) {
	return s.transition(ctx, serviceID, approvalID, params, transitionApprove)
}

func (s *approvalService) Reject(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error) {
	return s.transition(ctx, serviceID, approvalID, params, transitionReject)
}

func (s *approvalService) Cancel(ctx context.Context, serviceID, approvalID int64, params TransitionParams) (*model.Approval, error) {
	return s.transition(ctx, serviceID, approvalID, params, transitionCancel)
}

// transition runs one workflow step under the approval's row lock. The
// advance and the decision write are both guarded on the level the caller
// observed, so a concurrent loser gets ErrConflict instead of a double write.
func (s *approvalService) transition(ctx context.Context, serviceID, approvalID int64, params TransitionParams, kind transitionKind) (*model.Approval, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, ApprovalID: &approvalID})

	var (
		updated *model.Approval
		event   *model.WebhookEvent
		level   int32
	)
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		approval, err := sp.Approvals().GetForUpdate(ctx, serviceID, approvalID)
		if err != nil {
			return fromStore(err, "locking approval")
		}

		if approval.Status != model.ApprovalStatusPending {
			return conflictf("approval already completed with status %s", approval.Status)
		}

		level = approval.CurrentLevel
		approver, ok := approval.ApproverAt(level)
		if !ok {
			return invalidf("no approver assigned to level %d", level)
		}
		if params.Level != nil && *params.Level != level {
			return conflictf("approval is at level %d, not %d", level, *params.Level)
		}
		if params.UserID != nil && *params.UserID != approver.UserID {
			return fmt.Errorf("%w: user %q is not the approver for level %d", ErrForbidden, *params.UserID, level)
		}

		now := s.now().UTC()
		advance := store.AdvanceParams{ID: approval.ID, ExpectedLevel: level, NextLevel: level}
		var eventType model.EventType
		switch kind {
		case transitionApprove:
			if approval.IsFinalLevel() {
				advance.NextLevel = approval.TotalLevels + 1
				advance.NextStatus = model.ApprovalStatusApproved
				advance.CompletedAt = &now
				eventType = model.EventTypeApprovalApproved
			} else {
				advance.NextLevel = level + 1
				advance.NextStatus = model.ApprovalStatusPending
				eventType = model.EventTypeApprovalUpdated
			}
		case transitionReject:
			advance.NextStatus = model.ApprovalStatusRejected
			advance.CompletedAt = &now
			eventType = model.EventTypeApprovalRejected
		case transitionCancel:
			advance.NextStatus = model.ApprovalStatusCancelled
			advance.CompletedAt = &now
			eventType = model.EventTypeApprovalCancelled
		}

		updated, err = sp.Approvals().Advance(ctx, advance)
		if err != nil {
			return fromStore(err, "advancing approval")
		}

		var decision *model.Decision
		switch kind {
		case transitionApprove:
			decision, err = sp.Decisions().Record(ctx, approval.ID, level, model.DecisionStatusApproved, params.Comment, now)
		case transitionReject:
			decision, err = sp.Decisions().Record(ctx, approval.ID, level, model.DecisionStatusRejected, params.Comment, now)
		case transitionCancel:
			decision, err = sp.Decisions().Annotate(ctx, approval.ID, level, params.Comment)
		}
		if err != nil {
			return fromStore(err, "recording decision")
		}

		event, err = newApprovalEvent(serviceID, eventType, updated, decision)
		if err != nil {
			return err
		}
		if err := sp.WebhookEvents().Create(ctx, event); err != nil {
			return fmt.Errorf("creating webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.InfoContext(ctx, "approval transition rejected", "action", kind.String(), "reason", err.Error())
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "approval transitioned",
		"action", kind.String(),
		"level", level,
		"status", updated.Status,
		"current_level", updated.CurrentLevel)

	publish(ctx, s.queue, s.logger, event)
	return updated, nil
}

// Update edits descriptive fields. It is allowed in any status, including
// after the approval completed.
func (s *approvalService) Update(ctx context.Context, serviceID, approvalID int64, params UpdateApprovalParams) (*model.Approval, error) {
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return nil, invalidf("title must not be empty")
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, invalidf("invalid priority %q", *params.Priority)
	}
	if params.Urgency != nil && !params.Urgency.IsValid() {
		return nil, invalidf("invalid urgency %q", *params.Urgency)
	}

	var (
		approval *model.Approval
		event    *model.WebhookEvent
	)
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		approval, err = sp.Approvals().GetForUpdate(ctx, serviceID, approvalID)
		if err != nil {
			return fromStore(err, "locking approval")
		}

		if params.Title != nil {
			approval.Title = strings.TrimSpace(*params.Title)
		}
		if params.Description != nil {
			approval.Description = params.Description
		}
		if params.Priority != nil {
			approval.Priority = *params.Priority
		}
		if params.Urgency != nil {
			approval.Urgency = *params.Urgency
		}
		if params.DueDate != nil {
			approval.DueDate = params.DueDate
		}
		if params.Metadata != nil {
			approval.Metadata = params.Metadata
		}

		if err := sp.Approvals().UpdateDetails(ctx, approval); err != nil {
			return fromStore(err, "updating approval")
		}

		event, err = newApprovalEvent(serviceID, model.EventTypeApprovalUpdated, approval, nil)
		if err != nil {
			return err
		}
		if err := sp.WebhookEvents().Create(ctx, event); err != nil {
			return fmt.Errorf("creating webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, ApprovalID: &approvalID})
	s.logger.InfoContext(ctx, "approval updated", "status", approval.Status)
	publish(ctx, s.queue, s.logger, event)
	return approval, nil
}

// Delete removes an approval in any status. Decisions go with it; events
// keep their payload but lose the link.
func (s *approvalService) Delete(ctx context.Context, serviceID, approvalID int64) error {
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := sp.Approvals().GetForUpdate(ctx, serviceID, approvalID); err != nil {
			return fromStore(err, "locking approval")
		}
		if err := sp.Decisions().DeleteByApproval(ctx, approvalID); err != nil {
			return fmt.Errorf("deleting decisions: %w", err)
		}
		if err := sp.WebhookEvents().DetachApproval(ctx, approvalID); err != nil {
			return fmt.Errorf("detaching webhook events: %w", err)
		}
		if err := sp.Approvals().Delete(ctx, serviceID, approvalID); err != nil {
			return fromStore(err, "deleting approval")
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, ApprovalID: &approvalID})
	s.logger.InfoContext(ctx, "approval deleted")
	return nil
}
