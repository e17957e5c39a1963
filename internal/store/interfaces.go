package store

import (
	"context"
	"errors"
	"time"

	"basegraph.app/approvals/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a guarded update matched no row because the
// row changed underneath the caller.
var ErrConflict = errors.New("conflict")

// ServiceIdentityStore defines the contract for service identity data access
type ServiceIdentityStore interface {
	GetByID(ctx context.Context, id int64) (*model.ServiceIdentity, error)
	GetBySecretHash(ctx context.Context, secretHash string) (*model.ServiceIdentity, error)
	Create(ctx context.Context, identity *model.ServiceIdentity) error
	SetActive(ctx context.Context, id int64, active bool) (*model.ServiceIdentity, error)
}

type ApprovalFilter struct {
	Status     *model.ApprovalStatus
	Type       *model.ApprovalType
	Priority   *model.Priority
	Urgency    *model.Urgency
	ExternalID *string
}

// AdvanceParams moves an approval from ExpectedLevel to NextLevel. The
// update only applies while the row is still PENDING at ExpectedLevel.
type AdvanceParams struct {
	ID            int64
	ExpectedLevel int32
	NextLevel     int32
	NextStatus    model.ApprovalStatus
	CompletedAt   *time.Time
}

// ApprovalStore defines the contract for approval data access.
// Every read is scoped by the owning service.
type ApprovalStore interface {
	Create(ctx context.Context, approval *model.Approval) error
	Get(ctx context.Context, serviceID, id int64) (*model.Approval, error)
	GetForUpdate(ctx context.Context, serviceID, id int64) (*model.Approval, error) // row lock until commit
	List(ctx context.Context, serviceID int64, filter ApprovalFilter, limit, offset int32) ([]model.Approval, error)
	Count(ctx context.Context, serviceID int64, filter ApprovalFilter) (int64, error)
	UpdateDetails(ctx context.Context, approval *model.Approval) error
	Advance(ctx context.Context, params AdvanceParams) (*model.Approval, error) // ErrConflict when the guard fails
	Delete(ctx context.Context, serviceID, id int64) error
}

// DecisionStore defines the contract for per-level decision data access
type DecisionStore interface {
	Create(ctx context.Context, decision *model.Decision) error
	ListByApproval(ctx context.Context, approvalID int64) ([]model.Decision, error)
	// Record and Annotate only touch a decision that is still PENDING.
	Record(ctx context.Context, approvalID int64, level int32, status model.DecisionStatus, comment *string, decidedAt time.Time) (*model.Decision, error)
	Annotate(ctx context.Context, approvalID int64, level int32, comment *string) (*model.Decision, error)
	DeleteByApproval(ctx context.Context, approvalID int64) error
}

// WebhookRegistrationStore defines the contract for webhook subscription data access
type WebhookRegistrationStore interface {
	Create(ctx context.Context, reg *model.WebhookRegistration) error
	Get(ctx context.Context, serviceID, id int64) (*model.WebhookRegistration, error)
	GetByID(ctx context.Context, id int64) (*model.WebhookRegistration, error) // unscoped, worker only
	List(ctx context.Context, serviceID int64, limit, offset int32) ([]model.WebhookRegistration, error)
	Count(ctx context.Context, serviceID int64) (int64, error)
	ListSubscribed(ctx context.Context, serviceID int64, eventType model.EventType) ([]model.WebhookRegistration, error)
	Update(ctx context.Context, reg *model.WebhookRegistration) error
	Delete(ctx context.Context, serviceID, id int64) error
}

type EventFilter struct {
	EventType  *model.EventType
	ApprovalID *int64
}

// WebhookEventStore defines the contract for webhook event data access
type WebhookEventStore interface {
	Create(ctx context.Context, event *model.WebhookEvent) error
	Get(ctx context.Context, serviceID, id int64) (*model.WebhookEvent, error)
	GetByID(ctx context.Context, id int64) (*model.WebhookEvent, error) // unscoped, worker only
	List(ctx context.Context, serviceID int64, filter EventFilter, limit, offset int32) ([]model.WebhookEvent, error)
	Count(ctx context.Context, serviceID int64, filter EventFilter) (int64, error)
	MarkDispatched(ctx context.Context, id int64) error
	ListUndispatched(ctx context.Context, createdBefore time.Time, limit int32) ([]model.WebhookEvent, error)
	DetachApproval(ctx context.Context, approvalID int64) error
}

// WebhookDeliveryStore defines the contract for delivery attempt data access
type WebhookDeliveryStore interface {
	Create(ctx context.Context, delivery *model.WebhookDelivery) error
	Complete(ctx context.Context, delivery *model.WebhookDelivery) error
	GetByID(ctx context.Context, id int64) (*model.WebhookDelivery, error)
	ListByRegistration(ctx context.Context, registrationID int64, limit, offset int32) ([]model.WebhookDelivery, error)
	CountByRegistration(ctx context.Context, registrationID int64) (int64, error)
	// LatestAttempt returns the highest attempt number recorded for the
	// registration and event, or 0 when there is none.
	LatestAttempt(ctx context.Context, registrationID, eventID int64) (int32, error)
	// ClaimDue returns failed deliveries whose retry time has passed and
	// clears their schedule so no other sweeper picks them up.
	ClaimDue(ctx context.Context, now time.Time, limit int32) ([]model.WebhookDelivery, error)
	Reschedule(ctx context.Context, id int64, at time.Time) error
	DeleteByRegistration(ctx context.Context, registrationID int64) error
}

// StatsStore defines the read-only aggregation queries
type StatsStore interface {
	ApprovalBreakdown(ctx context.Context, serviceID int64) ([]model.ApprovalCountRow, error)
	AverageCompletionSeconds(ctx context.Context, serviceID int64) (float64, error)
	RegistrationDeliveryCounts(ctx context.Context, registrationID int64, since time.Time) (model.DeliveryCounts, error)
	ServiceDeliveryCounts(ctx context.Context, serviceID int64, since time.Time) (model.DeliveryCounts, error)
}
