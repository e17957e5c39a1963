package handler_test

import (
	"context"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/middleware"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
)

const testServiceID = int64(7)

// asService stands in for RequireService in handler tests.
func asService() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := &service.AuthContext{ServiceID: testServiceID, ServiceName: "billing", Permissions: []model.Permission{model.PermissionAll}}
		c.Request = c.Request.WithContext(middleware.WithAuth(c.Request.Context(), auth))
		c.Next()
	}
}

type mockApprovalService struct {
	createFn    func(ctx context.Context, serviceID int64, params service.CreateApprovalParams) (*model.Approval, error)
	getFn       func(ctx context.Context, serviceID, approvalID int64) (*model.Approval, error)
	listFn      func(ctx context.Context, serviceID int64, filter store.ApprovalFilter, page service.Page) ([]model.Approval, int64, error)
	decisionsFn func(ctx context.Context, serviceID, approvalID int64) ([]model.Decision, error)
	approveFn   func(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error)
	rejectFn    func(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error)
	cancelFn    func(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error)
	updateFn    func(ctx context.Context, serviceID, approvalID int64, params service.UpdateApprovalParams) (*model.Approval, error)
	deleteFn    func(ctx context.Context, serviceID, approvalID int64) error
}

func (m *mockApprovalService) Create(ctx context.Context, serviceID int64, params service.CreateApprovalParams) (*model.Approval, error) {
	if m.createFn != nil {
		return m.createFn(ctx, serviceID, params)
	}
	return nil, nil
}

func (m *mockApprovalService) Get(ctx context.Context, serviceID, approvalID int64) (*model.Approval, error) {
	if m.getFn != nil {
		return m.getFn(ctx, serviceID, approvalID)
	}
	return nil, nil
}

func (m *mockApprovalService) List(ctx context.Context, serviceID int64, filter store.ApprovalFilter, page service.Page) ([]model.Approval, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, serviceID, filter, page)
	}
	return nil, 0, nil
}

func (m *mockApprovalService) Decisions(ctx context.Context, serviceID, approvalID int64) ([]model.Decision, error) {
	if m.decisionsFn != nil {
		return m.decisionsFn(ctx, serviceID, approvalID)
	}
	return []model.Decision{}, nil
}

func (m *mockApprovalService) Approve(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error) {
	if m.approveFn != nil {
		return m.approveFn(ctx, serviceID, approvalID, params)
	}
	return nil, nil
}

func (m *mockApprovalService) Reject(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error) {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, serviceID, approvalID, params)
	}
	return nil, nil
}

func (m *mockApprovalService) Cancel(ctx context.Context, serviceID, approvalID int64, params service.TransitionParams) (*model.Approval, error) {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, serviceID, approvalID, params)
	}
	return nil, nil
}

func (m *mockApprovalService) Update(ctx context.Context, serviceID, approvalID int64, params service.UpdateApprovalParams) (*model.Approval, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, serviceID, approvalID, params)
	}
	return nil, nil
}

func (m *mockApprovalService) Delete(ctx context.Context, serviceID, approvalID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, serviceID, approvalID)
	}
	return nil
}

type mockWebhookService struct {
	registerFn   func(ctx context.Context, serviceID int64, params service.RegisterWebhookParams) (*model.WebhookRegistration, error)
	getFn        func(ctx context.Context, serviceID, registrationID int64) (*model.WebhookRegistration, error)
	listFn       func(ctx context.Context, serviceID int64, page service.Page) ([]model.WebhookRegistration, int64, error)
	updateFn     func(ctx context.Context, serviceID, registrationID int64, params service.UpdateWebhookParams) (*model.WebhookRegistration, error)
	deleteFn     func(ctx context.Context, serviceID, registrationID int64) error
	deliveriesFn func(ctx context.Context, serviceID, registrationID int64, page service.Page) ([]model.WebhookDelivery, int64, error)
	testFn       func(ctx context.Context, serviceID, registrationID int64) (*model.WebhookDelivery, error)
}

func (m *mockWebhookService) Register(ctx context.Context, serviceID int64, params service.RegisterWebhookParams) (*model.WebhookRegistration, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, serviceID, params)
	}
	return nil, nil
}

func (m *mockWebhookService) Get(ctx context.Context, serviceID, registrationID int64) (*model.WebhookRegistration, error) {
	if m.getFn != nil {
		return m.getFn(ctx, serviceID, registrationID)
	}
	return nil, nil
}

func (m *mockWebhookService) List(ctx context.Context, serviceID int64, page service.Page) ([]model.WebhookRegistration, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, serviceID, page)
	}
	return nil, 0, nil
}

func (m *mockWebhookService) Update(ctx context.Context, serviceID, registrationID int64, params service.UpdateWebhookParams) (*model.WebhookRegistration, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, serviceID, registrationID, params)
	}
	return nil, nil
}

func (m *mockWebhookService) Delete(ctx context.Context, serviceID, registrationID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, serviceID, registrationID)
	}
	return nil
}

func (m *mockWebhookService) Deliveries(ctx context.Context, serviceID, registrationID int64, page service.Page) ([]model.WebhookDelivery, int64, error) {
	if m.deliveriesFn != nil {
		return m.deliveriesFn(ctx, serviceID, registrationID, page)
	}
	return nil, 0, nil
}

func (m *mockWebhookService) Test(ctx context.Context, serviceID, registrationID int64) (*model.WebhookDelivery, error) {
	if m.testFn != nil {
		return m.testFn(ctx, serviceID, registrationID)
	}
	return nil, nil
}

type mockStatsService struct {
	deliveryStatsFn func(ctx context.Context, serviceID, registrationID int64, days int) (*model.DeliveryStats, error)
	approvalStatsFn func(ctx context.Context, serviceID int64) (*model.ApprovalStats, error)
}

func (m *mockStatsService) DeliveryStats(ctx context.Context, serviceID, registrationID int64, days int) (*model.DeliveryStats, error) {
	if m.deliveryStatsFn != nil {
		return m.deliveryStatsFn(ctx, serviceID, registrationID, days)
	}
	return nil, nil
}

func (m *mockStatsService) ApprovalStats(ctx context.Context, serviceID int64) (*model.ApprovalStats, error) {
	if m.approvalStatsFn != nil {
		return m.approvalStatsFn(ctx, serviceID)
	}
	return nil, nil
}

type mockEventService struct {
	createFn func(ctx context.Context, serviceID int64, params service.CreateEventParams) (*model.WebhookEvent, error)
	getFn    func(ctx context.Context, serviceID, eventID int64) (*model.WebhookEvent, error)
	listFn   func(ctx context.Context, serviceID int64, filter store.EventFilter, page service.Page) ([]model.WebhookEvent, int64, error)
}

func (m *mockEventService) Create(ctx context.Context, serviceID int64, params service.CreateEventParams) (*model.WebhookEvent, error) {
	if m.createFn != nil {
		return m.createFn(ctx, serviceID, params)
	}
	return nil, nil
}

func (m *mockEventService) Get(ctx context.Context, serviceID, eventID int64) (*model.WebhookEvent, error) {
	if m.getFn != nil {
		return m.getFn(ctx, serviceID, eventID)
	}
	return nil, nil
}

func (m *mockEventService) List(ctx context.Context, serviceID int64, filter store.EventFilter, page service.Page) ([]model.WebhookEvent, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, serviceID, filter, page)
	}
	return nil, 0, nil
}

type mockServiceIdentityService struct {
	createFn     func(ctx context.Context, params service.CreateServiceIdentityParams) (*model.ServiceIdentity, string, error)
	deactivateFn func(ctx context.Context, serviceID int64) (*model.ServiceIdentity, error)
}

func (m *mockServiceIdentityService) Create(ctx context.Context, params service.CreateServiceIdentityParams) (*model.ServiceIdentity, string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, "", nil
}

func (m *mockServiceIdentityService) Deactivate(ctx context.Context, serviceID int64) (*model.ServiceIdentity, error) {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, serviceID)
	}
	return nil, nil
}
