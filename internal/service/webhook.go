package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/webhook"
)

const (
	DefaultWebhookRetryCount = 3
	DefaultWebhookTimeout    = 30
	MinWebhookTimeout        = 5
	MaxWebhookTimeout        = 300
	MaxWebhookRetryCount     = 10
)

type RegisterWebhookParams struct {
	URL            string
	Events         []model.EventType
	RetryCount     *int32
	TimeoutSeconds *int32
}

// UpdateWebhookParams changes a registration; nil or empty leaves a field as
// is. The signing secret never changes.
type UpdateWebhookParams struct {
	URL            *string
	Events         []model.EventType
	RetryCount     *int32
	TimeoutSeconds *int32
	IsActive       *bool
}

// Attempter performs a single webhook delivery attempt.
type Attempter interface {
	Attempt(ctx context.Context, p webhook.AttemptParams) (*model.WebhookDelivery, error)
}

type WebhookService interface {
	// Register returns the registration with its Secret populated. It is the
	// only time the secret is handed out.
	Register(ctx context.Context, serviceID int64, params RegisterWebhookParams) (*model.WebhookRegistration, error)
	Get(ctx context.Context, serviceID, registrationID int64) (*model.WebhookRegistration, error)
	List(ctx context.Context, serviceID int64, page Page) ([]model.WebhookRegistration, int64, error)
	Update(ctx context.Context, serviceID, registrationID int64, params UpdateWebhookParams) (*model.WebhookRegistration, error)
	Delete(ctx context.Context, serviceID, registrationID int64) error
	Deliveries(ctx context.Context, serviceID, registrationID int64, page Page) ([]model.WebhookDelivery, int64, error)
	// Test sends one synthetic approval.created event to the registration
	// and reports the raw outcome. It never schedules a retry.
	Test(ctx context.Context, serviceID, registrationID int64) (*model.WebhookDelivery, error)
}

type webhookService struct {
	stores     StoreProvider
	txRunner   TxRunner
	dispatcher Attempter
	now        func() time.Time
	logger     *slog.Logger
}

func NewWebhookService(stores StoreProvider, txRunner TxRunner, dispatcher Attempter, logger *slog.Logger) WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &webhookService{
		stores:     stores,
		txRunner:   txRunner,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *webhookService) Register(ctx context.Context, serviceID int64, params RegisterWebhookParams) (*model.WebhookRegistration, error) {
	if err := validateWebhookURL(params.URL); err != nil {
		return nil, err
	}
	events, err := validateEvents(params.Events)
	if err != nil {
		return nil, err
	}

	retryCount := int32(DefaultWebhookRetryCount)
	if params.RetryCount != nil {
		retryCount = *params.RetryCount
	}
	timeout := int32(DefaultWebhookTimeout)
	if params.TimeoutSeconds != nil {
		timeout = *params.TimeoutSeconds
	}
	if err := validateDeliveryLimits(retryCount, timeout); err != nil {
		return nil, err
	}

	secret, err := webhook.NewSecret()
	if err != nil {
		return nil, err
	}

	reg := &model.WebhookRegistration{
		ID:             id.New(),
		ServiceID:      serviceID,
		URL:            params.URL,
		Events:         events,
		Secret:         secret,
		RetryCount:     retryCount,
		TimeoutSeconds: timeout,
		IsActive:       true,
	}
	if err := s.stores.WebhookRegistrations().Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("creating webhook registration: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, RegistrationID: &reg.ID})
	s.logger.InfoContext(ctx, "webhook registered", "url", reg.URL, "events", reg.Events)
	return reg, nil
}

func (s *webhookService) Get(ctx context.Context, serviceID, registrationID int64) (*model.WebhookRegistration, error) {
	reg, err := s.stores.WebhookRegistrations().Get(ctx, serviceID, registrationID)
	if err != nil {
		return nil, fromStore(err, "getting webhook registration")
	}
	return reg, nil
}

func (s *webhookService) List(ctx context.Context, serviceID int64, page Page) ([]model.WebhookRegistration, int64, error) {
	regs, err := s.stores.WebhookRegistrations().List(ctx, serviceID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing webhook registrations: %w", err)
	}
	total, err := s.stores.WebhookRegistrations().Count(ctx, serviceID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting webhook registrations: %w", err)
	}
	return regs, total, nil
}

func (s *webhookService) Update(ctx context.Context, serviceID, registrationID int64, params UpdateWebhookParams) (*model.WebhookRegistration, error) {
	reg, err := s.stores.WebhookRegistrations().Get(ctx, serviceID, registrationID)
	if err != nil {
		return nil, fromStore(err, "getting webhook registration")
	}

	if params.URL != nil {
		if err := validateWebhookURL(*params.URL); err != nil {
			return nil, err
		}
		reg.URL = *params.URL
	}
	if params.Events != nil {
		events, err := validateEvents(params.Events)
		if err != nil {
			return nil, err
		}
		reg.Events = events
	}
	if params.RetryCount != nil {
		reg.RetryCount = *params.RetryCount
	}
	if params.TimeoutSeconds != nil {
		reg.TimeoutSeconds = *params.TimeoutSeconds
	}
	if params.IsActive != nil {
		reg.IsActive = *params.IsActive
	}
	if err := validateDeliveryLimits(reg.RetryCount, reg.TimeoutSeconds); err != nil {
		return nil, err
	}

	if err := s.stores.WebhookRegistrations().Update(ctx, reg); err != nil {
		return nil, fromStore(err, "updating webhook registration")
	}
	return reg, nil
}

// Delete removes the registration and its delivery history.
func (s *webhookService) Delete(ctx context.Context, serviceID, registrationID int64) error {
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := sp.WebhookRegistrations().Get(ctx, serviceID, registrationID); err != nil {
			return fromStore(err, "getting webhook registration")
		}
		if err := sp.WebhookDeliveries().DeleteByRegistration(ctx, registrationID); err != nil {
			return fmt.Errorf("deleting deliveries: %w", err)
		}
		if err := sp.WebhookRegistrations().Delete(ctx, serviceID, registrationID); err != nil {
			return fromStore(err, "deleting webhook registration")
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceID: &serviceID, RegistrationID: &registrationID})
	s.logger.InfoContext(ctx, "webhook registration deleted")
	return nil
}

func (s *webhookService) Deliveries(ctx context.Context, serviceID, registrationID int64, page Page) ([]model.WebhookDelivery, int64, error) {
	if _, err := s.stores.WebhookRegistrations().Get(ctx, serviceID, registrationID); err != nil {
		return nil, 0, fromStore(err, "getting webhook registration")
	}
	deliveries, err := s.stores.WebhookDeliveries().ListByRegistration(ctx, registrationID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing deliveries: %w", err)
	}
	total, err := s.stores.WebhookDeliveries().CountByRegistration(ctx, registrationID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting deliveries: %w", err)
	}
	return deliveries, total, nil
}

func (s *webhookService) Test(ctx context.Context, serviceID, registrationID int64) (*model.WebhookDelivery, error) {
	reg, err := s.stores.WebhookRegistrations().Get(ctx, serviceID, registrationID)
	if err != nil {
		return nil, fromStore(err, "getting webhook registration")
	}

	payload, err := json.Marshal(map[string]any{
		"test":    true,
		"message": "This is a test webhook delivery",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal test payload: %w", err)
	}

	// Stored as already dispatched so the worker never fans it out.
	dispatchedAt := s.now().UTC()
	event := &model.WebhookEvent{
		ID:           id.New(),
		ServiceID:    serviceID,
		EventType:    model.EventTypeApprovalCreated,
		Payload:      payload,
		DispatchedAt: &dispatchedAt,
	}
	if err := s.stores.WebhookEvents().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("creating test event: %w", err)
	}

	delivery, err := s.dispatcher.Attempt(ctx, webhook.AttemptParams{
		Event:         event,
		Registration:  reg,
		AttemptNumber: 1,
		AllowRetry:    false,
	})
	if err != nil {
		return nil, fmt.Errorf("sending test webhook: %w", err)
	}
	return delivery, nil
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return invalidf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalidf("url is not valid: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalidf("url must use http or https")
	}
	if u.Host == "" {
		return invalidf("url must include a host")
	}
	return nil
}

// validateEvents checks every type against the closed set and drops duplicates.
func validateEvents(events []model.EventType) ([]model.EventType, error) {
	if len(events) == 0 {
		return nil, invalidf("at least one event type is required")
	}
	out := make([]model.EventType, 0, len(events))
	for _, e := range events {
		if !e.IsValid() {
			return nil, invalidf("unknown event type %q", e)
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func validateDeliveryLimits(retryCount, timeoutSeconds int32) error {
	if retryCount < 0 || retryCount > MaxWebhookRetryCount {
		return invalidf("retry_count must be between 0 and %d", MaxWebhookRetryCount)
	}
	if timeoutSeconds < MinWebhookTimeout || timeoutSeconds > MaxWebhookTimeout {
		return invalidf("timeout_seconds must be between %d and %d", MinWebhookTimeout, MaxWebhookTimeout)
	}
	return nil
}
