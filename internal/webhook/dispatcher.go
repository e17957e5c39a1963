package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderEvent     = "X-Webhook-Event"
	HeaderID        = "X-Webhook-ID"
	HeaderDelivery  = "X-Webhook-Delivery"
	HeaderAttempt   = "X-Webhook-Attempt"

	// MaxResponseSnippet caps how much of a subscriber response is stored.
	MaxResponseSnippet = 1024

	DefaultRetryDelay = 5 * time.Minute
	DefaultUserAgent  = "approvals-webhook/1.0"
)

type Config struct {
	RetryDelay time.Duration
	UserAgent  string
}

// Dispatcher signs and POSTs events to subscriber URLs and records one
// delivery row per attempt. Subscriber failures are recorded, never returned.
type Dispatcher struct {
	deliveries    store.WebhookDeliveryStore
	registrations store.WebhookRegistrationStore
	events        store.WebhookEventStore
	services      store.ServiceIdentityStore
	client        *http.Client
	cfg           Config
	now           func() time.Time
	logger        *slog.Logger
}

type DispatcherDeps struct {
	Deliveries    store.WebhookDeliveryStore
	Registrations store.WebhookRegistrationStore
	Events        store.WebhookEventStore
	Services      store.ServiceIdentityStore
	// Client performs the POST. Its own Timeout should be zero; each attempt
	// is bounded by the registration timeout instead. Redirects are never
	// followed.
	Client *http.Client
	Logger *slog.Logger
}

func NewDispatcher(deps DispatcherDeps, cfg Config) *Dispatcher {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := &http.Client{}
	if deps.Client != nil {
		c := *deps.Client
		client = &c
	}
	// A 3xx is the subscriber's answer, not a hop to follow.
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		deliveries:    deps.Deliveries,
		registrations: deps.Registrations,
		events:        deps.Events,
		services:      deps.Services,
		client:        client,
		cfg:           cfg,
		now:           time.Now,
		logger:        log,
	}
}

// WithClock replaces the time source used for delivered_at and next_retry_at.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

type AttemptParams struct {
	Event        *model.WebhookEvent
	Registration *model.WebhookRegistration
	// Service is looked up from the event when nil.
	Service       *model.ServiceIdentity
	AttemptNumber int32
	// AllowRetry is false for diagnostic test sends.
	AllowRetry bool
}

// Attempt performs a single signed delivery. The returned error is only
// non-nil for storage failures; HTTP failures come back as a FAILED delivery.
func (d *Dispatcher) Attempt(ctx context.Context, p AttemptParams) (*model.WebhookDelivery, error) {
	if p.AttemptNumber <= 0 {
		p.AttemptNumber = 1
	}

	service := p.Service
	if service == nil {
		var err error
		service, err = d.services.GetByID(ctx, p.Event.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("loading service %d: %w", p.Event.ServiceID, err)
		}
	}

	body, err := BuildPayload(p.Event, service)
	if err != nil {
		return nil, err
	}

	delivery := &model.WebhookDelivery{
		ID:             id.New(),
		RegistrationID: p.Registration.ID,
		EventID:        p.Event.ID,
		Status:         model.DeliveryStatusPending,
		AttemptCount:   p.AttemptNumber,
	}
	if err := d.deliveries.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("creating delivery: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventID:        logger.Ptr(p.Event.ID),
		RegistrationID: logger.Ptr(p.Registration.ID),
		DeliveryID:     logger.Ptr(delivery.ID),
		EventType:      logger.Ptr(string(p.Event.EventType)),
	})

	code, snippet, sendErr := d.send(ctx, p.Registration, delivery, p.Event.EventType, body)

	now := d.now().UTC()
	delivery.ResponseBody = &snippet
	if code > 0 {
		delivery.ResponseCode = &code
	}

	if sendErr == nil && code >= 200 && code < 300 {
		delivery.Status = model.DeliveryStatusSuccess
		delivery.DeliveredAt = &now
	} else {
		delivery.Status = model.DeliveryStatusFailed
		if p.AllowRetry && p.AttemptNumber < p.Registration.RetryCount {
			next := now.Add(d.cfg.RetryDelay)
			delivery.NextRetryAt = &next
		}
	}

	if err := d.deliveries.Complete(ctx, delivery); err != nil {
		return nil, fmt.Errorf("completing delivery: %w", err)
	}

	if delivery.Status == model.DeliveryStatusSuccess {
		d.logger.InfoContext(ctx, "webhook delivered",
			"status_code", code,
			"attempt", p.AttemptNumber)
	} else {
		d.logger.WarnContext(ctx, "webhook delivery failed",
			"status_code", code,
			"attempt", p.AttemptNumber,
			"retry_scheduled", delivery.NextRetryAt != nil,
			"error", sendErr)
	}

	return delivery, nil
}

// send POSTs body to the registration URL and returns the status code (0 on
// transport failure) and a bounded snippet of the response or error text.
func (d *Dispatcher) send(ctx context.Context, reg *model.WebhookRegistration, delivery *model.WebhookDelivery, eventType model.EventType, body []byte) (int32, string, error) {
	sc := logger.StartSpan(ctx, "webhook.attempt",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("webhook.registration_id", reg.ID),
			attribute.Int64("webhook.delivery_id", delivery.ID),
			attribute.Int("webhook.attempt", int(delivery.AttemptCount)),
		))
	defer sc.End()

	ctx, cancel := context.WithTimeout(sc.Context(), reg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reg.URL, bytes.NewReader(body))
	if err != nil {
		sc.RecordError(err)
		return 0, truncate(err.Error()), err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set(HeaderSignature, Sign(reg.Secret, body))
	req.Header.Set(HeaderEvent, string(eventType))
	req.Header.Set(HeaderID, strconv.FormatInt(reg.ID, 10))
	req.Header.Set(HeaderDelivery, strconv.FormatInt(delivery.ID, 10))
	req.Header.Set(HeaderAttempt, strconv.Itoa(int(delivery.AttemptCount)))

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", reg.Timeout(), err)
		}
		sc.RecordError(err)
		return 0, truncate(err.Error()), err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSnippet))
	// Drain a little more so the connection can be reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 64<<10)

	sc.Span().SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return int32(resp.StatusCode), string(snippet), nil
}

// Fanout attempts delivery of event to every active registration of its
// service subscribed to its type, then marks the event dispatched.
func (d *Dispatcher) Fanout(ctx context.Context, event *model.WebhookEvent) ([]model.WebhookDelivery, error) {
	service, err := d.services.GetByID(ctx, event.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("loading service %d: %w", event.ServiceID, err)
	}

	regs, err := d.registrations.ListSubscribed(ctx, event.ServiceID, event.EventType)
	if err != nil {
		return nil, fmt.Errorf("listing subscribed registrations: %w", err)
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		deliveries = make([]model.WebhookDelivery, 0, len(regs))
		errs       []error
	)
	for i := range regs {
		reg := &regs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			delivery, err := d.Attempt(ctx, AttemptParams{
				Event:         event,
				Registration:  reg,
				Service:       service,
				AttemptNumber: 1,
				AllowRetry:    true,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("registration %d: %w", reg.ID, err))
				return
			}
			deliveries = append(deliveries, *delivery)
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		return deliveries, errors.Join(errs...)
	}

	if err := d.events.MarkDispatched(ctx, event.ID); err != nil {
		return deliveries, fmt.Errorf("marking event dispatched: %w", err)
	}
	return deliveries, nil
}

func truncate(s string) string {
	if len(s) <= MaxResponseSnippet {
		return s
	}
	return s[:MaxResponseSnippet]
}
