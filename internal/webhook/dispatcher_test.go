package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store/storetest"
	"basegraph.app/approvals/internal/webhook"
)

type capturedRequest struct {
	header http.Header
	body   []byte
}

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		db         *storetest.DB
		dispatcher *webhook.Dispatcher
		server     *httptest.Server
		handler    http.HandlerFunc
		mu         sync.Mutex
		received   []capturedRequest
		now        time.Time
		service    model.ServiceIdentity
		event      model.WebhookEvent
	)

	newRegistration := func(id int64, url string, retries int32, events ...model.EventType) *model.WebhookRegistration {
		reg := &model.WebhookRegistration{
			ID:             id,
			ServiceID:      service.ID,
			URL:            url,
			Events:         events,
			Secret:         "secret-" + strconv.FormatInt(id, 10),
			RetryCount:     retries,
			TimeoutSeconds: 5,
		}
		Expect(db.WebhookRegistrations().Create(ctx, reg)).To(Succeed())
		return reg
	}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		db = storetest.New()
		db.SetClock(func() time.Time { return now })
		received = nil

		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			received = append(received, capturedRequest{header: r.Header.Clone(), body: body})
			mu.Unlock()
			handler(w, r)
		}))

		service = model.ServiceIdentity{ID: 1, Name: "billing", SecretHash: "h", IsActive: true}
		Expect(db.ServiceIdentities().Create(ctx, &service)).To(Succeed())

		approvalID := int64(500)
		event = model.WebhookEvent{
			ID:         900,
			ServiceID:  service.ID,
			EventType:  model.EventTypeApprovalApproved,
			ApprovalID: &approvalID,
			Payload:    json.RawMessage(`{"status":"APPROVED"}`),
		}
		Expect(db.WebhookEvents().Create(ctx, &event)).To(Succeed())

		dispatcher = webhook.NewDispatcher(webhook.DispatcherDeps{
			Deliveries:    db.WebhookDeliveries(),
			Registrations: db.WebhookRegistrations(),
			Events:        db.WebhookEvents(),
			Services:      db.ServiceIdentities(),
			Client:        server.Client(),
		}, webhook.Config{RetryDelay: 5 * time.Minute}).WithClock(func() time.Time { return now })
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Attempt", func() {
		It("signs the exact bytes it sends and sets the delivery headers", func() {
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(received).To(HaveLen(1))
			req := received[0]
			Expect(webhook.Verify(reg.Secret, req.body, req.header.Get(webhook.HeaderSignature))).To(BeTrue())
			Expect(req.header.Get(webhook.HeaderSignature)).To(Equal(webhook.Sign(reg.Secret, req.body)))
			Expect(req.header.Get("Content-Type")).To(Equal("application/json"))
			Expect(req.header.Get("User-Agent")).To(Equal(webhook.DefaultUserAgent))
			Expect(req.header.Get(webhook.HeaderEvent)).To(Equal("approval.approved"))
			Expect(req.header.Get(webhook.HeaderID)).To(Equal("1"))
			Expect(req.header.Get(webhook.HeaderDelivery)).To(Equal(strconv.FormatInt(delivery.ID, 10)))
			Expect(req.header.Get(webhook.HeaderAttempt)).To(Equal("1"))

			expected, err := webhook.BuildPayload(&event, &service)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.body).To(Equal(expected))
		})

		It("records SUCCESS with delivered_at on a 2xx response", func() {
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(delivery.Status).To(Equal(model.DeliveryStatusSuccess))
			Expect(*delivery.ResponseCode).To(Equal(int32(200)))
			Expect(*delivery.ResponseBody).To(Equal("ok"))
			Expect(*delivery.DeliveredAt).To(Equal(now))
			Expect(delivery.NextRetryAt).To(BeNil())

			stored := db.AllDeliveries()
			Expect(stored).To(HaveLen(1))
			Expect(stored[0].Status).To(Equal(model.DeliveryStatusSuccess))
		})

		It("records FAILED and schedules a retry on a non-2xx response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("down"))
			}
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(delivery.Status).To(Equal(model.DeliveryStatusFailed))
			Expect(*delivery.ResponseCode).To(Equal(int32(503)))
			Expect(*delivery.ResponseBody).To(Equal("down"))
			Expect(delivery.DeliveredAt).To(BeNil())
			Expect(*delivery.NextRetryAt).To(Equal(now.Add(5 * time.Minute)))
		})

		It("records a redirect as FAILED without following it", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/landing" {
					w.WriteHeader(http.StatusOK)
					return
				}
				http.Redirect(w, r, "/landing", http.StatusFound)
			}
			reg := newRegistration(1, server.URL+"/hook", 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(delivery.Status).To(Equal(model.DeliveryStatusFailed))
			Expect(*delivery.ResponseCode).To(Equal(int32(http.StatusFound)))
			Expect(delivery.DeliveredAt).To(BeNil())
			Expect(*delivery.NextRetryAt).To(Equal(now.Add(5 * time.Minute)))
			Expect(received).To(HaveLen(1))

			// The injected client is left untouched.
			Expect(server.Client().CheckRedirect).To(BeNil())
		})

		It("stops scheduling retries once retry_count attempts have been made", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			var scheduled []bool
			for attempt := int32(1); attempt <= 3; attempt++ {
				delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
					Event: &event, Registration: reg, AttemptNumber: attempt, AllowRetry: true,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(delivery.AttemptCount).To(Equal(attempt))
				scheduled = append(scheduled, delivery.NextRetryAt != nil)
			}

			Expect(scheduled).To(Equal([]bool{true, true, false}))
			Expect(db.AllDeliveries()).To(HaveLen(3))
		})

		It("never schedules a retry when retries are disallowed", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: false,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(delivery.Status).To(Equal(model.DeliveryStatusFailed))
			Expect(delivery.NextRetryAt).To(BeNil())
		})

		It("caps the stored response body", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
			}
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*delivery.ResponseBody).To(HaveLen(webhook.MaxResponseSnippet))
		})

		It("treats a slow subscriber as a failed attempt once the timeout elapses", func() {
			release := make(chan struct{})
			handler = func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
				w.WriteHeader(http.StatusOK)
			}
			defer close(release)

			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)
			reg.TimeoutSeconds = 1

			started := time.Now()
			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(time.Since(started)).To(BeNumerically("<", 3*time.Second))
			Expect(delivery.Status).To(Equal(model.DeliveryStatusFailed))
			Expect(delivery.ResponseCode).To(BeNil())
			Expect(*delivery.ResponseBody).To(ContainSubstring("timed out"))
			Expect(delivery.NextRetryAt).NotTo(BeNil())
		})

		It("records a transport failure without returning an error", func() {
			reg := newRegistration(1, "http://127.0.0.1:1/unreachable", 1, model.EventTypeApprovalApproved)

			delivery, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(delivery.Status).To(Equal(model.DeliveryStatusFailed))
			Expect(delivery.ResponseCode).To(BeNil())
			Expect(*delivery.ResponseBody).NotTo(BeEmpty())
			Expect(delivery.NextRetryAt).To(BeNil())
		})

		It("returns storage errors", func() {
			reg := newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)
			db.FailNext("deliveries.create", errors.New("disk full"))

			_, err := dispatcher.Attempt(ctx, webhook.AttemptParams{
				Event: &event, Registration: reg, AttemptNumber: 1, AllowRetry: true,
			})
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(received).To(BeEmpty())
		})
	})

	Describe("Fanout", func() {
		It("delivers to every active subscribed registration and marks the event dispatched", func() {
			newRegistration(1, server.URL+"/a", 3, model.EventTypeApprovalApproved)
			newRegistration(2, server.URL+"/b", 3, model.EventTypeApprovalApproved, model.EventTypeApprovalRejected)
			newRegistration(3, server.URL+"/c", 3, model.EventTypeApprovalCreated)
			inactive := newRegistration(4, server.URL+"/d", 3, model.EventTypeApprovalApproved)
			inactive.IsActive = false
			Expect(db.WebhookRegistrations().Update(ctx, inactive)).To(Succeed())

			deliveries, err := dispatcher.Fanout(ctx, &event)
			Expect(err).NotTo(HaveOccurred())
			Expect(deliveries).To(HaveLen(2))

			var regIDs []int64
			for _, d := range deliveries {
				regIDs = append(regIDs, d.RegistrationID)
				Expect(d.Status).To(Equal(model.DeliveryStatusSuccess))
				Expect(d.AttemptCount).To(Equal(int32(1)))
			}
			Expect(regIDs).To(ConsistOf(int64(1), int64(2)))
			Expect(received).To(HaveLen(2))

			stored, err := db.WebhookEvents().GetByID(ctx, event.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.DispatchedAt).NotTo(BeNil())
		})

		It("marks the event dispatched even when no registration subscribes", func() {
			deliveries, err := dispatcher.Fanout(ctx, &event)
			Expect(err).NotTo(HaveOccurred())
			Expect(deliveries).To(BeEmpty())

			stored, _ := db.WebhookEvents().GetByID(ctx, event.ID)
			Expect(stored.DispatchedAt).NotTo(BeNil())
		})

		It("counts subscriber failures as dispatched", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}
			newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)

			deliveries, err := dispatcher.Fanout(ctx, &event)
			Expect(err).NotTo(HaveOccurred())
			Expect(deliveries[0].Status).To(Equal(model.DeliveryStatusFailed))

			stored, _ := db.WebhookEvents().GetByID(ctx, event.ID)
			Expect(stored.DispatchedAt).NotTo(BeNil())
		})

		It("leaves the event undispatched when a delivery row cannot be written", func() {
			newRegistration(1, server.URL, 3, model.EventTypeApprovalApproved)
			db.FailNext("deliveries.create", errors.New("db down"))

			_, err := dispatcher.Fanout(ctx, &event)
			Expect(err).To(HaveOccurred())

			stored, _ := db.WebhookEvents().GetByID(ctx, event.ID)
			Expect(stored.DispatchedAt).To(BeNil())
		})
	})
})
