package webhook_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/webhook"
)

var _ = Describe("Sign", func() {
	It("produces the known HMAC-SHA256 hex digest", func() {
		// RFC 4231 test case 2.
		Expect(webhook.Sign("Jefe", []byte("what do ya want for nothing?"))).
			To(Equal("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"))
	})

	It("verifies its own signatures and rejects tampering", func() {
		body := []byte(`{"id":1}`)
		sig := webhook.Sign("s3cret", body)

		Expect(webhook.Verify("s3cret", body, sig)).To(BeTrue())
		Expect(webhook.Verify("other", body, sig)).To(BeFalse())
		Expect(webhook.Verify("s3cret", []byte(`{"id":2}`), sig)).To(BeFalse())
		Expect(webhook.Verify("s3cret", body, "not-hex")).To(BeFalse())
	})

	It("generates distinct 64 character secrets", func() {
		a, err := webhook.NewSecret()
		Expect(err).NotTo(HaveOccurred())
		b, err := webhook.NewSecret()
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(HaveLen(64))
		Expect(a).NotTo(Equal(b))
	})
})

var _ = Describe("BuildPayload", func() {
	var (
		event   *model.WebhookEvent
		service *model.ServiceIdentity
	)

	BeforeEach(func() {
		approvalID := int64(77)
		event = &model.WebhookEvent{
			ID:         10,
			ServiceID:  1,
			EventType:  model.EventTypeApprovalCreated,
			ApprovalID: &approvalID,
			Payload:    json.RawMessage(`{"title":"Expense"}`),
			CreatedAt:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("X", 3600)),
		}
		service = &model.ServiceIdentity{ID: 1, Name: "billing"}
	})

	It("renders the envelope with a UTC timestamp from the event", func() {
		body, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(MatchJSON(`{
			"id": 10,
			"event": "approval.created",
			"service_id": 1,
			"service_name": "billing",
			"approval_id": 77,
			"timestamp": "2025-03-01T08:30:00Z",
			"data": {"title": "Expense"}
		}`))
	})

	It("is byte-stable across calls", func() {
		first, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())
		second, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("keeps approval_id from the snapshot once the approval is detached", func() {
		event.Payload = json.RawMessage(`{"approval":{"id":77,"status":"PENDING"}}`)
		linked, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())

		event.ApprovalID = nil
		detached, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())
		Expect(detached).To(Equal(linked))
	})

	It("substitutes an empty object for a missing payload", func() {
		event.Payload = nil
		event.ApprovalID = nil
		body, err := webhook.BuildPayload(event, service)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(body, &decoded)).To(Succeed())
		Expect(decoded).NotTo(HaveKey("approval_id"))
		Expect(decoded["data"]).To(Equal(map[string]any{}))
	})
})

var _ = Describe("PayloadSchema", func() {
	It("describes every envelope field", func() {
		schema := webhook.PayloadSchema()
		Expect(schema).NotTo(BeNil())
		Expect(schema.Title).To(Equal("Approval webhook payload"))

		for _, field := range []string{"id", "event", "service_id", "service_name", "timestamp", "data"} {
			_, ok := schema.Properties.Get(field)
			Expect(ok).To(BeTrue(), field)
		}
		Expect(schema.Required).NotTo(ContainElement("approval_id"))
	})
})
