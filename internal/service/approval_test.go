package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
	"basegraph.app/approvals/internal/store/storetest"
)

var _ = Describe("ApprovalService", func() {
	const serviceID = int64(1)

	var (
		ctx      context.Context
		db       *storetest.DB
		producer *fakeProducer
		resolver mockResolver
		svc      service.ApprovalService
	)

	twoLevels := func() service.CreateApprovalParams {
		return service.CreateApprovalParams{
			Type:  model.ApprovalTypeDocument,
			Title: "Q3 budget",
			Approvers: []model.Approver{
				{UserID: "u1", Level: 1},
				{UserID: "u2", Level: 2},
			},
		}
	}

	create := func(params service.CreateApprovalParams) *model.Approval {
		approval, err := svc.Create(ctx, serviceID, params)
		Expect(err).NotTo(HaveOccurred())
		return approval
	}

	eventTypes := func() []model.EventType {
		var out []model.EventType
		for _, e := range db.AllEvents() {
			out = append(out, e.EventType)
		}
		return out
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = storetest.New()
		producer = &fakeProducer{}
		resolver = mockResolver{known: map[string]bool{"u1": true, "u2": true, "u3": true}}
		svc = service.NewApprovalService(db, memTx{db: db}, producer, resolver, nil)
	})

	Describe("Create", func() {
		It("persists the approval at level 1 with one pending decision per level", func() {
			params := twoLevels()
			params.Approvers = []model.Approver{
				{UserID: "u2", Level: 2},
				{UserID: "u1", Level: 1},
			}

			approval := create(params)

			Expect(approval.Status).To(Equal(model.ApprovalStatusPending))
			Expect(approval.CurrentLevel).To(Equal(int32(1)))
			Expect(approval.TotalLevels).To(Equal(int32(2)))
			Expect(approval.Priority).To(Equal(model.PriorityNormal))
			Expect(approval.Urgency).To(Equal(model.UrgencyNormal))
			Expect(approval.Approvers[0].UserID).To(Equal("u1"))
			Expect(approval.Approvers[1].UserID).To(Equal("u2"))

			decisions := db.AllDecisions(approval.ID)
			Expect(decisions).To(HaveLen(2))
			for i, d := range decisions {
				Expect(d.Level).To(Equal(int32(i + 1)))
				Expect(d.Decision).To(Equal(model.DecisionStatusPending))
			}
		})

		It("records and enqueues an approval.created event", func() {
			approval := create(twoLevels())

			events := db.AllEvents()
			Expect(events).To(HaveLen(1))
			Expect(events[0].EventType).To(Equal(model.EventTypeApprovalCreated))
			Expect(*events[0].ApprovalID).To(Equal(approval.ID))

			var data map[string]any
			Expect(json.Unmarshal(events[0].Payload, &data)).To(Succeed())
			Expect(data).To(HaveKey("approval"))
			Expect(data).NotTo(HaveKey("decision"))

			tasks := producer.Tasks()
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].TaskType).To(Equal(queue.TaskTypeEventDispatch))
			Expect(tasks[0].EventID).To(Equal(events[0].ID))
		})

		It("still succeeds when the queue is unavailable", func() {
			producer.err = errors.New("redis down")

			approval := create(twoLevels())

			Expect(approval.ID).NotTo(BeZero())
			Expect(db.AllEvents()).To(HaveLen(1))
			Expect(db.AllEvents()[0].DispatchedAt).To(BeNil())
		})

		DescribeTable("rejects invalid input",
			func(mutate func(*service.CreateApprovalParams)) {
				params := twoLevels()
				mutate(&params)

				_, err := svc.Create(ctx, serviceID, params)

				Expect(err).To(MatchError(service.ErrInvalidInput))
				Expect(db.AllApprovals()).To(BeEmpty())
				Expect(db.AllEvents()).To(BeEmpty())
			},
			Entry("blank title", func(p *service.CreateApprovalParams) { p.Title = "   " }),
			Entry("unknown type", func(p *service.CreateApprovalParams) { p.Type = "MEMO" }),
			Entry("no approvers", func(p *service.CreateApprovalParams) { p.Approvers = nil }),
			Entry("blank approver id", func(p *service.CreateApprovalParams) { p.Approvers[0].UserID = "" }),
			Entry("unknown approver", func(p *service.CreateApprovalParams) { p.Approvers[1].UserID = "ghost" }),
			Entry("gap in levels", func(p *service.CreateApprovalParams) { p.Approvers[1].Level = 3 }),
			Entry("duplicate levels", func(p *service.CreateApprovalParams) { p.Approvers[1].Level = 1 }),
			Entry("levels not starting at 1", func(p *service.CreateApprovalParams) {
				p.Approvers[0].Level = 2
				p.Approvers[1].Level = 3
			}),
			Entry("bad priority", func(p *service.CreateApprovalParams) { p.Priority = ptr(model.Priority("CRITICAL")) }),
			Entry("bad urgency", func(p *service.CreateApprovalParams) { p.Urgency = ptr(model.Urgency("NOW")) }),
		)

		It("surfaces directory outages as internal errors", func() {
			resolver.err = errors.New("directory timeout")
			svc = service.NewApprovalService(db, memTx{db: db}, producer, resolver, nil)

			_, err := svc.Create(ctx, serviceID, twoLevels())

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeFalse())
		})

		It("rolls the approval back when a decision insert fails", func() {
			db.FailNext("decisions.create", errors.New("disk full"))

			_, err := svc.Create(ctx, serviceID, twoLevels())

			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(db.AllApprovals()).To(BeEmpty())
			Expect(db.AllEvents()).To(BeEmpty())
			Expect(producer.Tasks()).To(BeEmpty())
		})
	})

	Describe("Approve", func() {
		It("walks the two level scenario to completion", func() {
			approval := create(twoLevels())

			approval, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{UserID: ptr("u1")})
			Expect(err).NotTo(HaveOccurred())
			Expect(approval.Status).To(Equal(model.ApprovalStatusPending))
			Expect(approval.CurrentLevel).To(Equal(int32(2)))
			Expect(approval.CompletedAt).To(BeNil())

			approval, err = svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{UserID: ptr("u2"), Comment: ptr("ok")})
			Expect(err).NotTo(HaveOccurred())
			Expect(approval.Status).To(Equal(model.ApprovalStatusApproved))
			Expect(approval.CurrentLevel).To(Equal(int32(3)))
			Expect(approval.CompletedAt).NotTo(BeNil())

			decisions := db.AllDecisions(approval.ID)
			Expect(decisions[0].Decision).To(Equal(model.DecisionStatusApproved))
			Expect(decisions[1].Decision).To(Equal(model.DecisionStatusApproved))
			Expect(*decisions[1].Comment).To(Equal("ok"))
			Expect(decisions[1].DecidedAt).NotTo(BeNil())

			_, err = svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).To(MatchError(service.ErrConflict))
			_, err = svc.Reject(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).To(MatchError(service.ErrConflict))

			Expect(eventTypes()).To(ConsistOf(
				model.EventTypeApprovalCreated,
				model.EventTypeApprovalUpdated,
				model.EventTypeApprovalApproved,
			))
			Expect(producer.Tasks()).To(HaveLen(3))
		})

		It("includes the recorded decision in the event payload", func() {
			approval := create(twoLevels())

			_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).NotTo(HaveOccurred())

			events := db.AllEvents()
			var data struct {
				Approval model.Approval `json:"approval"`
				Decision model.Decision `json:"decision"`
			}
			Expect(json.Unmarshal(events[len(events)-1].Payload, &data)).To(Succeed())
			Expect(data.Approval.CurrentLevel).To(Equal(int32(2)))
			Expect(data.Decision.Level).To(Equal(int32(1)))
			Expect(data.Decision.Decision).To(Equal(model.DecisionStatusApproved))
		})

		It("rejects a caller who is not the current approver", func() {
			approval := create(twoLevels())

			_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{UserID: ptr("u2")})

			Expect(err).To(MatchError(service.ErrForbidden))
			Expect(db.AllDecisions(approval.ID)[0].Decision).To(Equal(model.DecisionStatusPending))
		})

		It("rejects a stale level with a conflict", func() {
			approval := create(twoLevels())
			_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{Level: ptr(int32(1))})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{Level: ptr(int32(1))})

			Expect(err).To(MatchError(service.ErrConflict))
			got, err := svc.Get(ctx, serviceID, approval.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CurrentLevel).To(Equal(int32(2)))
		})

		It("hides approvals owned by another service", func() {
			approval := create(twoLevels())

			_, err := svc.Approve(ctx, serviceID+1, approval.ID, service.TransitionParams{})

			Expect(err).To(MatchError(service.ErrNotFound))
		})

		It("lets exactly one of two racing callers advance a level", func() {
			approval := create(twoLevels())

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				errs   []error
				starts = make(chan struct{})
			)
			for range 2 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					<-starts
					_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{
						UserID: ptr("u1"),
						Level:  ptr(int32(1)),
					})
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}()
			}
			close(starts)
			wg.Wait()

			var ok, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, service.ErrConflict):
					conflicts++
				}
			}
			Expect(ok).To(Equal(1))
			Expect(conflicts).To(Equal(1))

			got, err := svc.Get(ctx, serviceID, approval.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CurrentLevel).To(Equal(int32(2)))
			Expect(got.Status).To(Equal(model.ApprovalStatusPending))
			Expect(db.AllDecisions(approval.ID)[1].Decision).To(Equal(model.DecisionStatusPending))
		})

		It("rolls back the advance when recording the decision fails", func() {
			approval := create(twoLevels())
			db.FailNext("decisions.record", errors.New("lost connection"))

			_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{})

			Expect(err).To(HaveOccurred())
			got, err := svc.Get(ctx, serviceID, approval.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CurrentLevel).To(Equal(int32(1)))
			Expect(eventTypes()).To(Equal([]model.EventType{model.EventTypeApprovalCreated}))
		})
	})

	Describe("Reject", func() {
		It("short-circuits the workflow at any level", func() {
			params := twoLevels()
			params.Approvers = append(params.Approvers, model.Approver{UserID: "u3", Level: 3})
			approval := create(params)

			approval, err := svc.Reject(ctx, serviceID, approval.ID, service.TransitionParams{Comment: ptr("over budget")})

			Expect(err).NotTo(HaveOccurred())
			Expect(approval.Status).To(Equal(model.ApprovalStatusRejected))
			Expect(approval.CurrentLevel).To(Equal(int32(1)))
			Expect(approval.CompletedAt).NotTo(BeNil())

			decisions := db.AllDecisions(approval.ID)
			Expect(decisions[0].Decision).To(Equal(model.DecisionStatusRejected))
			Expect(decisions[1].Decision).To(Equal(model.DecisionStatusPending))
			Expect(decisions[2].Decision).To(Equal(model.DecisionStatusPending))
			Expect(eventTypes()).To(ContainElement(model.EventTypeApprovalRejected))
		})
	})

	Describe("Cancel", func() {
		It("annotates the current decision without deciding it", func() {
			approval := create(twoLevels())

			approval, err := svc.Cancel(ctx, serviceID, approval.ID, service.TransitionParams{Comment: ptr("withdrawn")})

			Expect(err).NotTo(HaveOccurred())
			Expect(approval.Status).To(Equal(model.ApprovalStatusCancelled))
			Expect(approval.CompletedAt).NotTo(BeNil())

			d := db.AllDecisions(approval.ID)[0]
			Expect(d.Decision).To(Equal(model.DecisionStatusPending))
			Expect(*d.Comment).To(Equal("withdrawn"))
			Expect(d.DecidedAt).To(BeNil())
			Expect(eventTypes()).To(ContainElement(model.EventTypeApprovalCancelled))
		})

		It("is refused once the approval is terminal", func() {
			approval := create(twoLevels())
			_, err := svc.Reject(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Cancel(ctx, serviceID, approval.ID, service.TransitionParams{})

			Expect(err).To(MatchError(ContainSubstring("already completed with status REJECTED")))
			Expect(err).To(MatchError(service.ErrConflict))
		})
	})

	Describe("Update", func() {
		It("changes descriptive fields and emits approval.updated", func() {
			approval := create(twoLevels())

			updated, err := svc.Update(ctx, serviceID, approval.ID, service.UpdateApprovalParams{
				Title:    ptr("Q3 budget v2"),
				Priority: ptr(model.PriorityHigh),
				Metadata: map[string]any{"cost_center": "42"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Q3 budget v2"))
			Expect(updated.Priority).To(Equal(model.PriorityHigh))
			Expect(updated.Metadata).To(HaveKeyWithValue("cost_center", "42"))
			Expect(updated.Urgency).To(Equal(model.UrgencyNormal))
			Expect(eventTypes()).To(ContainElement(model.EventTypeApprovalUpdated))
		})

		It("is allowed after the approval completed and leaves the status alone", func() {
			approval := create(twoLevels())
			_, err := svc.Reject(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.Update(ctx, serviceID, approval.ID, service.UpdateApprovalParams{Title: ptr("archived")})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(model.ApprovalStatusRejected))
			Expect(updated.Title).To(Equal("archived"))
		})

		It("rejects a blank title", func() {
			approval := create(twoLevels())

			_, err := svc.Update(ctx, serviceID, approval.ID, service.UpdateApprovalParams{Title: ptr(" ")})

			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Delete", func() {
		It("removes decisions and keeps events without the link", func() {
			approval := create(twoLevels())
			_, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Delete(ctx, serviceID, approval.ID)).To(Succeed())

			Expect(db.AllApprovals()).To(BeEmpty())
			Expect(db.AllDecisions(approval.ID)).To(BeEmpty())
			events := db.AllEvents()
			Expect(events).To(HaveLen(2))
			for _, e := range events {
				Expect(e.ApprovalID).To(BeNil())
			}
		})

		It("returns not found for unknown approvals", func() {
			Expect(svc.Delete(ctx, serviceID, 999)).To(MatchError(service.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("filters by status and reports the total", func() {
			for range 3 {
				create(twoLevels())
			}
			rejected := create(twoLevels())
			_, err := svc.Reject(ctx, serviceID, rejected.ID, service.TransitionParams{})
			Expect(err).NotTo(HaveOccurred())

			status := model.ApprovalStatusPending
			items, total, err := svc.List(ctx, serviceID, store.ApprovalFilter{Status: &status}, service.NewPage(2, 0))

			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(total).To(Equal(int64(3)))
		})

		It("rejects an unknown status filter", func() {
			status := model.ApprovalStatus("DONE")

			_, _, err := svc.List(ctx, serviceID, store.ApprovalFilter{Status: &status}, service.NewPage(0, 0))

			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Decisions", func() {
		It("lists decisions in level order for the owner only", func() {
			approval := create(twoLevels())

			decisions, err := svc.Decisions(ctx, serviceID, approval.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(decisions).To(HaveLen(2))
			Expect(decisions[0].ApproverID).To(Equal("u1"))

			_, err = svc.Decisions(ctx, serviceID+1, approval.ID)
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})

	It("stamps completion time from the transition clock", func() {
		approval := create(service.CreateApprovalParams{
			Type:      model.ApprovalTypeTask,
			Title:     "single",
			Approvers: []model.Approver{{UserID: "u1", Level: 1}},
		})

		before := time.Now().UTC()
		approval, err := svc.Approve(ctx, serviceID, approval.ID, service.TransitionParams{})

		Expect(err).NotTo(HaveOccurred())
		Expect(approval.Status).To(Equal(model.ApprovalStatusApproved))
		Expect(approval.CurrentLevel).To(Equal(int32(2)))
		Expect(*approval.CompletedAt).To(BeTemporally(">=", before))
	})
})
