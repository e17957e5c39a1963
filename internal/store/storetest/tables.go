package storetest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

type identityStore struct{ db *DB }

func (s identityStore) GetByID(_ context.Context, id int64) (*model.ServiceIdentity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("identities.get"); err != nil {
		return nil, err
	}
	si, ok := s.db.identities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &si, nil
}

func (s identityStore) GetBySecretHash(_ context.Context, secretHash string) (*model.ServiceIdentity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, si := range s.db.identities {
		if si.SecretHash == secretHash {
			return &si, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s identityStore) Create(_ context.Context, identity *model.ServiceIdentity) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, si := range s.db.identities {
		if si.SecretHash == identity.SecretHash {
			return fmt.Errorf("storetest: duplicate secret hash")
		}
	}
	now := s.db.now()
	identity.CreatedAt, identity.UpdatedAt = now, now
	s.db.identities[identity.ID] = *identity
	return nil
}

func (s identityStore) SetActive(_ context.Context, id int64, active bool) (*model.ServiceIdentity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	si, ok := s.db.identities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	si.IsActive = active
	si.UpdatedAt = s.db.now()
	s.db.identities[id] = si
	return &si, nil
}

type approvalStore struct{ db *DB }

func (s approvalStore) Create(_ context.Context, approval *model.Approval) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("approvals.create"); err != nil {
		return err
	}
	now := s.db.now()
	approval.CurrentLevel = 1
	approval.Status = model.ApprovalStatusPending
	approval.CreatedAt, approval.UpdatedAt = now, now
	if approval.Metadata == nil {
		approval.Metadata = map[string]any{}
	}
	s.db.approvals[approval.ID] = *approval
	return nil
}

func (s approvalStore) Get(_ context.Context, serviceID, id int64) (*model.Approval, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.approvals[id]
	if !ok || a.ServiceID != serviceID {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s approvalStore) GetForUpdate(ctx context.Context, serviceID, id int64) (*model.Approval, error) {
	return s.Get(ctx, serviceID, id)
}

func (f approvalFilterMatch) match(a model.Approval) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Type != nil && a.Type != *f.Type {
		return false
	}
	if f.Priority != nil && a.Priority != *f.Priority {
		return false
	}
	if f.Urgency != nil && a.Urgency != *f.Urgency {
		return false
	}
	if f.ExternalID != nil && (a.ExternalID == nil || *a.ExternalID != *f.ExternalID) {
		return false
	}
	return true
}

type approvalFilterMatch store.ApprovalFilter

func (s approvalStore) filtered(serviceID int64, filter store.ApprovalFilter) []model.Approval {
	var out []model.Approval
	for _, a := range s.db.approvals {
		if a.ServiceID == serviceID && approvalFilterMatch(filter).match(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s approvalStore) List(_ context.Context, serviceID int64, filter store.ApprovalFilter, limit, offset int32) ([]model.Approval, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(s.filtered(serviceID, filter),
		func(a model.Approval) time.Time { return a.CreatedAt },
		func(a model.Approval) int64 { return a.ID },
		limit, offset), nil
}

func (s approvalStore) Count(_ context.Context, serviceID int64, filter store.ApprovalFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.filtered(serviceID, filter))), nil
}

func (s approvalStore) UpdateDetails(_ context.Context, approval *model.Approval) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.approvals[approval.ID]
	if !ok || a.ServiceID != approval.ServiceID {
		return store.ErrNotFound
	}
	a.Title = approval.Title
	a.Description = approval.Description
	a.Priority = approval.Priority
	a.Urgency = approval.Urgency
	a.DueDate = approval.DueDate
	a.Metadata = approval.Metadata
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	a.UpdatedAt = s.db.now()
	s.db.approvals[a.ID] = a
	*approval = a
	return nil
}

func (s approvalStore) Advance(_ context.Context, params store.AdvanceParams) (*model.Approval, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.approvals[params.ID]
	if !ok || a.Status != model.ApprovalStatusPending || a.CurrentLevel != params.ExpectedLevel {
		return nil, store.ErrConflict
	}
	a.CurrentLevel = params.NextLevel
	a.Status = params.NextStatus
	a.CompletedAt = params.CompletedAt
	a.UpdatedAt = s.db.now()
	s.db.approvals[a.ID] = a
	return &a, nil
}

func (s approvalStore) Delete(_ context.Context, serviceID, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.approvals[id]
	if !ok || a.ServiceID != serviceID {
		return store.ErrNotFound
	}
	if len(s.db.decisionsOf(id)) > 0 {
		return ErrForeignKey
	}
	delete(s.db.approvals, id)
	return nil
}

type decisionStore struct{ db *DB }

func (s decisionStore) Create(_ context.Context, decision *model.Decision) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("decisions.create"); err != nil {
		return err
	}
	for _, d := range s.db.decisionsOf(decision.ApprovalID) {
		if d.Level == decision.Level {
			return fmt.Errorf("storetest: duplicate decision for level %d", decision.Level)
		}
	}
	now := s.db.now()
	decision.Decision = model.DecisionStatusPending
	decision.CreatedAt, decision.UpdatedAt = now, now
	s.db.decisions[decision.ID] = *decision
	return nil
}

func (s decisionStore) ListByApproval(_ context.Context, approvalID int64) ([]model.Decision, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.decisionsOf(approvalID)
	if out == nil {
		out = []model.Decision{}
	}
	return out, nil
}

func (s decisionStore) pending(approvalID int64, level int32) (model.Decision, bool) {
	for _, d := range s.db.decisions {
		if d.ApprovalID == approvalID && d.Level == level && d.Decision == model.DecisionStatusPending {
			return d, true
		}
	}
	return model.Decision{}, false
}

func (s decisionStore) Record(_ context.Context, approvalID int64, level int32, status model.DecisionStatus, comment *string, decidedAt time.Time) (*model.Decision, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("decisions.record"); err != nil {
		return nil, err
	}
	d, ok := s.pending(approvalID, level)
	if !ok {
		return nil, store.ErrConflict
	}
	d.Decision = status
	d.Comment = comment
	d.DecidedAt = &decidedAt
	d.UpdatedAt = s.db.now()
	s.db.decisions[d.ID] = d
	return &d, nil
}

func (s decisionStore) Annotate(_ context.Context, approvalID int64, level int32, comment *string) (*model.Decision, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.pending(approvalID, level)
	if !ok {
		return nil, store.ErrConflict
	}
	d.Comment = comment
	d.UpdatedAt = s.db.now()
	s.db.decisions[d.ID] = d
	return &d, nil
}

func (s decisionStore) DeleteByApproval(_ context.Context, approvalID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, d := range s.db.decisions {
		if d.ApprovalID == approvalID {
			delete(s.db.decisions, id)
		}
	}
	return nil
}

type registrationStore struct{ db *DB }

func (s registrationStore) Create(_ context.Context, reg *model.WebhookRegistration) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := s.db.now()
	reg.IsActive = true
	reg.CreatedAt, reg.UpdatedAt = now, now
	reg.Events = slices.Clone(reg.Events)
	s.db.registrations[reg.ID] = *reg
	return nil
}

func (s registrationStore) Get(_ context.Context, serviceID, id int64) (*model.WebhookRegistration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.registrations[id]
	if !ok || r.ServiceID != serviceID {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s registrationStore) GetByID(_ context.Context, id int64) (*model.WebhookRegistration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.registrations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s registrationStore) owned(serviceID int64) []model.WebhookRegistration {
	var out []model.WebhookRegistration
	for _, r := range s.db.registrations {
		if r.ServiceID == serviceID {
			out = append(out, r)
		}
	}
	return out
}

func (s registrationStore) List(_ context.Context, serviceID int64, limit, offset int32) ([]model.WebhookRegistration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(s.owned(serviceID),
		func(r model.WebhookRegistration) time.Time { return r.CreatedAt },
		func(r model.WebhookRegistration) int64 { return r.ID },
		limit, offset), nil
}

func (s registrationStore) Count(_ context.Context, serviceID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.owned(serviceID))), nil
}

func (s registrationStore) ListSubscribed(_ context.Context, serviceID int64, eventType model.EventType) ([]model.WebhookRegistration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.WebhookRegistration{}
	for _, r := range s.owned(serviceID) {
		if r.IsActive && r.Subscribes(eventType) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.WebhookRegistration) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s registrationStore) Update(_ context.Context, reg *model.WebhookRegistration) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.registrations[reg.ID]
	if !ok || r.ServiceID != reg.ServiceID {
		return store.ErrNotFound
	}
	r.URL = reg.URL
	r.Events = slices.Clone(reg.Events)
	r.RetryCount = reg.RetryCount
	r.TimeoutSeconds = reg.TimeoutSeconds
	r.IsActive = reg.IsActive
	r.UpdatedAt = s.db.now()
	s.db.registrations[r.ID] = r
	*reg = r
	return nil
}

func (s registrationStore) Delete(_ context.Context, serviceID, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.registrations[id]
	if !ok || r.ServiceID != serviceID {
		return store.ErrNotFound
	}
	for _, d := range s.db.deliveries {
		if d.RegistrationID == id {
			return ErrForeignKey
		}
	}
	delete(s.db.registrations, id)
	return nil
}

type eventStore struct{ db *DB }

func (s eventStore) Create(_ context.Context, event *model.WebhookEvent) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("events.create"); err != nil {
		return err
	}
	event.CreatedAt = s.db.now()
	s.db.events[event.ID] = *event
	return nil
}

func (s eventStore) Get(_ context.Context, serviceID, id int64) (*model.WebhookEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.events[id]
	if !ok || e.ServiceID != serviceID {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s eventStore) GetByID(_ context.Context, id int64) (*model.WebhookEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s eventStore) filtered(serviceID int64, filter store.EventFilter) []model.WebhookEvent {
	var out []model.WebhookEvent
	for _, e := range s.db.events {
		if e.ServiceID != serviceID {
			continue
		}
		if filter.EventType != nil && e.EventType != *filter.EventType {
			continue
		}
		if filter.ApprovalID != nil && (e.ApprovalID == nil || *e.ApprovalID != *filter.ApprovalID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s eventStore) List(_ context.Context, serviceID int64, filter store.EventFilter, limit, offset int32) ([]model.WebhookEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(s.filtered(serviceID, filter),
		func(e model.WebhookEvent) time.Time { return e.CreatedAt },
		func(e model.WebhookEvent) int64 { return e.ID },
		limit, offset), nil
}

func (s eventStore) Count(_ context.Context, serviceID int64, filter store.EventFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.filtered(serviceID, filter))), nil
}

func (s eventStore) MarkDispatched(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.events[id]
	if ok && e.DispatchedAt == nil {
		now := s.db.now()
		e.DispatchedAt = &now
		s.db.events[id] = e
	}
	return nil
}

func (s eventStore) ListUndispatched(_ context.Context, createdBefore time.Time, limit int32) ([]model.WebhookEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.WebhookEvent{}
	for _, e := range s.db.events {
		if e.DispatchedAt == nil && e.CreatedAt.Before(createdBefore) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b model.WebhookEvent) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return page(out, limit, 0), nil
}

func (s eventStore) DetachApproval(_ context.Context, approvalID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, e := range s.db.events {
		if e.ApprovalID != nil && *e.ApprovalID == approvalID {
			e.ApprovalID = nil
			s.db.events[id] = e
		}
	}
	return nil
}

type deliveryStore struct{ db *DB }

func (s deliveryStore) Create(_ context.Context, delivery *model.WebhookDelivery) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("deliveries.create"); err != nil {
		return err
	}
	now := s.db.now()
	delivery.CreatedAt, delivery.UpdatedAt = now, now
	s.db.deliveries[delivery.ID] = *delivery
	return nil
}

func (s deliveryStore) Complete(_ context.Context, delivery *model.WebhookDelivery) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.deliveries[delivery.ID]
	if !ok {
		return store.ErrNotFound
	}
	d.Status = delivery.Status
	d.ResponseCode = delivery.ResponseCode
	d.ResponseBody = delivery.ResponseBody
	d.DeliveredAt = delivery.DeliveredAt
	d.NextRetryAt = delivery.NextRetryAt
	d.UpdatedAt = s.db.now()
	s.db.deliveries[d.ID] = d
	*delivery = d
	return nil
}

func (s deliveryStore) GetByID(_ context.Context, id int64) (*model.WebhookDelivery, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s deliveryStore) of(registrationID int64) []model.WebhookDelivery {
	var out []model.WebhookDelivery
	for _, d := range s.db.deliveries {
		if d.RegistrationID == registrationID {
			out = append(out, d)
		}
	}
	return out
}

func (s deliveryStore) ListByRegistration(_ context.Context, registrationID int64, limit, offset int32) ([]model.WebhookDelivery, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(s.of(registrationID),
		func(d model.WebhookDelivery) time.Time { return d.CreatedAt },
		func(d model.WebhookDelivery) int64 { return d.ID },
		limit, offset), nil
}

func (s deliveryStore) CountByRegistration(_ context.Context, registrationID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.of(registrationID))), nil
}

func (s deliveryStore) LatestAttempt(_ context.Context, registrationID, eventID int64) (int32, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("deliveries.latest_attempt"); err != nil {
		return 0, err
	}
	var latest int32
	for _, d := range s.of(registrationID) {
		if d.EventID == eventID && d.AttemptCount > latest {
			latest = d.AttemptCount
		}
	}
	return latest, nil
}

func (s deliveryStore) ClaimDue(_ context.Context, now time.Time, limit int32) ([]model.WebhookDelivery, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	due := []model.WebhookDelivery{}
	for _, d := range s.db.deliveries {
		if d.Status == model.DeliveryStatusFailed && d.NextRetryAt != nil && !d.NextRetryAt.After(now) {
			due = append(due, d)
		}
	}
	slices.SortFunc(due, func(a, b model.WebhookDelivery) int { return a.NextRetryAt.Compare(*b.NextRetryAt) })
	due = page(due, limit, 0)
	for i := range due {
		due[i].NextRetryAt = nil
		s.db.deliveries[due[i].ID] = due[i]
	}
	return due, nil
}

func (s deliveryStore) Reschedule(_ context.Context, id int64, when time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.deliveries[id]
	if !ok {
		return nil
	}
	d.NextRetryAt = &when
	s.db.deliveries[id] = d
	return nil
}

func (s deliveryStore) DeleteByRegistration(_ context.Context, registrationID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, d := range s.db.deliveries {
		if d.RegistrationID == registrationID {
			delete(s.db.deliveries, id)
		}
	}
	return nil
}

type statsStore struct{ db *DB }

func (s statsStore) ApprovalBreakdown(_ context.Context, serviceID int64) ([]model.ApprovalCountRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	type key struct {
		status   model.ApprovalStatus
		priority model.Priority
		urgency  model.Urgency
		typ      model.ApprovalType
	}
	counts := map[key]int64{}
	for _, a := range s.db.approvals {
		if a.ServiceID == serviceID {
			counts[key{a.Status, a.Priority, a.Urgency, a.Type}]++
		}
	}
	rows := []model.ApprovalCountRow{}
	for k, n := range counts {
		rows = append(rows, model.ApprovalCountRow{Status: k.status, Priority: k.priority, Urgency: k.urgency, Type: k.typ, Count: n})
	}
	return rows, nil
}

func (s statsStore) AverageCompletionSeconds(_ context.Context, serviceID int64) (float64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var sum float64
	var n int
	for _, a := range s.db.approvals {
		if a.ServiceID == serviceID && a.CompletedAt != nil {
			sum += a.CompletedAt.Sub(a.CreatedAt).Seconds()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func tally(counts *model.DeliveryCounts, d model.WebhookDelivery) {
	counts.Total++
	switch d.Status {
	case model.DeliveryStatusSuccess:
		counts.Success++
	case model.DeliveryStatusFailed:
		counts.Failed++
	case model.DeliveryStatusPending:
		counts.Pending++
	}
}

func (s statsStore) RegistrationDeliveryCounts(_ context.Context, registrationID int64, since time.Time) (model.DeliveryCounts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var counts model.DeliveryCounts
	for _, d := range s.db.deliveries {
		if d.RegistrationID == registrationID && !d.CreatedAt.Before(since) {
			tally(&counts, d)
		}
	}
	return counts, nil
}

func (s statsStore) ServiceDeliveryCounts(_ context.Context, serviceID int64, since time.Time) (model.DeliveryCounts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var counts model.DeliveryCounts
	for _, d := range s.db.deliveries {
		r, ok := s.db.registrations[d.RegistrationID]
		if ok && r.ServiceID == serviceID && !d.CreatedAt.Before(since) {
			tally(&counts, d)
		}
	}
	return counts, nil
}
