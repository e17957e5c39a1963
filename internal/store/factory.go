package store

import (
	"basegraph.app/approvals/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) ServiceIdentities() ServiceIdentityStore {
	return newServiceIdentityStore(s.queries)
}

func (s *Stores) Approvals() ApprovalStore {
	return newApprovalStore(s.queries)
}

func (s *Stores) Decisions() DecisionStore {
	return newDecisionStore(s.queries)
}

func (s *Stores) WebhookRegistrations() WebhookRegistrationStore {
	return newWebhookRegistrationStore(s.queries)
}

func (s *Stores) WebhookEvents() WebhookEventStore {
	return newWebhookEventStore(s.queries)
}

func (s *Stores) WebhookDeliveries() WebhookDeliveryStore {
	return newWebhookDeliveryStore(s.queries)
}

func (s *Stores) Stats() StatsStore {
	return newStatsStore(s.queries)
}
