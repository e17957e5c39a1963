package service

import (
	"log/slog"

	"basegraph.app/approvals/internal/directory"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/store"
)

// Stores is the full set of stores the services are built on. Both
// store.Stores and the in-memory test store satisfy it.
type Stores interface {
	StoreProvider
	ServiceIdentities() store.ServiceIdentityStore
	Stats() store.StatsStore
}

type Services struct {
	stores     Stores
	txRunner   TxRunner
	producer   queue.Producer
	dispatcher Attempter
	resolver   directory.Resolver
	logger     *slog.Logger
}

func NewServices(stores Stores, txRunner TxRunner, producer queue.Producer, dispatcher Attempter, resolver directory.Resolver, logger *slog.Logger) *Services {
	return &Services{
		stores:     stores,
		txRunner:   txRunner,
		producer:   producer,
		dispatcher: dispatcher,
		resolver:   resolver,
		logger:     logger,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.ServiceIdentities())
}

func (s *Services) ServiceIdentities() ServiceIdentityService {
	return NewServiceIdentityService(s.stores.ServiceIdentities(), s.logger)
}

func (s *Services) Approvals() ApprovalService {
	return NewApprovalService(s.stores, s.txRunner, s.producer, s.resolver, s.logger)
}

func (s *Services) Webhooks() WebhookService {
	return NewWebhookService(s.stores, s.txRunner, s.dispatcher, s.logger)
}

func (s *Services) Events() EventService {
	return NewEventService(s.stores, s.producer, s.logger)
}

func (s *Services) Stats() StatsService {
	return NewStatsService(s.stores.Stats(), s.stores.WebhookRegistrations())
}
