package service

import (
	"context"

	"basegraph.app/approvals/core/db"
	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Approvals() store.ApprovalStore
	Decisions() store.DecisionStore
	WebhookRegistrations() store.WebhookRegistrationStore
	WebhookEvents() store.WebhookEventStore
	WebhookDeliveries() store.WebhookDeliveryStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}
