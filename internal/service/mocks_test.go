package service_test

import (
	"context"
	"sync"

	"basegraph.app/approvals/internal/directory"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store/storetest"
	"basegraph.app/approvals/internal/webhook"
)

// memTx adapts the in-memory store to the service TxRunner.
type memTx struct {
	db *storetest.DB
}

func (m memTx) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	return m.db.Tx(func() error { return fn(m.db) })
}

type fakeProducer struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
}

func (p *fakeProducer) Enqueue(ctx context.Context, task queue.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) Tasks() []queue.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.Task(nil), p.tasks...)
}

type mockResolver struct {
	known map[string]bool
	err   error
}

func (r mockResolver) Resolve(ctx context.Context, userID string) (*directory.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if !r.known[userID] {
		return nil, directory.ErrUserNotFound
	}
	return &directory.User{ID: userID}, nil
}

type mockAttempter struct {
	calls    []webhook.AttemptParams
	delivery *model.WebhookDelivery
	err      error
}

func (m *mockAttempter) Attempt(ctx context.Context, p webhook.AttemptParams) (*model.WebhookDelivery, error) {
	m.calls = append(m.calls, p)
	if m.err != nil {
		return nil, m.err
	}
	return m.delivery, nil
}

func ptr[T any](v T) *T { return &v }
