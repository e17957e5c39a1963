// Package storetest provides an in-memory implementation of the store
// interfaces for tests. Transactions are serialized and roll back on error,
// which mirrors the row locks the Postgres implementation relies on.
package storetest

import (
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

type DB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	identities    map[int64]model.ServiceIdentity
	approvals     map[int64]model.Approval
	decisions     map[int64]model.Decision
	registrations map[int64]model.WebhookRegistration
	events        map[int64]model.WebhookEvent
	deliveries    map[int64]model.WebhookDelivery

	failures map[string]error
	now      func() time.Time
}

func New() *DB {
	return &DB{
		identities:    map[int64]model.ServiceIdentity{},
		approvals:     map[int64]model.Approval{},
		decisions:     map[int64]model.Decision{},
		registrations: map[int64]model.WebhookRegistration{},
		events:        map[int64]model.WebhookEvent{},
		deliveries:    map[int64]model.WebhookDelivery{},
		failures:      map[string]error{},
		now:           time.Now,
	}
}

// SetClock replaces the time source used for created_at style columns.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// FailNext makes the next call to op return err. Ops are named
// "<table>.<method>", e.g. "decisions.create".
func (db *DB) FailNext(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

// failure must be called with mu held.
func (db *DB) failure(op string) error {
	if err, ok := db.failures[op]; ok {
		delete(db.failures, op)
		return err
	}
	return nil
}

type snapshot struct {
	identities    map[int64]model.ServiceIdentity
	approvals     map[int64]model.Approval
	decisions     map[int64]model.Decision
	registrations map[int64]model.WebhookRegistration
	events        map[int64]model.WebhookEvent
	deliveries    map[int64]model.WebhookDelivery
}

// Tx runs fn serialized against other transactions and restores every table
// when fn fails.
func (db *DB) Tx(fn func() error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snap := snapshot{
		identities:    maps.Clone(db.identities),
		approvals:     maps.Clone(db.approvals),
		decisions:     maps.Clone(db.decisions),
		registrations: maps.Clone(db.registrations),
		events:        maps.Clone(db.events),
		deliveries:    maps.Clone(db.deliveries),
	}
	db.mu.Unlock()

	if err := fn(); err != nil {
		db.mu.Lock()
		db.identities = snap.identities
		db.approvals = snap.approvals
		db.decisions = snap.decisions
		db.registrations = snap.registrations
		db.events = snap.events
		db.deliveries = snap.deliveries
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) ServiceIdentities() store.ServiceIdentityStore         { return identityStore{db} }
func (db *DB) Approvals() store.ApprovalStore                        { return approvalStore{db} }
func (db *DB) Decisions() store.DecisionStore                        { return decisionStore{db} }
func (db *DB) WebhookRegistrations() store.WebhookRegistrationStore  { return registrationStore{db} }
func (db *DB) WebhookEvents() store.WebhookEventStore                { return eventStore{db} }
func (db *DB) WebhookDeliveries() store.WebhookDeliveryStore         { return deliveryStore{db} }
func (db *DB) Stats() store.StatsStore                               { return statsStore{db} }

// --- Inspection helpers -----------------------------------------------------

func (db *DB) AllApprovals() []model.Approval {
	db.mu.Lock()
	defer db.mu.Unlock()
	return sortedValues(db.approvals, func(a model.Approval) int64 { return a.ID })
}

func (db *DB) AllDecisions(approvalID int64) []model.Decision {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.decisionsOf(approvalID)
}

func (db *DB) AllEvents() []model.WebhookEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	return sortedValues(db.events, func(e model.WebhookEvent) int64 { return e.ID })
}

func (db *DB) AllDeliveries() []model.WebhookDelivery {
	db.mu.Lock()
	defer db.mu.Unlock()
	return sortedValues(db.deliveries, func(d model.WebhookDelivery) int64 { return d.ID })
}

func (db *DB) PutDelivery(d model.WebhookDelivery) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.deliveries[d.ID] = d
}

func (db *DB) PutEvent(e model.WebhookEvent) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.events[e.ID] = e
}

func (db *DB) decisionsOf(approvalID int64) []model.Decision {
	var out []model.Decision
	for _, d := range db.decisions {
		if d.ApprovalID == approvalID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func sortedValues[T any](m map[int64]T, key func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

// newestFirst orders by created_at desc, id desc and applies limit/offset.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64, limit, offset int32) []T {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
	return page(items, limit, offset)
}

func page[T any](items []T, limit, offset int32) []T {
	if int(offset) >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}

// ErrForeignKey mimics a foreign key violation when a parent row is deleted
// while children still reference it.
var ErrForeignKey = errors.New("storetest: foreign key violation")
