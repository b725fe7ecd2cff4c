// Package memory is an in-process repository.Store used for local development
// (store.type: memory) and for exercising the lifecycle services in tests.
package memory

import (
	"context"
	"sync"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/repository"

	"github.com/google/uuid"
)

// table keeps rows in insertion order with an id index. Rows whose fields point at
// mutable data carry a detach func; rows go through it on the way in and out so a
// stored row never shares memory with a caller.
type table[T any] struct {
	rows   []T
	index  map[string]int
	detach func(T) T
}

func newTable[T any]() *table[T] {
	return &table[T]{index: make(map[string]int)}
}

func newDetachedTable[T any](detach func(T) T) *table[T] {
	t := newTable[T]()
	t.detach = detach
	return t
}

func (t *table[T]) own(row T) T {
	if t.detach == nil {
		return row
	}
	return t.detach(row)
}

func (t *table[T]) get(id string) (T, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.own(t.rows[i]), true
}

func (t *table[T]) insert(id string, row T) {
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, t.own(row))
}

func (t *table[T]) replace(id string, row T) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.rows[i] = t.own(row)
	return true
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		rows:   make([]T, len(t.rows)),
		index:  make(map[string]int, len(t.index)),
		detach: t.detach,
	}
	for i, row := range t.rows {
		c.rows[i] = t.own(row)
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}

// newestFirst returns the rows matching keep, most recently inserted first.
func (t *table[T]) newestFirst(keep func(T) bool) []T {
	var out []T
	for i := len(t.rows) - 1; i >= 0; i-- {
		if keep == nil || keep(t.rows[i]) {
			out = append(out, t.own(t.rows[i]))
		}
	}
	return out
}

type tables struct {
	users         *table[domain.User]
	properties    *table[domain.Property]
	viewings      *table[domain.Viewing]
	applications  *table[domain.Application]
	agreements    *table[domain.Agreement]
	payments      *table[domain.Payment]
	notifications *table[domain.Notification]
	activities    *table[domain.ActivityLog]
	verifications *table[domain.Verification]
	bills         *table[domain.Bill]
	disputes      *table[domain.Dispute]
}

func newTables() *tables {
	return &tables{
		users:         newTable[domain.User](),
		properties:    newTable[domain.Property](),
		viewings:      newTable[domain.Viewing](),
		applications:  newDetachedTable(detachApplication),
		agreements:    newTable[domain.Agreement](),
		payments:      newTable[domain.Payment](),
		notifications: newDetachedTable(detachNotification),
		activities:    newTable[domain.ActivityLog](),
		verifications: newTable[domain.Verification](),
		bills:         newTable[domain.Bill](),
		disputes:      newTable[domain.Dispute](),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:         t.users.clone(),
		properties:    t.properties.clone(),
		viewings:      t.viewings.clone(),
		applications:  t.applications.clone(),
		agreements:    t.agreements.clone(),
		payments:      t.payments.clone(),
		notifications: t.notifications.clone(),
		activities:    t.activities.clone(),
		verifications: t.verifications.clone(),
		bills:         t.bills.clone(),
		disputes:      t.disputes.clone(),
	}
}

// Store is safe for concurrent use. Transactions are serialized; a failed
// transaction restores the snapshot taken when it began.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) read(fn func(d *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *tables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) Users() repository.UserRepository                 { return &userRepository{s} }
func (s *Store) Properties() repository.PropertyRepository        { return &propertyRepository{s} }
func (s *Store) Viewings() repository.ViewingRepository           { return &viewingRepository{s} }
func (s *Store) Applications() repository.ApplicationRepository   { return &applicationRepository{s} }
func (s *Store) Agreements() repository.AgreementRepository       { return &agreementRepository{s} }
func (s *Store) Payments() repository.PaymentRepository           { return &paymentRepository{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepository{s} }
func (s *Store) Activities() repository.ActivityRepository        { return &activityRepository{s} }
func (s *Store) Verifications() repository.VerificationRepository { return &verificationRepository{s} }
func (s *Store) Bills() repository.BillRepository                 { return &billRepository{s} }
func (s *Store) Disputes() repository.DisputeRepository           { return &disputeRepository{s} }

func (s *Store) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(txStore{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore is the view handed to a transaction body; nested WithinTx calls join it.
type txStore struct {
	*Store
}

func (t txStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func detachApplication(a domain.Application) domain.Application {
	a.SourceViewingID = ptrCopy(a.SourceViewingID)
	a.AgreementID = ptrCopy(a.AgreementID)
	a.BillingPeriod = ptrCopy(a.BillingPeriod)
	a.MoveInDate = ptrCopy(a.MoveInDate)
	a.DueDate = ptrCopy(a.DueDate)
	if a.OfflinePayment != nil {
		op := *a.OfflinePayment
		op.AcknowledgedAt = ptrCopy(op.AcknowledgedAt)
		a.OfflinePayment = &op
	}
	return a
}

func detachNotification(n domain.Notification) domain.Notification {
	if n.Attributes != nil {
		attrs := make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			attrs[k] = v
		}
		n.Attributes = attrs
	}
	return n
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
