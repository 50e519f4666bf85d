package testhelpers

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// ErrStaleStatus is returned by a snapshot store when the updated payment no
// longer carries the stored status.
var ErrStaleStatus = errors.New("payment status changed concurrently")

// MockPaymentStore keeps payments in memory, keyed by variable symbol.
//
// With Snapshots set, reads return copies and UpdateStatus only succeeds when
// the caller's status still matches the stored one, the way the postgres
// repository behaves.
type MockPaymentStore struct {
	mu        sync.RWMutex
	payments  map[string]*domain.Payment
	Notified  []string
	Snapshots bool

	FindByVariableSymbolFn func(ctx context.Context, variableSymbol string) (*domain.Payment, error)
	UpdateStatusFn         func(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus, notify bool) error
}

var _ application.PaymentStore = (*MockPaymentStore)(nil)

func NewMockPaymentStore(payments ...*domain.Payment) *MockPaymentStore {
	m := &MockPaymentStore{payments: make(map[string]*domain.Payment)}
	for _, p := range payments {
		m.payments[p.VariableSymbol] = p
	}
	return m
}

func (m *MockPaymentStore) Add(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.VariableSymbol] = payment
}

func (m *MockPaymentStore) FindByVariableSymbol(ctx context.Context, variableSymbol string) (*domain.Payment, error) {
	if m.FindByVariableSymbolFn != nil {
		return m.FindByVariableSymbolFn(ctx, variableSymbol)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[variableSymbol]
	if !ok {
		return nil, domain.NewPaymentNotFoundError(variableSymbol)
	}
	if m.Snapshots {
		return snapshot(p), nil
	}
	return p, nil
}

// SetStatus overwrites the stored status, standing in for another writer.
func (m *MockPaymentStore) SetStatus(variableSymbol string, status domain.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[variableSymbol]; ok {
		p.Status = status
	}
}

// Status reports the stored status.
func (m *MockPaymentStore) Status(variableSymbol string) domain.PaymentStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[variableSymbol]; ok {
		return p.Status
	}
	return ""
}

func (m *MockPaymentStore) UpdateStatus(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus, notify bool) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, payment, status, notify)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Snapshots {
		stored, ok := m.payments[payment.VariableSymbol]
		if !ok {
			return domain.NewPaymentNotFoundError(payment.VariableSymbol)
		}
		if stored.Status != payment.Status {
			return ErrStaleStatus
		}
		if err := payment.TransitionTo(status); err != nil {
			return err
		}
		m.payments[payment.VariableSymbol] = snapshot(payment)
	} else {
		if err := payment.TransitionTo(status); err != nil {
			return err
		}
		m.payments[payment.VariableSymbol] = payment
	}

	if notify {
		m.Notified = append(m.Notified, payment.VariableSymbol)
	}
	return nil
}

func snapshot(p *domain.Payment) *domain.Payment {
	c := *p
	c.Items = slices.Clone(p.Items)
	if p.PaidAt != nil {
		paidAt := *p.PaidAt
		c.PaidAt = &paidAt
	}
	return &c
}

type metaKey struct {
	id  int64
	key domain.MetaKey
}

// MockMetaStore keeps payment and user meta in memory. Values are appended
// like rows in a table; reads return the latest one.
type MockMetaStore struct {
	mu          sync.RWMutex
	paymentMeta map[metaKey][]string
	userMeta    map[metaKey][]string

	AddPaymentMetaFn func(ctx context.Context, paymentID int64, key domain.MetaKey, value string) error
	AddUserMetaFn    func(ctx context.Context, userID int64, key domain.MetaKey, value string) error
}

var (
	_ application.PaymentMetaStore = (*MockMetaStore)(nil)
	_ application.UserMetaStore    = (*MockMetaStore)(nil)
)

func NewMockMetaStore() *MockMetaStore {
	return &MockMetaStore{
		paymentMeta: make(map[metaKey][]string),
		userMeta:    make(map[metaKey][]string),
	}
}

func (m *MockMetaStore) GetPaymentMeta(_ context.Context, paymentID int64, key domain.MetaKey) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return latest(m.paymentMeta[metaKey{paymentID, key}])
}

func (m *MockMetaStore) AddPaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey, value string) error {
	if m.AddPaymentMetaFn != nil {
		return m.AddPaymentMetaFn(ctx, paymentID, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := metaKey{paymentID, key}
	m.paymentMeta[k] = append(m.paymentMeta[k], value)
	return nil
}

func (m *MockMetaStore) RemovePaymentMeta(_ context.Context, paymentID int64, key domain.MetaKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paymentMeta, metaKey{paymentID, key})
	return nil
}

func (m *MockMetaStore) GetUserMeta(_ context.Context, userID int64, key domain.MetaKey) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return latest(m.userMeta[metaKey{userID, key}])
}

func (m *MockMetaStore) AddUserMeta(ctx context.Context, userID int64, key domain.MetaKey, value string) error {
	if m.AddUserMetaFn != nil {
		return m.AddUserMetaFn(ctx, userID, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := metaKey{userID, key}
	m.userMeta[k] = append(m.userMeta[k], value)
	return nil
}

// PaymentMetaValues returns every stored value of the key, oldest first.
func (m *MockMetaStore) PaymentMetaValues(paymentID int64, key domain.MetaKey) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.paymentMeta[metaKey{paymentID, key}]...)
}

func (m *MockMetaStore) UserMetaValues(userID int64, key domain.MetaKey) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.userMeta[metaKey{userID, key}]...)
}

func latest(values []string) (string, bool, error) {
	if len(values) == 0 {
		return "", false, nil
	}
	return values[len(values)-1], true, nil
}
