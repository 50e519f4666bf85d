package mocks

import (
	"context"
	"sync"

	"github.com/remp2020/crm-stripe-module/internal/application"
)

// MockLocker is an in-process Locker that records which keys were locked.
type MockLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	Locked []string

	LockFn func(ctx context.Context, key string) (func(), error)
}

var _ application.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	if m.LockFn != nil {
		return m.LockFn(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[key] {
		return nil, application.NewLockedError(key)
	}
	m.held[key] = true
	m.Locked = append(m.Locked, key)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

func (m *MockLocker) IsHeld(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[key]
}
