// Package mocks provides testify mocks of the store interfaces for error paths that real
// backends cannot produce on demand.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockExpiringStore is a mock implementation of store.ExpiringStore.
type MockExpiringStore struct {
	mock.Mock
}

// Add mocks the Add method of ExpiringStore.
func (m *MockExpiringStore) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

// Exists mocks the Exists method of ExpiringStore.
func (m *MockExpiringStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Get mocks the Get method of ExpiringStore.
func (m *MockExpiringStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Take mocks the Take method of ExpiringStore.
func (m *MockExpiringStore) Take(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Delete mocks the Delete method of ExpiringStore.
func (m *MockExpiringStore) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Ping mocks the Ping method of ExpiringStore.
func (m *MockExpiringStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
