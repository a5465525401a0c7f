package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockExpiredPurger is a mock implementation of store.ExpiredPurger.
type MockExpiredPurger struct {
	mock.Mock
}

func (m *MockExpiredPurger) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpiredPurger) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
