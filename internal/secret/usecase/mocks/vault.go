// Package mocks provides mock implementations of the vault for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// MockVault is a mock implementation of usecase.Vault.
type MockVault struct {
	mock.Mock
}

// Store mocks the Store method of Vault.
func (m *MockVault) Store(
	ctx context.Context,
	plaintext []byte,
	expiryHours int,
	password []byte,
) (*secretDomain.Reference, error) {
	args := m.Called(ctx, plaintext, expiryHours, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.Reference), args.Error(1)
}

// StoreEncrypted mocks the StoreEncrypted method of Vault.
func (m *MockVault) StoreEncrypted(
	ctx context.Context,
	bundle *secretDomain.Bundle,
	expiryHours int,
) (string, error) {
	args := m.Called(ctx, bundle, expiryHours)
	return args.String(0), args.Error(1)
}

// RetrieveEncrypted mocks the RetrieveEncrypted method of Vault.
func (m *MockVault) RetrieveEncrypted(ctx context.Context, id string, del bool) (*secretDomain.Bundle, error) {
	args := m.Called(ctx, id, del)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.Bundle), args.Error(1)
}

// Retrieve mocks the Retrieve method of Vault.
func (m *MockVault) Retrieve(ctx context.Context, id string, password []byte) ([]byte, error) {
	args := m.Called(ctx, id, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
