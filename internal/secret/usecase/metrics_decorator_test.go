package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/quickie/internal/metrics"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	secretUsecaseMocks "github.com/allisson/quickie/internal/secret/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordOutcome(ctx context.Context, domain, operation, outcome string) {
	m.Called(ctx, domain, operation, outcome)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status, outcome string) {
	m.On("RecordOperation", ctx, "secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "secrets", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
	m.On("RecordOutcome", ctx, "secrets", operation, outcome).Return().Once()
}

func TestNewVaultWithMetrics(t *testing.T) {
	decorator := NewVaultWithMetrics(&secretUsecaseMocks.MockVault{}, &mockBusinessMetrics{})
	assert.Implements(t, (*Vault)(nil), decorator)
}

func TestMetricsDecorator_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockVault := &secretUsecaseMocks.MockVault{}
		mockMetrics := &mockBusinessMetrics{}
		ref := &secretDomain.Reference{ID: "AAAAAAAAAAA"}

		mockVault.On("Store", ctx, []byte("s"), 24, []byte("pw")).Return(ref, nil).Once()
		expectMetrics(mockMetrics, ctx, "secret_store", "success", "success")

		result, err := NewVaultWithMetrics(mockVault, mockMetrics).Store(ctx, []byte("s"), 24, []byte("pw"))

		assert.NoError(t, err)
		assert.Equal(t, ref, result)
		mockVault.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsInvalidInput", func(t *testing.T) {
		mockVault := &secretUsecaseMocks.MockVault{}
		mockMetrics := &mockBusinessMetrics{}

		mockVault.On("Store", ctx, []byte("s"), 999, []byte(nil)).
			Return(nil, secretDomain.ErrInvalidExpiry).
			Once()
		expectMetrics(mockMetrics, ctx, "secret_store", "error", "invalid_input")

		result, err := NewVaultWithMetrics(mockVault, mockMetrics).Store(ctx, []byte("s"), 999, nil)

		assert.ErrorIs(t, err, secretDomain.ErrInvalidExpiry)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_StoreEncrypted(t *testing.T) {
	ctx := context.Background()
	mockVault := &secretUsecaseMocks.MockVault{}
	mockMetrics := &mockBusinessMetrics{}
	bundle := &secretDomain.Bundle{}

	mockVault.On("StoreEncrypted", ctx, bundle, 1).Return("", secretDomain.ErrIDAllocationFailed).Once()
	expectMetrics(mockMetrics, ctx, "secret_store_encrypted", "error", "failure")

	_, err := NewVaultWithMetrics(mockVault, mockMetrics).StoreEncrypted(ctx, bundle, 1)

	assert.ErrorIs(t, err, secretDomain.ErrIDAllocationFailed)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_RetrieveEncrypted(t *testing.T) {
	ctx := context.Background()
	mockVault := &secretUsecaseMocks.MockVault{}
	mockMetrics := &mockBusinessMetrics{}
	bundle := &secretDomain.Bundle{Ciphertext: []byte{1}}

	mockVault.On("RetrieveEncrypted", ctx, "AAAAAAAAAAA", true).Return(bundle, nil).Once()
	expectMetrics(mockMetrics, ctx, "secret_retrieve_encrypted", "success", "success")

	result, err := NewVaultWithMetrics(mockVault, mockMetrics).RetrieveEncrypted(ctx, "AAAAAAAAAAA", true)

	assert.NoError(t, err)
	assert.Equal(t, bundle, result)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_RetrieveOutcomes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "WrongPassword", err: unavailable(secretDomain.ErrDecryptionFailed), outcome: "wrong_password"},
		{name: "Consumed", err: unavailable(secretDomain.ErrAlreadyConsumed), outcome: "consumed"},
		{name: "NotFound", err: unavailable(secretDomain.ErrRecordNotFound), outcome: "not_found"},
		{name: "Malformed", err: unavailable(fmt.Errorf("%w: bad hex", secretDomain.ErrMalformedBundle)), outcome: "malformed"},
		{name: "InvalidID", err: secretDomain.ErrInvalidID, outcome: "invalid_input"},
		{name: "Backend", err: errors.New("connection refused"), outcome: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockVault := &secretUsecaseMocks.MockVault{}
			mockMetrics := &mockBusinessMetrics{}

			mockVault.On("Retrieve", ctx, "AAAAAAAAAAA", []byte("pw")).Return(nil, tt.err).Once()
			expectMetrics(mockMetrics, ctx, "secret_retrieve", "error", tt.outcome)

			_, err := NewVaultWithMetrics(mockVault, mockMetrics).Retrieve(ctx, "AAAAAAAAAAA", []byte("pw"))

			assert.ErrorIs(t, err, tt.err)
			mockMetrics.AssertExpectations(t)
		})
	}
}
