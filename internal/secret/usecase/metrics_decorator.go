package usecase

import (
	"context"
	"time"

	apperrors "github.com/allisson/quickie/internal/errors"
	"github.com/allisson/quickie/internal/metrics"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// vaultWithMetrics decorates Vault with metrics instrumentation.
type vaultWithMetrics struct {
	next    Vault
	metrics metrics.BusinessMetrics
}

// NewVaultWithMetrics wraps a Vault with metrics recording.
func NewVaultWithMetrics(v Vault, m metrics.BusinessMetrics) Vault {
	return &vaultWithMetrics{
		next:    v,
		metrics: m,
	}
}

func (v *vaultWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "secrets", operation, status)
	v.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
	v.metrics.RecordOutcome(ctx, "secrets", operation, outcomeOf(err))
}

// outcomeOf names the cause kept in the error chain behind ErrSecretUnavailable.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, secretDomain.ErrDecryptionFailed):
		return "wrong_password"
	case apperrors.Is(err, secretDomain.ErrAlreadyConsumed):
		return "consumed"
	case apperrors.Is(err, secretDomain.ErrRecordNotFound):
		return "not_found"
	case apperrors.Is(err, secretDomain.ErrMalformedBundle):
		return "malformed"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	default:
		return "failure"
	}
}

// Store records metrics for server-side encryption.
func (v *vaultWithMetrics) Store(
	ctx context.Context,
	plaintext []byte,
	expiryHours int,
	password []byte,
) (*secretDomain.Reference, error) {
	start := time.Now()
	ref, err := v.next.Store(ctx, plaintext, expiryHours, password)
	v.record(ctx, "secret_store", start, err)
	return ref, err
}

// StoreEncrypted records metrics for client-encrypted bundles.
func (v *vaultWithMetrics) StoreEncrypted(
	ctx context.Context,
	bundle *secretDomain.Bundle,
	expiryHours int,
) (string, error) {
	start := time.Now()
	id, err := v.next.StoreEncrypted(ctx, bundle, expiryHours)
	v.record(ctx, "secret_store_encrypted", start, err)
	return id, err
}

// RetrieveEncrypted records metrics for raw bundle fetches.
func (v *vaultWithMetrics) RetrieveEncrypted(
	ctx context.Context,
	id string,
	del bool,
) (*secretDomain.Bundle, error) {
	start := time.Now()
	bundle, err := v.next.RetrieveEncrypted(ctx, id, del)
	v.record(ctx, "secret_retrieve_encrypted", start, err)
	return bundle, err
}

// Retrieve records metrics for decrypt-and-destroy.
func (v *vaultWithMetrics) Retrieve(ctx context.Context, id string, password []byte) ([]byte, error) {
	start := time.Now()
	plaintext, err := v.next.Retrieve(ctx, id, password)
	v.record(ctx, "secret_retrieve", start, err)
	return plaintext, err
}
