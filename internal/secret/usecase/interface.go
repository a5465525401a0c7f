// Package usecase implements the one-time secret vault: encrypt-and-store, store a bundle
// encrypted by the client, fetch a bundle, and decrypt-then-destroy.
package usecase

import (
	"context"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// Vault defines the secret lifecycle.
//
// Absent, expired, already consumed, wrong-password and corrupted records all surface as
// secretDomain.ErrSecretUnavailable so callers cannot probe for existence.
type Vault interface {
	// Store encrypts plaintext under password and persists it for expiryHours. An empty
	// password makes the vault generate one, which is returned in the Reference.
	//
	// Security Note: plaintext and password are wiped before Store returns.
	Store(ctx context.Context, plaintext []byte, expiryHours int, password []byte) (*secretDomain.Reference, error)

	// StoreEncrypted persists a bundle the client already encrypted and returns its identifier.
	StoreEncrypted(ctx context.Context, bundle *secretDomain.Bundle, expiryHours int) (string, error)

	// RetrieveEncrypted returns the stored bundle without decrypting it. With del the record
	// is removed atomically as it is read.
	RetrieveEncrypted(ctx context.Context, id string, del bool) (*secretDomain.Bundle, error)

	// Retrieve decrypts the record and destroys it. A wrong password leaves the record in place.
	//
	// Security Note: password is wiped before Retrieve returns. Callers MUST zero the
	// returned plaintext after use by calling secretDomain.Zero.
	Retrieve(ctx context.Context, id string, password []byte) ([]byte, error)
}
