// Package sealed wraps an ExpiringStore so values are encrypted by a KMS keeper before they
// reach the backend. Bundles are already end-to-end encrypted; sealing keeps a leaked cache or
// database dump from exposing even the ciphertext envelopes.
package sealed

import (
	"context"
	"fmt"
	"time"

	"gocloud.dev/secrets"

	"github.com/allisson/quickie/internal/store"

	// KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper encrypts and decrypts opaque values. *secrets.Keeper implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// OpenKeeper opens a keeper for keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// Store seals values on the way in and unseals them on the way out.
type Store struct {
	next   store.ExpiringStore
	keeper Keeper
}

// New wraps next with keeper.
func New(next store.ExpiringStore, keeper Keeper) *Store {
	return &Store{next: next, keeper: keeper}
}

func (s *Store) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	sealed, err := s.keeper.Encrypt(ctx, value)
	if err != nil {
		return false, fmt.Errorf("failed to seal entry: %w", err)
	}
	return s.next.Add(ctx, key, sealed, ttl)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.next.Exists(ctx, key)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.unseal(ctx, sealed)
}

// Take unseals before deleting, so a keeper failure leaves the entry in place. The backend's
// Delete still decides which caller consumes it.
func (s *Store) Take(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	value, err := s.unseal(ctx, sealed)
	if err != nil {
		return nil, err
	}

	deleted, err := s.next.Delete(ctx, key)
	if err != nil {
		clear(value)
		return nil, err
	}
	if !deleted {
		clear(value)
		return nil, store.ErrNotFound
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	return s.next.Delete(ctx, key)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Store) unseal(ctx context.Context, sealed []byte) ([]byte, error) {
	value, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unseal entry: %w", store.ErrCorrupted, err)
	}
	return value, nil
}

var _ store.ExpiringStore = (*Store)(nil)
