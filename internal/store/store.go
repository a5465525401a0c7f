// Package store defines the expiring key-value contract the vault persists bundles in.
// Implementations live in subpackages: memory, redis, sql and the sealed decorator.
package store

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/allisson/quickie/internal/errors"
)

var (
	// ErrNotFound indicates the key is absent or its entry has expired.
	ErrNotFound = apperrors.Wrap(apperrors.ErrNotFound, "store entry not found")

	// ErrCorrupted indicates a live entry whose stored form cannot be turned back into the
	// value that was added, such as a sealed value the keeper refuses to open.
	ErrCorrupted = errors.New("store entry cannot be decoded")
)

// ExpiringStore is a key-value store whose entries disappear a fixed time after insertion.
//
// Every method must be safe for concurrent use. For the same key, two concurrent Add calls on
// an absent key succeed for exactly one caller, and two concurrent Take or Delete calls on a
// present key observe the entry for exactly one caller.
type ExpiringStore interface {
	// Add stores value under key for ttl if no live entry exists and reports whether it did.
	// A ttl <= 0 creates an entry that is already expired: Add reports true but the entry is
	// never observable.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Exists reports whether a live entry exists for key.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns the live value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Take atomically returns and removes the live value for key, or returns ErrNotFound.
	Take(ctx context.Context, key string) ([]byte, error)

	// Delete removes key and reports whether this call removed a live entry.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// ExpiredPurger is implemented by backends that keep expired rows until they are purged.
type ExpiredPurger interface {
	// CountExpired counts entries whose deadline is before olderThan.
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)

	// DeleteExpired removes entries whose deadline is before olderThan and returns the count.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}
