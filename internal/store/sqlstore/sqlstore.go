// Package sqlstore implements store.ExpiringStore on PostgreSQL and MySQL.
//
// Entries live in the vault_entries table. Readers ignore rows whose expires_at has passed;
// those rows stay until DeleteExpired purges them.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/allisson/quickie/internal/errors"
	"github.com/allisson/quickie/internal/store"
)

// ErrZeroCutoff rejects a purge without a cutoff, which would otherwise match every row.
var ErrZeroCutoff = apperrors.Wrap(apperrors.ErrInvalidInput, "olderThan timestamp cannot be zero")

// Store is an ExpiringStore that can also purge expired rows.
type Store interface {
	store.ExpiringStore
	store.ExpiredPurger
}

// Option configures a SQL store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the store implementation for driver ("postgres" or "mysql").
func New(driver string, db *sql.DB, opts ...Option) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgreSQLStore(db, opts...), nil
	case "mysql":
		return NewMySQLStore(db, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
