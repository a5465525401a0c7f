package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/quickie/internal/database"
	apperrors "github.com/allisson/quickie/internal/errors"
	"github.com/allisson/quickie/internal/store"
)

const mysqlDuplicateEntry = 1062

// MySQLStore implements Store for MySQL. Multi-statement operations run in a transaction
// through database.TxManager.
type MySQLStore struct {
	db        *sql.DB
	txManager database.TxManager
	now       func() time.Time
}

// NewMySQLStore creates a MySQL-backed store.
func NewMySQLStore(db *sql.DB, opts ...Option) *MySQLStore {
	o := buildOptions(opts)
	return &MySQLStore{
		db:        db,
		txManager: database.NewTxManager(db),
		now:       o.now,
	}
}

// Add clears an expired leftover for key and inserts the entry. A duplicate key error means
// a live row already exists.
func (m *MySQLStore) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		exists, err := m.Exists(ctx, key)
		if err != nil {
			return false, err
		}
		return !exists, nil
	}

	now := m.now().UTC()
	inserted := false

	err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, m.db)

		_, err := querier.ExecContext(
			ctx,
			`DELETE FROM vault_entries WHERE entry_key = ? AND expires_at <= ?`,
			key,
			now,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to clear expired vault entry")
		}

		_, err = querier.ExecContext(
			ctx,
			`INSERT INTO vault_entries (entry_key, value, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			key,
			value,
			now,
			now.Add(ttl),
		)
		if err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
				return nil
			}
			return apperrors.Wrap(err, "failed to add vault entry")
		}

		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (m *MySQLStore) Exists(ctx context.Context, key string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM vault_entries WHERE entry_key = ? AND expires_at > ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, key, m.now().UTC()).Scan(&count); err != nil {
		return false, apperrors.Wrap(err, "failed to check vault entry")
	}
	return count > 0, nil
}

func (m *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT value FROM vault_entries WHERE entry_key = ? AND expires_at > ?`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, m.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault entry")
	}
	return value, nil
}

// Take locks the live row, reads it and deletes it in one transaction.
func (m *MySQLStore) Take(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, m.db)

		err := querier.QueryRowContext(
			ctx,
			`SELECT value FROM vault_entries WHERE entry_key = ? AND expires_at > ? FOR UPDATE`,
			key,
			m.now().UTC(),
		).Scan(&value)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return apperrors.Wrap(err, "failed to take vault entry")
		}

		if _, err := querier.ExecContext(ctx, `DELETE FROM vault_entries WHERE entry_key = ?`, key); err != nil {
			return apperrors.Wrap(err, "failed to delete taken vault entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *MySQLStore) Delete(ctx context.Context, key string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM vault_entries WHERE entry_key = ? AND expires_at > ?`

	result, err := querier.ExecContext(ctx, query, key, m.now().UTC())
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete vault entry")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected == 1, nil
}

func (m *MySQLStore) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// CountExpired counts rows whose expires_at is not after olderThan.
func (m *MySQLStore) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, ErrZeroCutoff
	}

	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM vault_entries WHERE expires_at <= ?`,
		olderThan.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired vault entries")
	}
	return count, nil
}

// DeleteExpired removes rows whose expires_at is not after olderThan.
func (m *MySQLStore) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, ErrZeroCutoff
	}

	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM vault_entries WHERE expires_at <= ?`,
		olderThan.UTC(),
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired vault entries")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

var _ Store = (*MySQLStore)(nil)
