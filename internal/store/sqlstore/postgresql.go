package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/quickie/internal/database"
	apperrors "github.com/allisson/quickie/internal/errors"
	"github.com/allisson/quickie/internal/store"
)

// PostgreSQLStore implements Store for PostgreSQL.
type PostgreSQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgreSQLStore creates a PostgreSQL-backed store.
func NewPostgreSQLStore(db *sql.DB, opts ...Option) *PostgreSQLStore {
	o := buildOptions(opts)
	return &PostgreSQLStore{db: db, now: o.now}
}

// Add inserts the entry, replacing a leftover row only when that row has already expired.
func (p *PostgreSQLStore) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		exists, err := p.Exists(ctx, key)
		if err != nil {
			return false, err
		}
		return !exists, nil
	}

	querier := database.GetTx(ctx, p.db)
	now := p.now().UTC()

	query := `INSERT INTO vault_entries (entry_key, value, created_at, expires_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (entry_key) DO UPDATE
			  SET value = EXCLUDED.value, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
			  WHERE vault_entries.expires_at <= EXCLUDED.created_at`

	result, err := querier.ExecContext(ctx, query, key, value, now, now.Add(ttl))
	if err != nil {
		return false, apperrors.Wrap(err, "failed to add vault entry")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected == 1, nil
}

func (p *PostgreSQLStore) Exists(ctx context.Context, key string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM vault_entries WHERE entry_key = $1 AND expires_at > $2)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, key, p.now().UTC()).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check vault entry")
	}
	return exists, nil
}

func (p *PostgreSQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT value FROM vault_entries WHERE entry_key = $1 AND expires_at > $2`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, p.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault entry")
	}
	return value, nil
}

func (p *PostgreSQLStore) Take(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entries WHERE entry_key = $1 AND expires_at > $2 RETURNING value`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, p.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to take vault entry")
	}
	return value, nil
}

func (p *PostgreSQLStore) Delete(ctx context.Context, key string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entries WHERE entry_key = $1 AND expires_at > $2`

	result, err := querier.ExecContext(ctx, query, key, p.now().UTC())
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete vault entry")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected == 1, nil
}

func (p *PostgreSQLStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CountExpired counts rows whose expires_at is not after olderThan.
func (p *PostgreSQLStore) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, ErrZeroCutoff
	}

	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM vault_entries WHERE expires_at <= $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan.UTC()).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired vault entries")
	}
	return count, nil
}

// DeleteExpired removes rows whose expires_at is not after olderThan.
func (p *PostgreSQLStore) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, ErrZeroCutoff
	}

	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entries WHERE expires_at <= $1`

	result, err := querier.ExecContext(ctx, query, olderThan.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired vault entries")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

var _ Store = (*PostgreSQLStore)(nil)
