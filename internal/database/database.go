// Package database opens the SQL connection pool behind the postgres and mysql store
// backends and carries transactions through context.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	validation "github.com/jellydator/validation"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// defaultPingTimeout bounds the connectivity check when Config.PingTimeout is zero.
const defaultPingTimeout = 5 * time.Second

// Config holds the pool settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	PingTimeout        time.Duration
}

// Validate checks the driver name and pool bounds. Zero pool values mean database/sql
// defaults.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In("postgres", "mysql")),
		validation.Field(&c.ConnectionString, validation.Required),
		validation.Field(&c.MaxOpenConnections, validation.Min(0)),
		validation.Field(&c.MaxIdleConnections,
			validation.Min(0),
			validation.When(c.MaxOpenConnections > 0, validation.Max(c.MaxOpenConnections)),
		),
		validation.Field(&c.ConnMaxLifetime, validation.Min(time.Duration(0))),
	)
}

// Connect opens the pool and pings it once. The pool is closed again when the ping fails.
func Connect(cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
