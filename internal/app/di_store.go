package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gocloud.dev/secrets"

	"github.com/allisson/quickie/internal/config"
	"github.com/allisson/quickie/internal/metrics"
	"github.com/allisson/quickie/internal/store"
	"github.com/allisson/quickie/internal/store/memory"
	"github.com/allisson/quickie/internal/store/redisstore"
	"github.com/allisson/quickie/internal/store/sealed"
	"github.com/allisson/quickie/internal/store/sqlstore"
)

// startupTimeout bounds connection checks against external stores and KMS at startup.
const startupTimeout = 10 * time.Second

// RedisClient returns the Redis client for the redis backend.
func (c *Container) RedisClient() (*redis.Client, error) {
	err := c.once(&c.redisClientInit, "redisClient", func() error {
		ctx, cancel := context.WithTimeout(c.ctx, startupTimeout)
		defer cancel()

		var err error
		c.redisClient, err = redisstore.NewClient(ctx, c.config.RedisURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.redisClient, nil
}

// Keeper returns the KMS keeper used to seal stored values, or nil when sealing is off.
func (c *Container) Keeper() (*secrets.Keeper, error) {
	err := c.once(&c.keeperInit, "keeper", func() error {
		if c.config.StoreKMSKeyURI == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(c.ctx, startupTimeout)
		defer cancel()

		var err error
		c.keeper, err = sealed.OpenKeeper(ctx, c.config.StoreKMSKeyURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.keeper, nil
}

// BackendStore returns the raw store selected by STORE_BACKEND, without sealing.
func (c *Container) BackendStore() (store.ExpiringStore, error) {
	err := c.once(&c.backendInit, "backendStore", func() error {
		var err error
		c.backend, err = c.initBackendStore()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.backend, nil
}

// MemoryStore returns the in-process store when STORE_BACKEND=memory, nil otherwise.
// The server runs its janitor.
func (c *Container) MemoryStore() (*memory.Store, error) {
	if _, err := c.BackendStore(); err != nil {
		return nil, err
	}
	return c.memoryStore, nil
}

// ExpiredPurger returns the purger for SQL backends.
func (c *Container) ExpiredPurger() (store.ExpiredPurger, error) {
	if !c.config.UsesSQLStore() {
		return nil, fmt.Errorf("purging expired entries requires a SQL store backend, got %q", c.config.StoreBackend)
	}
	if _, err := c.BackendStore(); err != nil {
		return nil, err
	}
	return c.purger, nil
}

// Store returns the store handed to the vault: the backend, sealed when a KMS key is set.
func (c *Container) Store() (store.ExpiringStore, error) {
	err := c.once(&c.storeInit, "store", func() error {
		backend, err := c.BackendStore()
		if err != nil {
			return err
		}

		keeper, err := c.Keeper()
		if err != nil {
			return fmt.Errorf("failed to open store keeper: %w", err)
		}
		if keeper == nil {
			c.store = backend
			return nil
		}

		c.Logger().Info("store sealing enabled")
		c.store = sealed.New(backend, keeper)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *Container) initBackendStore() (store.ExpiringStore, error) {
	logger := c.Logger()

	switch c.config.StoreBackend {
	case config.StoreBackendMemory:
		logger.Warn("using in-process memory store: secrets are lost on restart and not shared between instances")
		c.memoryStore = memory.New()
		if err := c.registerStoreGauge(c.memoryStore.Len); err != nil {
			return nil, err
		}
		return c.memoryStore, nil

	case config.StoreBackendRedis:
		client, err := c.RedisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis client for store: %w", err)
		}
		return redisstore.New(client), nil

	case config.StoreBackendPostgres, config.StoreBackendMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for store: %w", err)
		}
		sqlStore, err := sqlstore.New(c.config.DBDriver, db)
		if err != nil {
			return nil, err
		}
		c.purger = sqlStore
		return sqlStore, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", c.config.StoreBackend)
	}
}

// registerStoreGauge exports the entry count of an in-process store when metrics are enabled.
func (c *Container) registerStoreGauge(entries func() int) error {
	provider, err := c.MetricsProvider()
	if err != nil || provider == nil {
		return err
	}
	return metrics.RegisterStoreGauge(
		provider.MeterProvider(),
		c.config.MetricsNamespace,
		c.config.StoreBackend,
		entries,
	)
}

// logStore records which backend is in use, without connection secrets.
func logStore(logger *slog.Logger, cfg *config.Config) {
	logger.Info("store configured",
		slog.String("backend", cfg.StoreBackend),
		slog.Bool("sealed", cfg.StoreKMSKeyURI != ""),
		slog.String("prefix", cfg.StorePrefix),
	)
}
