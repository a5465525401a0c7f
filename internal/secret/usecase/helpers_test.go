package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets/localsecrets"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	secretService "github.com/allisson/quickie/internal/secret/service"
	"github.com/allisson/quickie/internal/store"
	"github.com/allisson/quickie/internal/store/memory"
	"github.com/allisson/quickie/internal/store/sealed"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedKeys hands out fixed identifiers first and delegates everything else.
type scriptedKeys struct {
	mu       sync.Mutex
	ids      []string
	fallback secretService.KeyGenerator
}

func (k *scriptedKeys) Generate(minBytes, maxBytes int) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if minBytes == 8 && maxBytes == 8 && len(k.ids) > 0 {
		id := k.ids[0]
		k.ids = k.ids[1:]
		return id, nil
	}
	return k.fallback.Generate(minBytes, maxBytes)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy pool closed")
}

// brokenCipher returns garbage on decrypt so the self-test cannot pass.
type brokenCipher struct {
	secretService.Cipher
}

func (brokenCipher) Decrypt([]byte, []byte, []byte) ([]byte, error) {
	return []byte("something else"), nil
}

func testConfig() secretDomain.VaultConfig {
	cfg := secretDomain.DefaultVaultConfig()
	cfg.KDF = secretDomain.KDFParams{N: 1024, R: 8, P: 1}
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type vaultFixture struct {
	vault Vault
	store *memory.Store
	clock *fakeClock
	cfg   secretDomain.VaultConfig
}

func newFixture(t *testing.T) *vaultFixture {
	t.Helper()
	return newFixtureWith(t, nil, nil)
}

func newFixtureWith(t *testing.T, keys secretService.KeyGenerator, st store.ExpiringStore) *vaultFixture {
	t.Helper()

	cfg := testConfig()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	mem := memory.New(memory.WithClock(clock.Now))
	if st == nil {
		st = mem
	}

	random := secretService.NewEntropy(nil)
	if keys == nil {
		keys = secretService.NewKeyGenerator(random)
	}

	v, err := NewVault(
		cfg,
		st,
		random,
		keys,
		secretService.NewScryptDeriver(cfg.KDF, cfg.KeyLength, cfg.SaltLength),
		secretService.NewSecretBoxCipher(),
		testLogger(),
	)
	require.NoError(t, err)

	return &vaultFixture{vault: v, store: mem, clock: clock, cfg: cfg}
}

func bytesOf(s string) []byte {
	return []byte(s)
}

// outageKeeper is a local KMS keeper whose Decrypt fails while down is set.
type outageKeeper struct {
	sealed.Keeper
	down atomic.Bool
}

func (k *outageKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if k.down.Load() {
		return nil, errors.New("kms unavailable")
	}
	return k.Keeper.Decrypt(ctx, ciphertext)
}

func newOutageKeeper(t *testing.T) *outageKeeper {
	t.Helper()
	key, err := localsecrets.NewRandomKey()
	require.NoError(t, err)

	inner, err := sealed.OpenKeeper(context.Background(), "base64key://"+base64.URLEncoding.EncodeToString(key[:]))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = inner.Close()
	})
	return &outageKeeper{Keeper: inner}
}

// countingDeriver counts derivations.
type countingDeriver struct {
	secretService.KeyDeriver
	calls atomic.Int32
}

func (d *countingDeriver) Derive(password, salt []byte) ([]byte, error) {
	d.calls.Add(1)
	return d.KeyDeriver.Derive(password, salt)
}
