package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	secretService "github.com/allisson/quickie/internal/secret/service"
	"github.com/allisson/quickie/internal/store"
	"github.com/allisson/quickie/internal/store/memory"
	storeMocks "github.com/allisson/quickie/internal/store/mocks"
	"github.com/allisson/quickie/internal/store/sealed"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestNewVault(t *testing.T) {
	cfg := testConfig()
	random := secretService.NewEntropy(nil)
	deriver := secretService.NewScryptDeriver(cfg.KDF, cfg.KeyLength, cfg.SaltLength)

	t.Run("Error_InvalidConfig", func(t *testing.T) {
		bad := cfg
		bad.MaxIDAttempts = 0

		v, err := NewVault(bad, nil, random, secretService.NewKeyGenerator(random), deriver,
			secretService.NewSecretBoxCipher(), testLogger())
		assert.ErrorIs(t, err, secretDomain.ErrInvalidConfig)
		assert.Nil(t, v)
	})

	t.Run("Error_EntropyUnavailable", func(t *testing.T) {
		broken := secretService.NewEntropy(failingReader{})

		v, err := NewVault(cfg, nil, broken, secretService.NewKeyGenerator(broken), deriver,
			secretService.NewSecretBoxCipher(), testLogger())
		assert.ErrorIs(t, err, secretDomain.ErrEntropyUnavailable)
		assert.Nil(t, v)
	})

	t.Run("Error_SelfTestMismatch", func(t *testing.T) {
		v, err := NewVault(cfg, nil, random, secretService.NewKeyGenerator(random), deriver,
			brokenCipher{Cipher: secretService.NewSecretBoxCipher()}, testLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault self-test failed")
		assert.Nil(t, v)
	})
}

func TestVault_RoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CallerPassword", func(t *testing.T) {
		f := newFixture(t)

		ref, err := f.vault.Store(ctx, bytesOf("attack at dawn"), 24, bytesOf("hunter2"))
		require.NoError(t, err)
		assert.False(t, ref.Generated)
		assert.Empty(t, ref.Password)
		assert.Equal(t, ref.ID, ref.String())

		plaintext, err := f.vault.Retrieve(ctx, ref.ID, bytesOf("hunter2"))
		require.NoError(t, err)
		assert.Equal(t, "attack at dawn", string(plaintext))
	})

	t.Run("Success_GeneratedPassword", func(t *testing.T) {
		f := newFixture(t)

		ref, err := f.vault.Store(ctx, bytesOf("hello"), 1, nil)
		require.NoError(t, err)

		assert.Len(t, ref.ID, 11)
		assert.Regexp(t, urlSafe, ref.ID)
		assert.True(t, ref.Generated)
		assert.GreaterOrEqual(t, len(ref.Password), 14)
		assert.LessOrEqual(t, len(ref.Password), 43)
		assert.Regexp(t, urlSafe, ref.Password)
		assert.Equal(t, ref.ID+"&"+ref.Password, ref.String())

		plaintext, err := f.vault.Retrieve(ctx, ref.ID, []byte(ref.Password))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(plaintext))

		// Consumed: the same reference never works twice.
		_, err = f.vault.Retrieve(ctx, ref.ID, []byte(ref.Password))
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
		assert.ErrorIs(t, err, secretDomain.ErrRecordNotFound)
	})

	t.Run("Success_BinaryPlaintext", func(t *testing.T) {
		f := newFixture(t)
		payload := []byte{0x00, 0xFF, 0x10, 0x00, 0x7F}

		ref, err := f.vault.Store(ctx, append([]byte(nil), payload...), 24, bytesOf("pw"))
		require.NoError(t, err)

		plaintext, err := f.vault.Retrieve(ctx, ref.ID, bytesOf("pw"))
		require.NoError(t, err)
		assert.Equal(t, payload, plaintext)
	})
}

func TestVault_WrongPasswordIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("right"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.vault.Retrieve(ctx, ref.ID, bytesOf("wrong"))
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
		assert.ErrorIs(t, err, secretDomain.ErrDecryptionFailed)
	}

	exists, err := f.store.Exists(ctx, f.cfg.StorePrefix+ref.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	plaintext, err := f.vault.Retrieve(ctx, ref.ID, bytesOf("right"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plaintext))
}

func TestVault_Indistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("right"))
	require.NoError(t, err)

	_, wrongErr := f.vault.Retrieve(ctx, ref.ID, bytesOf("wrong"))
	_, absentErr := f.vault.Retrieve(ctx, "AAAAAAAAAAA", bytesOf("right"))

	require.Error(t, wrongErr)
	require.Error(t, absentErr)
	assert.ErrorIs(t, wrongErr, secretDomain.ErrSecretUnavailable)
	assert.ErrorIs(t, absentErr, secretDomain.ErrSecretUnavailable)
}

func TestVault_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("ElapsedTTL", func(t *testing.T) {
		f := newFixture(t)

		ref, err := f.vault.Store(ctx, bytesOf("payload"), 1, bytesOf("pw"))
		require.NoError(t, err)

		f.clock.Advance(59 * time.Minute)
		exists, err := f.store.Exists(ctx, f.cfg.StorePrefix+ref.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		f.clock.Advance(time.Minute)
		_, err = f.vault.Retrieve(ctx, ref.ID, bytesOf("pw"))
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)

		_, err = f.vault.RetrieveEncrypted(ctx, ref.ID, false)
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	})

	t.Run("ZeroExpiryIsNeverRetrievable", func(t *testing.T) {
		f := newFixture(t)

		ref, err := f.vault.Store(ctx, bytesOf("payload"), 0, bytesOf("pw"))
		require.NoError(t, err)
		assert.NotEmpty(t, ref.ID)

		_, err = f.vault.Retrieve(ctx, ref.ID, bytesOf("pw"))
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	})

	t.Run("Error_InvalidExpiry", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.vault.Store(ctx, bytesOf("payload"), -1, bytesOf("pw"))
		assert.ErrorIs(t, err, secretDomain.ErrInvalidExpiry)

		_, err = f.vault.Store(ctx, bytesOf("payload"), f.cfg.MaxExpiryHours+1, bytesOf("pw"))
		assert.ErrorIs(t, err, secretDomain.ErrInvalidExpiry)

		ref, err := f.vault.Store(ctx, bytesOf("payload"), f.cfg.MaxExpiryHours, bytesOf("pw"))
		require.NoError(t, err)
		assert.NotEmpty(t, ref.ID)
	})
}

func TestVault_AtMostOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.vault.Store(ctx, bytesOf("only once"), 24, bytesOf("pw"))
	require.NoError(t, err)

	const readers = 8
	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plaintext, err := f.vault.Retrieve(ctx, ref.ID, bytesOf("pw"))
			if err == nil {
				assert.Equal(t, "only once", string(plaintext))
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestVault_LostDeleteRace(t *testing.T) {
	ctx := context.Background()
	mockStore := &storeMocks.MockExpiringStore{}
	f := newFixtureWith(t, nil, mockStore)

	var persisted []byte
	mockStore.On("Add", ctx, mock.AnythingOfType("string"), mock.Anything, 24*time.Hour).
		Run(func(args mock.Arguments) {
			persisted = append([]byte(nil), args.Get(2).([]byte)...)
		}).
		Return(true, nil).
		Once()

	ref, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("pw"))
	require.NoError(t, err)

	key := f.cfg.StorePrefix + ref.ID
	mockStore.On("Get", ctx, key).Return(persisted, nil).Once()
	mockStore.On("Delete", ctx, key).Return(false, nil).Once()

	_, err = f.vault.Retrieve(ctx, ref.ID, bytesOf("pw"))
	assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	assert.ErrorIs(t, err, secretDomain.ErrAlreadyConsumed)
	mockStore.AssertExpectations(t)
}

func TestVault_IdentifierAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RetriesOnCollision", func(t *testing.T) {
		keys := &scriptedKeys{
			ids:      []string{"AAAAAAAAAAA", "AAAAAAAAAAA", "BBBBBBBBBBB"},
			fallback: secretService.NewKeyGenerator(secretService.NewEntropy(nil)),
		}
		f := newFixtureWith(t, keys, nil)

		_, err := f.store.Add(ctx, f.cfg.StorePrefix+"AAAAAAAAAAA", []byte("occupied"), time.Hour)
		require.NoError(t, err)

		ref, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("pw"))
		require.NoError(t, err)
		assert.Equal(t, "BBBBBBBBBBB", ref.ID)

		// The occupant is untouched.
		occupant, err := f.store.Get(ctx, f.cfg.StorePrefix+"AAAAAAAAAAA")
		require.NoError(t, err)
		assert.Equal(t, []byte("occupied"), occupant)
	})

	t.Run("Error_Exhausted", func(t *testing.T) {
		mockStore := &storeMocks.MockExpiringStore{}
		f := newFixtureWith(t, nil, mockStore)

		mockStore.On("Add", ctx, mock.AnythingOfType("string"), mock.Anything, 24*time.Hour).
			Return(false, nil).
			Times(f.cfg.MaxIDAttempts)

		ref, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("pw"))
		assert.ErrorIs(t, err, secretDomain.ErrIDAllocationFailed)
		assert.Nil(t, ref)
		mockStore.AssertExpectations(t)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		mockStore := &storeMocks.MockExpiringStore{}
		f := newFixtureWith(t, nil, mockStore)

		mockStore.On("Add", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(false, errors.New("connection refused")).
			Once()

		_, err := f.vault.Store(ctx, bytesOf("payload"), 24, bytesOf("pw"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store secret")
		assert.NotErrorIs(t, err, secretDomain.ErrIDAllocationFailed)
	})
}

func TestVault_PersistedForm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.vault.Store(ctx, bytesOf("very secret plaintext"), 24, bytesOf("my password"))
	require.NoError(t, err)

	raw, err := f.store.Get(ctx, f.cfg.StorePrefix+ref.ID)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "very secret plaintext")
	assert.NotContains(t, string(raw), "my password")

	var fields map[string]string
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 3)
	for _, k := range []string{"text", "nonce", "salt"} {
		assert.Regexp(t, `^[0-9a-f]+$`, fields[k])
	}
	assert.Len(t, fields["nonce"], 2*secretDomain.NonceLength)
	assert.Len(t, fields["salt"], 2*secretDomain.SaltLength)
	assert.Len(t, fields["text"], 2*(len("very secret plaintext")+secretDomain.Overhead))
}

func TestVault_WipesBuffers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plaintext := bytesOf("wipe me")
	password := bytesOf("and me")

	ref, err := f.vault.Store(ctx, plaintext, 24, password)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(plaintext)), plaintext)
	assert.Equal(t, make([]byte, len(password)), password)

	retrievePassword := bytesOf("and me")
	_, err = f.vault.Retrieve(ctx, ref.ID, retrievePassword)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(retrievePassword)), retrievePassword)
}

func TestVault_StoreValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.vault.Store(ctx, nil, 24, bytesOf("pw"))
	assert.ErrorIs(t, err, secretDomain.ErrEmptySecret)

	_, err = f.vault.Store(ctx, make([]byte, f.cfg.MaxSecretBytes+1), 24, bytesOf("pw"))
	assert.ErrorIs(t, err, secretDomain.ErrSecretTooLarge)
}

func TestVault_Encrypted(t *testing.T) {
	ctx := context.Background()

	clientBundle := func(t *testing.T, plaintext, password string) *secretDomain.Bundle {
		t.Helper()
		cfg := testConfig()
		random := secretService.NewEntropy(nil)

		salt, err := random.Bytes(cfg.SaltLength)
		require.NoError(t, err)
		nonce, err := random.Bytes(cfg.NonceLength)
		require.NoError(t, err)
		key, err := secretService.NewScryptDeriver(cfg.KDF, cfg.KeyLength, cfg.SaltLength).
			Derive([]byte(password), salt)
		require.NoError(t, err)
		ciphertext, err := secretService.NewSecretBoxCipher().Encrypt([]byte(plaintext), key, nonce)
		require.NoError(t, err)

		return &secretDomain.Bundle{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}
	}

	t.Run("Success_PeekThenBurn", func(t *testing.T) {
		f := newFixture(t)
		bundle := clientBundle(t, "from the browser", "pw")

		id, err := f.vault.StoreEncrypted(ctx, bundle, 24)
		require.NoError(t, err)
		assert.Len(t, id, 11)

		peeked, err := f.vault.RetrieveEncrypted(ctx, id, false)
		require.NoError(t, err)
		assert.Equal(t, bundle, peeked)

		burned, err := f.vault.RetrieveEncrypted(ctx, id, true)
		require.NoError(t, err)
		assert.Equal(t, bundle, burned)

		_, err = f.vault.RetrieveEncrypted(ctx, id, true)
		assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	})

	t.Run("Success_ServerCanDecryptClientBundle", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.vault.StoreEncrypted(ctx, clientBundle(t, "interop", "shared pw"), 24)
		require.NoError(t, err)

		plaintext, err := f.vault.Retrieve(ctx, id, bytesOf("shared pw"))
		require.NoError(t, err)
		assert.Equal(t, "interop", string(plaintext))
	})

	t.Run("Error_InvalidBundle", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.vault.StoreEncrypted(ctx, nil, 24)
		assert.ErrorIs(t, err, secretDomain.ErrInvalidBundle)

		bundle := clientBundle(t, "x", "pw")
		bundle.Nonce = bundle.Nonce[:12]
		_, err = f.vault.StoreEncrypted(ctx, bundle, 24)
		assert.ErrorIs(t, err, secretDomain.ErrInvalidBundle)

		bundle = clientBundle(t, "x", "pw")
		bundle.Ciphertext = bundle.Ciphertext[:secretDomain.Overhead-1]
		_, err = f.vault.StoreEncrypted(ctx, bundle, 24)
		assert.ErrorIs(t, err, secretDomain.ErrInvalidBundle)
	})

	t.Run("Error_InvalidExpiry", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.vault.StoreEncrypted(ctx, clientBundle(t, "x", "pw"), -5)
		assert.ErrorIs(t, err, secretDomain.ErrInvalidExpiry)
	})
}

func TestVault_CorruptedRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.Add(ctx, f.cfg.StorePrefix+"corrupted01", []byte(`{"text":"zz"}`), time.Hour)
	require.NoError(t, err)

	_, err = f.vault.Retrieve(ctx, "corrupted01", bytesOf("pw"))
	assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	assert.ErrorIs(t, err, secretDomain.ErrMalformedBundle)

	_, err = f.vault.RetrieveEncrypted(ctx, "corrupted01", false)
	assert.ErrorIs(t, err, secretDomain.ErrMalformedBundle)
}

func TestVault_SealedKeeperOutage(t *testing.T) {
	ctx := context.Background()
	keeper := newOutageKeeper(t)
	f := newFixtureWith(t, nil, sealed.New(memory.New(), keeper))

	burnable, err := f.vault.Store(ctx, bytesOf("fetched as bundle"), 24, nil)
	require.NoError(t, err)
	revealable, err := f.vault.Store(ctx, bytesOf("revealed with password"), 24, nil)
	require.NoError(t, err)

	keeper.down.Store(true)

	_, err = f.vault.RetrieveEncrypted(ctx, burnable.ID, true)
	assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	assert.ErrorIs(t, err, secretDomain.ErrMalformedBundle)

	_, err = f.vault.Retrieve(ctx, revealable.ID, bytesOf(revealable.Password))
	assert.ErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	assert.ErrorIs(t, err, secretDomain.ErrMalformedBundle)

	keeper.down.Store(false)

	bundle, err := f.vault.RetrieveEncrypted(ctx, burnable.ID, true)
	require.NoError(t, err)
	assert.NotEmpty(t, bundle.Ciphertext)

	_, err = f.vault.RetrieveEncrypted(ctx, burnable.ID, true)
	assert.ErrorIs(t, err, secretDomain.ErrRecordNotFound)

	plaintext, err := f.vault.Retrieve(ctx, revealable.ID, bytesOf(revealable.Password))
	require.NoError(t, err)
	assert.Equal(t, "revealed with password", string(plaintext))
}

func TestVault_UnknownIDCostsOneDerivation(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	random := secretService.NewEntropy(nil)
	deriver := &countingDeriver{KeyDeriver: secretService.NewScryptDeriver(cfg.KDF, cfg.KeyLength, cfg.SaltLength)}

	v, err := NewVault(cfg, memory.New(), random, secretService.NewKeyGenerator(random), deriver,
		secretService.NewSecretBoxCipher(), testLogger())
	require.NoError(t, err)

	ref, err := v.Store(ctx, bytesOf("timing"), 24, bytesOf("right"))
	require.NoError(t, err)

	deriver.calls.Store(0)
	_, err = v.Retrieve(ctx, ref.ID, bytesOf("wrong"))
	assert.ErrorIs(t, err, secretDomain.ErrDecryptionFailed)
	assert.Equal(t, int32(1), deriver.calls.Load())

	deriver.calls.Store(0)
	_, err = v.Retrieve(ctx, "AAAAAAAAAAA", bytesOf("wrong"))
	assert.ErrorIs(t, err, secretDomain.ErrRecordNotFound)
	assert.Equal(t, int32(1), deriver.calls.Load())
}

func TestVault_InvalidID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.vault.Retrieve(ctx, "not/an/id", bytesOf("pw"))
	assert.ErrorIs(t, err, secretDomain.ErrInvalidID)

	_, err = f.vault.RetrieveEncrypted(ctx, "", true)
	assert.ErrorIs(t, err, secretDomain.ErrInvalidID)
}

func TestVault_BackendFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := &storeMocks.MockExpiringStore{}
	f := newFixtureWith(t, nil, mockStore)

	mockStore.On("Get", ctx, f.cfg.StorePrefix+"AAAAAAAAAAA").
		Return(nil, errors.New("i/o timeout")).
		Once()

	_, err := f.vault.Retrieve(ctx, "AAAAAAAAAAA", bytesOf("pw"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, secretDomain.ErrSecretUnavailable)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	mockStore.AssertExpectations(t)
}
