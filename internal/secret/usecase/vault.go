package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/allisson/quickie/internal/errors"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
	secretService "github.com/allisson/quickie/internal/secret/service"
	"github.com/allisson/quickie/internal/store"
)

var selfTestProbe = []byte("quickie self-test")

// vault implements Vault on top of an ExpiringStore.
type vault struct {
	cfg     secretDomain.VaultConfig
	store   store.ExpiringStore
	random  secretService.RandomSource
	keys    secretService.KeyGenerator
	deriver secretService.KeyDeriver
	cipher  secretService.Cipher
	logger  *slog.Logger

	// decoySalt feeds the derivation run for unknown ids.
	decoySalt []byte
}

// NewVault validates cfg, runs an encrypt/decrypt self-test and returns the vault.
// A failing self-test means the crypto stack is unusable and the process should not start.
func NewVault(
	cfg secretDomain.VaultConfig,
	st store.ExpiringStore,
	random secretService.RandomSource,
	keys secretService.KeyGenerator,
	deriver secretService.KeyDeriver,
	cipher secretService.Cipher,
	logger *slog.Logger,
) (Vault, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &vault{
		cfg:     cfg,
		store:   st,
		random:  random,
		keys:    keys,
		deriver: deriver,
		cipher:  cipher,
		logger:  logger,

		decoySalt: make([]byte, cfg.SaltLength),
	}
	if err := v.selfTest(); err != nil {
		return nil, fmt.Errorf("vault self-test failed: %w", err)
	}
	return v, nil
}

func (v *vault) Store(
	ctx context.Context,
	plaintext []byte,
	expiryHours int,
	password []byte,
) (*secretDomain.Reference, error) {
	defer secretDomain.Zero(plaintext)
	defer secretDomain.Zero(password)

	if len(plaintext) == 0 {
		return nil, secretDomain.ErrEmptySecret
	}
	if v.cfg.MaxSecretBytes > 0 && len(plaintext) > v.cfg.MaxSecretBytes {
		return nil, secretDomain.ErrSecretTooLarge
	}
	ttl, err := v.ttl(expiryHours)
	if err != nil {
		return nil, err
	}

	ref := &secretDomain.Reference{}
	if len(password) == 0 {
		generated, err := v.keys.Generate(v.cfg.PasswordMinBytes, v.cfg.PasswordMaxBytes)
		if err != nil {
			return nil, err
		}
		ref.Password = generated
		ref.Generated = true
		password = []byte(generated)
	}

	salt, err := v.random.Bytes(v.cfg.SaltLength)
	if err != nil {
		return nil, err
	}
	nonce, err := v.random.Bytes(v.cfg.NonceLength)
	if err != nil {
		return nil, err
	}

	key, err := v.deriver.Derive(password, salt)
	if err != nil {
		return nil, err
	}
	defer secretDomain.Zero(key)

	ciphertext, err := v.cipher.Encrypt(plaintext, key, nonce)
	if err != nil {
		return nil, err
	}

	data, err := secretDomain.EncodeBundle(&secretDomain.Bundle{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Salt:       salt,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode bundle")
	}

	id, err := v.insert(ctx, data, ttl)
	if err != nil {
		return nil, err
	}
	ref.ID = id
	return ref, nil
}

func (v *vault) StoreEncrypted(ctx context.Context, bundle *secretDomain.Bundle, expiryHours int) (string, error) {
	if bundle == nil {
		return "", secretDomain.ErrInvalidBundle
	}
	if err := bundle.Validate(v.cfg.NonceLength, v.cfg.SaltLength); err != nil {
		return "", fmt.Errorf("%w: %v", secretDomain.ErrInvalidBundle, err)
	}
	if v.cfg.MaxSecretBytes > 0 && len(bundle.Ciphertext)-secretDomain.Overhead > v.cfg.MaxSecretBytes {
		return "", secretDomain.ErrSecretTooLarge
	}
	ttl, err := v.ttl(expiryHours)
	if err != nil {
		return "", err
	}

	data, err := secretDomain.EncodeBundle(bundle)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode bundle")
	}
	return v.insert(ctx, data, ttl)
}

func (v *vault) RetrieveEncrypted(ctx context.Context, id string, del bool) (*secretDomain.Bundle, error) {
	if err := secretDomain.ValidateID(id); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	if del {
		data, err = v.store.Take(ctx, v.key(id))
	} else {
		data, err = v.store.Get(ctx, v.key(id))
	}
	if err != nil {
		return nil, v.storeReadError(err)
	}

	bundle, err := secretDomain.DecodeBundle(data, v.cfg.NonceLength, v.cfg.SaltLength)
	if err != nil {
		return nil, unavailable(err)
	}
	return bundle, nil
}

func (v *vault) Retrieve(ctx context.Context, id string, password []byte) ([]byte, error) {
	defer secretDomain.Zero(password)

	if err := secretDomain.ValidateID(id); err != nil {
		return nil, err
	}

	data, err := v.store.Get(ctx, v.key(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			v.decoyDerive(password)
		}
		return nil, v.storeReadError(err)
	}

	bundle, err := secretDomain.DecodeBundle(data, v.cfg.NonceLength, v.cfg.SaltLength)
	if err != nil {
		return nil, unavailable(err)
	}

	key, err := v.deriver.Derive(password, bundle.Salt)
	if err != nil {
		return nil, err
	}
	defer secretDomain.Zero(key)

	plaintext, err := v.cipher.Decrypt(bundle.Ciphertext, key, bundle.Nonce)
	if err != nil {
		if errors.Is(err, secretDomain.ErrDecryptionFailed) {
			return nil, unavailable(err)
		}
		return nil, err
	}

	// Only the caller whose delete removed the record may see the plaintext.
	deleted, err := v.store.Delete(ctx, v.key(id))
	if err != nil {
		secretDomain.Zero(plaintext)
		return nil, apperrors.Wrap(err, "failed to delete secret")
	}
	if !deleted {
		secretDomain.Zero(plaintext)
		return nil, unavailable(secretDomain.ErrAlreadyConsumed)
	}
	return plaintext, nil
}

// decoyDerive spends one key derivation so an unknown id costs as much as a wrong password.
func (v *vault) decoyDerive(password []byte) {
	key, err := v.deriver.Derive(password, v.decoySalt)
	if err == nil {
		secretDomain.Zero(key)
	}
}

// insert allocates a fresh identifier, regenerating it on collision.
func (v *vault) insert(ctx context.Context, data []byte, ttl time.Duration) (string, error) {
	for attempt := 1; attempt <= v.cfg.MaxIDAttempts; attempt++ {
		id, err := v.keys.Generate(v.cfg.IDMinBytes, v.cfg.IDMaxBytes)
		if err != nil {
			return "", err
		}

		added, err := v.store.Add(ctx, v.key(id), data, ttl)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to store secret")
		}
		if added {
			return id, nil
		}

		v.logger.Warn("secret identifier collision", slog.Int("attempt", attempt))
	}
	return "", secretDomain.ErrIDAllocationFailed
}

func (v *vault) ttl(expiryHours int) (time.Duration, error) {
	if expiryHours < 0 || expiryHours > v.cfg.MaxExpiryHours {
		return 0, secretDomain.ErrInvalidExpiry
	}
	return time.Duration(expiryHours) * time.Hour, nil
}

func (v *vault) key(id string) string {
	return v.cfg.StorePrefix + id
}

func (v *vault) storeReadError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return unavailable(secretDomain.ErrRecordNotFound)
	case errors.Is(err, store.ErrCorrupted):
		v.logger.Error("stored secret cannot be decoded", slog.Any("error", err))
		return unavailable(fmt.Errorf("%w: %w", secretDomain.ErrMalformedBundle, err))
	default:
		return apperrors.Wrap(err, "failed to read secret")
	}
}

func (v *vault) selfTest() error {
	salt, err := v.random.Bytes(v.cfg.SaltLength)
	if err != nil {
		return err
	}
	nonce, err := v.random.Bytes(v.cfg.NonceLength)
	if err != nil {
		return err
	}

	key, err := v.deriver.Derive([]byte("self-test"), salt)
	if err != nil {
		return err
	}
	defer secretDomain.Zero(key)

	ciphertext, err := v.cipher.Encrypt(selfTestProbe, key, nonce)
	if err != nil {
		return err
	}
	plaintext, err := v.cipher.Decrypt(ciphertext, key, nonce)
	if err != nil {
		return err
	}
	if !bytes.Equal(plaintext, selfTestProbe) {
		return errors.New("decrypted probe does not match")
	}
	return nil
}

// unavailable hides cause behind ErrSecretUnavailable while keeping it in the chain.
func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", secretDomain.ErrSecretUnavailable, cause)
}
