package domain

import (
	"fmt"
)

// VaultConfig is the explicit policy handed to the vault and its crypto helpers.
type VaultConfig struct {
	// KeyLength is the derived key size; secretbox requires 32.
	KeyLength int
	// NonceLength is the cipher nonce size; secretbox requires 24.
	NonceLength int
	// SaltLength is the KDF salt size.
	SaltLength int
	// KDF holds the scrypt cost parameters.
	KDF KDFParams

	// DefaultExpiryHours is applied by callers that do not choose an expiry.
	DefaultExpiryHours int
	// MaxExpiryHours bounds the expiry accepted by the vault.
	MaxExpiryHours int

	// IDMinBytes and IDMaxBytes bound the entropy of record identifiers.
	IDMinBytes int
	IDMaxBytes int
	// PasswordMinBytes and PasswordMaxBytes bound the entropy of generated passwords.
	PasswordMinBytes int
	PasswordMaxBytes int
	// MaxIDAttempts bounds identifier regeneration on collision.
	MaxIDAttempts int

	// MaxSecretBytes bounds the plaintext size; zero disables the check.
	MaxSecretBytes int

	// StorePrefix namespaces keys so one cache can be shared across applications.
	StorePrefix string
}

// DefaultVaultConfig returns the production policy.
func DefaultVaultConfig() VaultConfig {
	return VaultConfig{
		KeyLength:          KeyLength,
		NonceLength:        NonceLength,
		SaltLength:         SaltLength,
		KDF:                InteractiveKDFParams,
		DefaultExpiryHours: 24,
		MaxExpiryHours:     336,
		IDMinBytes:         8,
		IDMaxBytes:         8,
		PasswordMinBytes:   10,
		PasswordMaxBytes:   32,
		MaxIDAttempts:      5,
		MaxSecretBytes:     64 * 1024,
		StorePrefix:        "quickie_",
	}
}

// Validate rejects inconsistent policy. Called once at startup.
func (c VaultConfig) Validate() error {
	switch {
	case c.KeyLength != KeyLength:
		return fmt.Errorf("%w: key length must be %d", ErrInvalidConfig, KeyLength)
	case c.NonceLength != NonceLength:
		return fmt.Errorf("%w: nonce length must be %d", ErrInvalidConfig, NonceLength)
	case c.SaltLength < 16:
		return fmt.Errorf("%w: salt length must be at least 16", ErrInvalidConfig)
	case c.KDF.N <= 1 || c.KDF.N&(c.KDF.N-1) != 0:
		return fmt.Errorf("%w: scrypt N must be a power of two greater than 1", ErrInvalidConfig)
	case c.KDF.R <= 0 || c.KDF.P <= 0:
		return fmt.Errorf("%w: scrypt r and p must be positive", ErrInvalidConfig)
	case c.IDMinBytes < 1 || c.IDMaxBytes < c.IDMinBytes:
		return fmt.Errorf("%w: identifier byte bounds", ErrInvalidConfig)
	case c.PasswordMinBytes < 1 || c.PasswordMaxBytes < c.PasswordMinBytes:
		return fmt.Errorf("%w: password byte bounds", ErrInvalidConfig)
	case c.MaxIDAttempts < 1:
		return fmt.Errorf("%w: identifier attempts must be positive", ErrInvalidConfig)
	case c.MaxExpiryHours < 1:
		return fmt.Errorf("%w: max expiry must be positive", ErrInvalidConfig)
	case c.DefaultExpiryHours < 1 || c.DefaultExpiryHours > c.MaxExpiryHours:
		return fmt.Errorf("%w: default expiry must be within 1..%d", ErrInvalidConfig, c.MaxExpiryHours)
	case c.MaxSecretBytes < 0:
		return fmt.Errorf("%w: max secret size cannot be negative", ErrInvalidConfig)
	}
	return nil
}
