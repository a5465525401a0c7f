package service

import (
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/allisson/quickie/internal/errors"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

var (
	// ErrInvalidKeySize indicates a key that is not secretbox's 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidNonceSize indicates a nonce that is not secretbox's 24 bytes.
	ErrInvalidNonceSize = errors.Wrap(errors.ErrInvalidInput, "invalid nonce size")
)

// SecretBoxCipher implements Cipher with NaCl secretbox (XSalsa20-Poly1305).
//
// The output layout (16-byte Poly1305 tag followed by the ciphertext) is the same as
// libsodium's crypto_secretbox_easy, so bundles sealed in a browser open here and vice versa.
type SecretBoxCipher struct{}

// NewSecretBoxCipher creates a secretbox cipher.
func NewSecretBoxCipher() *SecretBoxCipher {
	return &SecretBoxCipher{}
}

// Encrypt seals plaintext. The nonce must never be reused with the same key.
func (c *SecretBoxCipher) Encrypt(plaintext, key, nonce []byte) ([]byte, error) {
	k, n, err := toArrays(key, nonce)
	if err != nil {
		return nil, err
	}
	defer secretDomain.Zero(k[:])

	return secretbox.Seal(nil, plaintext, n, k), nil
}

// Decrypt opens ciphertext, returning ErrDecryptionFailed when the tag does not verify.
func (c *SecretBoxCipher) Decrypt(ciphertext, key, nonce []byte) ([]byte, error) {
	k, n, err := toArrays(key, nonce)
	if err != nil {
		return nil, err
	}
	defer secretDomain.Zero(k[:])

	plaintext, ok := secretbox.Open(nil, ciphertext, n, k)
	if !ok {
		return nil, secretDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

func toArrays(key, nonce []byte) (*[secretDomain.KeyLength]byte, *[secretDomain.NonceLength]byte, error) {
	if len(key) != secretDomain.KeyLength {
		return nil, nil, ErrInvalidKeySize
	}
	if len(nonce) != secretDomain.NonceLength {
		return nil, nil, ErrInvalidNonceSize
	}

	var k [secretDomain.KeyLength]byte
	var n [secretDomain.NonceLength]byte
	copy(k[:], key)
	copy(n[:], nonce)
	return &k, &n, nil
}
