// Package service provides the cryptographic building blocks of the vault: random
// identifiers and passwords, scrypt key derivation, NaCl secretbox encryption and
// word-list passphrases.
package service

// KeyGenerator produces URL-safe random strings.
type KeyGenerator interface {
	// Generate draws a byte length uniformly from [minBytes, maxBytes], reads that many
	// bytes from the CSPRNG and returns them as unpadded URL-safe base64.
	Generate(minBytes, maxBytes int) (string, error)
}

// KeyDeriver turns a password and salt into a symmetric key.
type KeyDeriver interface {
	// Derive returns a key of the configured length. The password buffer is wiped
	// before Derive returns, whether or not derivation succeeded.
	Derive(password, salt []byte) ([]byte, error)
}

// Cipher provides authenticated symmetric encryption with caller-supplied nonces.
type Cipher interface {
	// Encrypt seals plaintext under key and nonce. The result carries the authentication tag.
	Encrypt(plaintext, key, nonce []byte) ([]byte, error)

	// Decrypt opens ciphertext. A tag that does not verify returns domain.ErrDecryptionFailed,
	// the ordinary outcome of a wrong password.
	Decrypt(ciphertext, key, nonce []byte) ([]byte, error)
}

// RandomSource draws secure random bytes and bounded integers.
type RandomSource interface {
	Bytes(n int) ([]byte, error)
	Uniform(n uint32) (uint32, error)
}
