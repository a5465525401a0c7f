// Package domain defines the core domain models, policy and errors for one-time secrets.
//
// A secret is encrypted under a key derived from a password, stored as a Bundle
// (ciphertext, nonce, salt) in an expiring store, and destroyed on the first successful
// decryption or when its TTL elapses, whichever comes first.
package domain

const (
	// KeyLength is the symmetric key size of NaCl secretbox (XSalsa20-Poly1305).
	KeyLength = 32

	// NonceLength is the nonce size of NaCl secretbox.
	NonceLength = 24

	// SaltLength is the scrypt salt size, matching libsodium's
	// crypto_pwhash_scryptsalsa208sha256_SALTBYTES.
	SaltLength = 32

	// Overhead is the Poly1305 tag size prepended to every secretbox ciphertext.
	Overhead = 16

	// ReferenceSeparator joins the identifier and a generated password in a reference.
	ReferenceSeparator = "&"
)

// KDFParams holds scrypt cost parameters.
type KDFParams struct {
	N int
	R int
	P int
}

// InteractiveKDFParams mirrors libsodium's scryptsalsa208sha256 interactive tier
// (opslimit 2^19, memlimit 2^24), which resolves to N=2^14, r=8, p=1. Browser clients
// using libsodium derive the same key from the same password and salt.
var InteractiveKDFParams = KDFParams{N: 1 << 14, R: 8, P: 1}

// ExpiryPreset is a named expiry choice offered to clients.
type ExpiryPreset struct {
	Hours int    `json:"hours"`
	Label string `json:"label"`
}

// ExpiryPresets lists the expiry choices presented by the share form.
var ExpiryPresets = []ExpiryPreset{
	{Hours: 1, Label: "1 hour"},
	{Hours: 6, Label: "6 hours"},
	{Hours: 24, Label: "24 hours"},
	{Hours: 48, Label: "2 days"},
	{Hours: 168, Label: "1 week"},
	{Hours: 336, Label: "2 weeks"},
}
