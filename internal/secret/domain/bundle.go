package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Bundle is the only persisted form of a secret: the secretbox ciphertext, the nonce it
// was sealed with, and the scrypt salt used to derive the key. Plaintext and password are
// never part of it.
//
// On the wire and in the store it is the JSON object {"text", "nonce", "salt"} with every
// field hex encoded, which is also what browser clients that decrypt locally consume.
type Bundle struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
}

type bundleJSON struct {
	Text  string `json:"text"`
	Nonce string `json:"nonce"`
	Salt  string `json:"salt"`
}

// MarshalJSON encodes the bundle as hex fields.
func (b Bundle) MarshalJSON() ([]byte, error) {
	return json.Marshal(bundleJSON{
		Text:  hex.EncodeToString(b.Ciphertext),
		Nonce: hex.EncodeToString(b.Nonce),
		Salt:  hex.EncodeToString(b.Salt),
	})
}

// UnmarshalJSON decodes hex fields. Unknown keys and missing keys are rejected; lengths
// are checked separately by Validate.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw bundleJSON
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	if raw.Text == "" || raw.Nonce == "" || raw.Salt == "" {
		return fmt.Errorf("decode bundle: text, nonce and salt are required")
	}

	ciphertext, err := hex.DecodeString(raw.Text)
	if err != nil {
		return fmt.Errorf("decode bundle text: %w", err)
	}
	nonce, err := hex.DecodeString(raw.Nonce)
	if err != nil {
		return fmt.Errorf("decode bundle nonce: %w", err)
	}
	salt, err := hex.DecodeString(raw.Salt)
	if err != nil {
		return fmt.Errorf("decode bundle salt: %w", err)
	}

	b.Ciphertext = ciphertext
	b.Nonce = nonce
	b.Salt = salt
	return nil
}

// Validate checks the fixed field lengths. The ciphertext must at least hold the
// Poly1305 tag.
func (b *Bundle) Validate(nonceLength, saltLength int) error {
	if len(b.Nonce) != nonceLength {
		return fmt.Errorf("nonce must be %d bytes, got %d", nonceLength, len(b.Nonce))
	}
	if len(b.Salt) != saltLength {
		return fmt.Errorf("salt must be %d bytes, got %d", saltLength, len(b.Salt))
	}
	if len(b.Ciphertext) < Overhead {
		return fmt.Errorf("ciphertext must be at least %d bytes, got %d", Overhead, len(b.Ciphertext))
	}
	return nil
}

// EncodeBundle serializes a bundle for persistence.
func EncodeBundle(b *Bundle) ([]byte, error) {
	return json.Marshal(b)
}

// DecodeBundle parses and validates a persisted bundle. Any defect is reported as
// ErrMalformedBundle; partial recovery is never attempted.
func DecodeBundle(data []byte, nonceLength, saltLength int) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBundle, err)
	}
	if err := b.Validate(nonceLength, saltLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBundle, err)
	}
	return &b, nil
}
