package service

import (
	"fmt"

	"golang.org/x/crypto/scrypt"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// ScryptDeriver implements KeyDeriver with scrypt.
//
// The default parameters are the interactive tier: tens of milliseconds per derivation.
// Secrets are short-lived and low value, so responsiveness wins over maximal brute-force cost.
type ScryptDeriver struct {
	params     secretDomain.KDFParams
	keyLength  int
	saltLength int
}

// NewScryptDeriver creates a deriver producing keyLength-byte keys from saltLength-byte salts.
func NewScryptDeriver(params secretDomain.KDFParams, keyLength, saltLength int) *ScryptDeriver {
	return &ScryptDeriver{
		params:     params,
		keyLength:  keyLength,
		saltLength: saltLength,
	}
}

// Derive runs scrypt over password and salt. The password is wiped before returning.
func (d *ScryptDeriver) Derive(password, salt []byte) ([]byte, error) {
	defer secretDomain.Zero(password)

	if len(salt) != d.saltLength {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", d.saltLength, len(salt))
	}

	key, err := scrypt.Key(password, salt, d.params.N, d.params.R, d.params.P, d.keyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
