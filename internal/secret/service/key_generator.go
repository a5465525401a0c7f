package service

import (
	"encoding/base64"

	"github.com/allisson/quickie/internal/errors"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// ErrInvalidLength indicates key length bounds with minBytes < 1 or maxBytes < minBytes.
var ErrInvalidLength = errors.Wrap(errors.ErrInvalidInput, "invalid key length bounds")

// randomKeyGenerator implements KeyGenerator.
type randomKeyGenerator struct {
	random RandomSource
}

// NewKeyGenerator creates a KeyGenerator drawing from random.
func NewKeyGenerator(random RandomSource) KeyGenerator {
	return &randomKeyGenerator{random: random}
}

// Generate returns unpadded URL-safe base64 of a random byte string whose length is uniform
// in [minBytes, maxBytes]. Equal bounds give a fixed length: 8 bytes encode to 11 characters,
// 10 to 32 bytes encode to 14 to 43 characters.
func (g *randomKeyGenerator) Generate(minBytes, maxBytes int) (string, error) {
	if minBytes < 1 || maxBytes < minBytes {
		return "", errors.Wrapf(ErrInvalidLength, "[%d, %d]", minBytes, maxBytes)
	}

	length := minBytes
	if maxBytes > minBytes {
		offset, err := g.random.Uniform(uint32(maxBytes - minBytes + 1))
		if err != nil {
			return "", err
		}
		length += int(offset)
	}

	buf, err := g.random.Bytes(length)
	if err != nil {
		return "", err
	}
	defer secretDomain.Zero(buf)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
