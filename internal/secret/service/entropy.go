package service

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// Entropy implements RandomSource on top of an io.Reader. Production code uses
// crypto/rand; tests inject deterministic readers.
type Entropy struct {
	reader io.Reader
}

// NewEntropy creates a RandomSource reading from r. A nil reader selects crypto/rand.
func NewEntropy(r io.Reader) *Entropy {
	if r == nil {
		r = rand.Reader
	}
	return &Entropy{reader: r}
}

// Bytes returns n random bytes. A short read is an environment failure and is reported as
// ErrEntropyUnavailable; there is no fallback source.
func (e *Entropy) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("random byte count cannot be negative: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(e.reader, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", secretDomain.ErrEntropyUnavailable, err)
	}
	return buf, nil
}

// Uniform returns a value in [0, n) without modulo bias, rejecting draws that fall in the
// incomplete final bucket of the 32-bit range.
func (e *Entropy) Uniform(n uint32) (uint32, error) {
	if n == 0 {
		return 0, fmt.Errorf("uniform upper bound must be positive")
	}
	limit := (uint64(1) << 32) / uint64(n) * uint64(n)

	var buf [4]byte
	for {
		if _, err := io.ReadFull(e.reader, buf[:]); err != nil {
			return 0, fmt.Errorf("%w: %v", secretDomain.ErrEntropyUnavailable, err)
		}
		v := uint64(binary.BigEndian.Uint32(buf[:]))
		if v < limit {
			return uint32(v % uint64(n)), nil
		}
	}
}
