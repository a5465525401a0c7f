package domain

import (
	"github.com/awnumar/memguard"
)

// Zero overwrites a byte slice with zeros to clear sensitive data from memory.
//
// The Go runtime may have copied the data elsewhere (string conversions, slice growth,
// garbage collector moves), so this is a best-effort scrub, not a guarantee.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}
