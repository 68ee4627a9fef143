// Package ident generates the fixed-length random identifiers used for
// accounts and codes.
package ident

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Length is the identifier length used across the service.
const Length = 16

// New returns a random alphanumeric string of n characters, drawn from
// crypto/rand. At 16 characters over a 62-symbol alphabet the collision
// probability is negligible; uniqueness is additionally backed by primary-key
// constraints in the store.
func New(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform's entropy source is
			// broken; nothing sensible to do but stop.
			panic("ident: reading random source: " + err.Error())
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf)
}
