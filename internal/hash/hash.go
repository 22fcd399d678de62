// Package hash implements the credential digest the door controller and the
// registry tooling agreed on long before this server existed: the low bytes
// of the input's UTF-16 code units are hashed with SHA-256, that digest is
// hashed again with SHA-1, and the result is hex-encoded. Changing it would
// invalidate every stored pin_hash/card_hash, so it stays as is.
package hash

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf16"
)

func Digest(input string) string {
	units := utf16.Encode([]rune(input))
	raw := make([]byte, len(units))
	for i, u := range units {
		raw[i] = byte(u)
	}

	first := sha256.Sum256(raw)
	second := sha1.Sum(first[:])
	return hex.EncodeToString(second[:])
}
