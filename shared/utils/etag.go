package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentETag returns a strong ETag for immutable content.
func ContentETag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
