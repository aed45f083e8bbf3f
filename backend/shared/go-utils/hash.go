// go-utils/hash.go

package utils

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken returns the URL-safe base64 SHA-256 of raw. Visitor ids are
// hashed before they become part of a storage key.
func HashToken(raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(hasher.Sum(nil))
}
