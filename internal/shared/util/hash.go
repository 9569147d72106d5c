package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// OwnerKey maps an account id to the namespace every storage backend files
// that account's blobs and records under. Surrounding whitespace is ignored.
func OwnerKey(owner string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(owner)))
	return hex.EncodeToString(sum[:])
}
