// Package cache stores hosted-model replies so a repeated statement does not
// cost a second remote call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for reply caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from its parts (provider, model, statement, ...).
// Parts are joined with the ASCII unit separator so part boundaries affect the hash.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "echelon:v1:" + hex.EncodeToString(hash[:])
}
