// Package cache provides layered caching for fetched articles and
// scholarly enrichment lookups. Completion responses are never cached.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a namespace and a lookup value (URL or
// search query)
func Key(namespace, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "scicheck:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
