// Package usage caps how often the web form may be used: a global daily
// ceiling and a per-session ceiling, both resetting at calendar midnight.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/echelon/internal/model"
)

// Store is a set of expiring counters
type Store interface {
	// Incr atomically increments key and returns the new value. A new key
	// starts at zero and is dropped once expireAt passes.
	Incr(ctx context.Context, key string, expireAt time.Time) (int64, error)

	// Get returns the current value of key (0 if absent or expired)
	Get(ctx context.Context, key string) (int64, error)

	// Decr decrements key and returns the new value. It never goes below zero
	// and never creates a missing key.
	Decr(ctx context.Context, key string) (int64, error)

	Close() error
}

// NewStore creates the store named by the configured backend
func NewStore(cfg model.UsageConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("usage.file_path is required for the file backend")
		}
		return OpenFileStore(cfg.FilePath)
	case "redis":
		return NewRedisStore(RedisOptions{Address: cfg.RedisAddr, DB: cfg.RedisDB}), nil
	default:
		return nil, fmt.Errorf("unknown usage backend: %s (supported: memory, file, redis)", cfg.Backend)
	}
}
