package usage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps counters in process memory. Counts are lost on restart.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Incr increments key, creating it with the given expiry if needed
func (s *MemoryStore) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		ttl := time.Until(expireAt)
		if ttl <= 0 {
			ttl = time.Millisecond
		}
		// Add fails when the key exists, which is the common case
		_ = s.cache.Add(key, int64(0), ttl)

		n, err := s.cache.IncrementInt64(key, 1)
		if err == nil {
			return n, nil
		}
		// Expired between Add and Increment; start over
	}
}

// Get returns the current count for key
func (s *MemoryStore) Get(ctx context.Context, key string) (int64, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, nil
	}
	n, _ := v.(int64)
	return n, nil
}

// Decr decrements key, stopping at zero
func (s *MemoryStore) Decr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.cache.DecrementInt64(key, 1)
	if err != nil {
		// Missing or expired
		return 0, nil
	}
	if n < 0 {
		n, _ = s.cache.IncrementInt64(key, 1)
	}
	return n, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
