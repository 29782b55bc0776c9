package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions holds the connection settings for a RedisStore
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// RedisStore shares counters between server replicas
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects lazily to the given server
func NewRedisStore(options RedisOptions) *RedisStore {
	if options.Address == "" {
		options.Address = "localhost:6379"
	}
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	}))
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr runs INCR and EXPIREAT in one MULTI/EXEC so a counter never outlives its day
func (s *RedisStore) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, expireAt)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Get returns the current count for key
func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return n, nil
}

// decrScript decrements an existing positive counter and leaves its TTL alone
var decrScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]))
if not n or n <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// Decr decrements key, stopping at zero. A missing key is not created.
func (s *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	n, err := decrScript.Run(ctx, s.client, []string{key}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis decr %s: %w", key, err)
	}
	return n, nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
