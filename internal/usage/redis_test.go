package usage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// Runs against a real server when ECHELON_REDIS_ADDR is set
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ECHELON_REDIS_ADDR")
	if addr == "" {
		t.Skip("ECHELON_REDIS_ADDR not set")
	}

	s := NewRedisStore(RedisOptions{Address: addr})
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	key := fmt.Sprintf("echelon-test:%d", time.Now().UnixNano())
	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, key, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if got != want {
			t.Errorf("Incr = %d, want %d", got, want)
		}
	}

	if n, err := s.Get(ctx, key); err != nil || n != 3 {
		t.Errorf("Get = (%d, %v), want 3", n, err)
	}
	if n, err := s.Get(ctx, key+":missing"); err != nil || n != 0 {
		t.Errorf("Get(missing) = (%d, %v), want 0", n, err)
	}

	if n, err := s.Decr(ctx, key); err != nil || n != 2 {
		t.Errorf("Decr = (%d, %v), want 2", n, err)
	}
	if n, err := s.Decr(ctx, key+":missing"); err != nil || n != 0 {
		t.Errorf("Decr(missing) = (%d, %v), want 0", n, err)
	}
	if n, err := s.Get(ctx, key+":missing"); err != nil || n != 0 {
		t.Errorf("Decr created a missing key: (%d, %v)", n, err)
	}

	l := NewLimiter(s, ScopeSession, 1)
	if _, err := l.Take(ctx, key); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if _, err := l.Take(ctx, key); err == nil {
		t.Error("expected second Take to exceed the ceiling")
	}
	if _, err := l.Refund(ctx, key); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if _, err := l.Take(ctx, key); err != nil {
		t.Errorf("Take after Refund refused: %v", err)
	}
}
