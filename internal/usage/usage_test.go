package usage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/echelon/internal/model"
)

func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file": func() Store {
			s, err := OpenFileStore(filepath.Join(t.TempDir(), "usage.json"))
			if err != nil {
				t.Fatalf("OpenFileStore failed: %v", err)
			}
			return s
		},
	}
}

func TestStore_Incr(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer func() { _ = s.Close() }()
			ctx := context.Background()
			expire := time.Now().Add(time.Hour)

			for want := int64(1); want <= 3; want++ {
				got, err := s.Incr(ctx, "daily:global:2026-10-19", expire)
				if err != nil {
					t.Fatalf("Incr failed: %v", err)
				}
				if got != want {
					t.Errorf("Incr = %d, want %d", got, want)
				}
			}

			n, err := s.Get(ctx, "daily:global:2026-10-19")
			if err != nil || n != 3 {
				t.Errorf("Get = (%d, %v), want 3", n, err)
			}
			n, err = s.Get(ctx, "missing")
			if err != nil || n != 0 {
				t.Errorf("Get(missing) = (%d, %v), want 0", n, err)
			}
		})
	}
}

func TestStore_Decr(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer func() { _ = s.Close() }()
			ctx := context.Background()
			key := "session:abc:2026-10-19"

			for i := 0; i < 2; i++ {
				if _, err := s.Incr(ctx, key, time.Now().Add(time.Hour)); err != nil {
					t.Fatalf("Incr failed: %v", err)
				}
			}

			for _, want := range []int64{1, 0, 0} {
				got, err := s.Decr(ctx, key)
				if err != nil {
					t.Fatalf("Decr failed: %v", err)
				}
				if got != want {
					t.Errorf("Decr = %d, want %d", got, want)
				}
			}

			// Missing keys are not created
			if n, err := s.Decr(ctx, "missing"); err != nil || n != 0 {
				t.Errorf("Decr(missing) = (%d, %v), want 0", n, err)
			}
			if n, _ := s.Incr(ctx, "missing", time.Now().Add(time.Hour)); n != 1 {
				t.Errorf("Incr after Decr(missing) = %d, want 1", n)
			}
		})
	}
}

func TestStore_ConcurrentIncr(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			ctx := context.Background()
			expire := time.Now().Add(time.Hour)

			var wg sync.WaitGroup
			seen := make([]int64, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					n, err := s.Incr(ctx, "k", expire)
					if err != nil {
						t.Errorf("Incr failed: %v", err)
					}
					seen[i] = n
				}(i)
			}
			wg.Wait()

			// Every increment observed a distinct value
			values := make(map[int64]bool)
			for _, n := range seen {
				values[n] = true
			}
			if len(values) != 50 {
				t.Errorf("expected 50 distinct counter values, got %d", len(values))
			}
		})
	}
}

func TestFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.json")
	ctx := context.Background()
	expire := time.Now().Add(time.Hour)

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Incr(ctx, "session:abc:2026-10-19", expire); err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if n, _ := reopened.Get(ctx, "session:abc:2026-10-19"); n != 2 {
		t.Errorf("expected persisted count 2, got %d", n)
	}
}

func TestFileStore_DropsExpired(t *testing.T) {
	s, err := OpenFileStore(filepath.Join(t.TempDir(), "usage.json"))
	if err != nil {
		t.Fatalf("OpenFileStore failed: %v", err)
	}
	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := s.Incr(ctx, "old", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)

	if n, _ := s.Get(ctx, "old"); n != 0 {
		t.Errorf("expected expired counter to read 0, got %d", n)
	}
	if n, _ := s.Incr(ctx, "old", now.Add(time.Hour)); n != 1 {
		t.Errorf("expected expired counter to restart at 1, got %d", n)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFileStore(path); err == nil {
		t.Error("expected error for corrupt usage file")
	}
}

// Limiter clocks sit in the future so MemoryStore TTLs stay positive
func TestLimiter_Take(t *testing.T) {
	now := time.Date(2099, 10, 19, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(NewMemoryStore(), ScopeSession, 2, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	reset := time.Date(2099, 10, 20, 0, 0, 0, 0, time.UTC)

	a, err := l.Take(ctx, "abc")
	if err != nil {
		t.Fatalf("first Take failed: %v", err)
	}
	if diff := cmp.Diff(Allowance{Allowed: true, Used: 1, Remaining: 1, Ceiling: 2, ResetAt: reset}, a); diff != "" {
		t.Errorf("allowance mismatch (-want +got):\n%s", diff)
	}

	if _, err := l.Take(ctx, "abc"); err != nil {
		t.Fatalf("second Take failed: %v", err)
	}

	a, err = l.Take(ctx, "abc")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if diff := cmp.Diff(Allowance{Allowed: false, Used: 2, Remaining: 0, Ceiling: 2, ResetAt: reset}, a); diff != "" {
		t.Errorf("allowance mismatch (-want +got):\n%s", diff)
	}

	// Other subjects have their own counter
	if _, err := l.Take(ctx, "def"); err != nil {
		t.Errorf("other subject refused: %v", err)
	}
}

func TestLimiter_Refund(t *testing.T) {
	now := time.Date(2099, 10, 19, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(NewMemoryStore(), ScopeSession, 1, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := l.Take(ctx, "abc"); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	// Refused attempts leave the counter at the ceiling
	for i := 0; i < 3; i++ {
		if _, err := l.Take(ctx, "abc"); !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("expected ErrLimitExceeded, got %v", err)
		}
	}

	a, err := l.Refund(ctx, "abc")
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	want := Allowance{Allowed: true, Used: 0, Remaining: 1, Ceiling: 1, ResetAt: time.Date(2099, 10, 20, 0, 0, 0, 0, time.UTC)}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("allowance mismatch (-want +got):\n%s", diff)
	}

	if _, err := l.Take(ctx, "abc"); err != nil {
		t.Errorf("Take after Refund refused: %v", err)
	}

	// Nothing to give back for an unused subject
	a, err = l.Refund(ctx, "def")
	if err != nil || a.Used != 0 || a.Remaining != 1 {
		t.Errorf("Refund(unused) = (%+v, %v)", a, err)
	}
}

func TestLimiter_ResetsAtMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2099, 10, 19, 23, 59, 0, 0, loc)
	l := NewLimiter(NewMemoryStore(), ScopeDaily, 1,
		WithLocation(loc),
		WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := l.Take(ctx, GlobalSubject); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if _, err := l.Take(ctx, GlobalSubject); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded before midnight, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	a, err := l.Take(ctx, GlobalSubject)
	if err != nil {
		t.Fatalf("expected a fresh allowance after midnight, got %v", err)
	}
	if !a.ResetAt.Equal(time.Date(2099, 10, 21, 0, 0, 0, 0, loc)) {
		t.Errorf("unexpected reset time %v", a.ResetAt)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), ScopeDaily, 0)
	for i := 0; i < 10; i++ {
		a, err := l.Take(context.Background(), GlobalSubject)
		if err != nil {
			t.Fatalf("unlimited Take failed: %v", err)
		}
		if !a.Unlimited() || a.Remaining != -1 {
			t.Errorf("expected unlimited allowance, got %+v", a)
		}
	}
}

func TestLimiter_Peek(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), ScopeSession, 1)
	ctx := context.Background()

	a, err := l.Peek(ctx, "abc")
	if err != nil || !a.Allowed || a.Remaining != 1 {
		t.Fatalf("Peek before use = (%+v, %v)", a, err)
	}
	if _, err := l.Take(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	a, _ = l.Peek(ctx, "abc")
	if a.Allowed || a.Remaining != 0 || a.Used != 1 {
		t.Errorf("Peek after use = %+v", a)
	}
	// Peek does not consume
	a, _ = l.Peek(ctx, "abc")
	if a.Used != 1 {
		t.Errorf("Peek consumed a use: %+v", a)
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore(model.UsageConfig{Backend: "memory"}); err != nil {
		t.Errorf("memory backend: %v", err)
	}
	if _, err := NewStore(model.UsageConfig{Backend: "file"}); err == nil {
		t.Error("file backend without path should fail")
	}
	if _, err := NewStore(model.UsageConfig{Backend: "file", FilePath: filepath.Join(t.TempDir(), "u.json")}); err != nil {
		t.Errorf("file backend: %v", err)
	}
	if _, err := NewStore(model.UsageConfig{Backend: "etcd"}); err == nil {
		t.Error("unknown backend should fail")
	}
}
