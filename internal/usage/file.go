package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists counters in a single JSON file. It is the only writer of
// that file; every increment is written through with a temp-file rename.
type FileStore struct {
	path     string
	mu       sync.Mutex
	counters map[string]fileCounter
	now      func() time.Time
}

type fileCounter struct {
	Count    int64     `json:"count"`
	ExpireAt time.Time `json:"expire_at"`
}

type fileState struct {
	Counters map[string]fileCounter `json:"counters"`
}

// OpenFileStore loads the store at path, creating it on first write
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		counters: make(map[string]fileCounter),
		now:      time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read usage file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse usage file %s: %w", path, err)
	}
	if state.Counters != nil {
		s.counters = state.Counters
	}
	return s, nil
}

// Incr increments key and persists the store
func (s *FileStore) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	c := s.counters[key]
	if c.ExpireAt.IsZero() {
		c.ExpireAt = expireAt
	}
	c.Count++
	s.counters[key] = c

	if err := s.save(); err != nil {
		// Keep memory and disk consistent
		c.Count--
		if c.Count == 0 {
			delete(s.counters, key)
		} else {
			s.counters[key] = c
		}
		return 0, err
	}
	return c.Count, nil
}

// Get returns the current count for key
func (s *FileStore) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || !s.now().Before(c.ExpireAt) {
		return 0, nil
	}
	return c.Count, nil
}

// Decr decrements key, stopping at zero, and persists the store
func (s *FileStore) Decr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(s.now())

	c, ok := s.counters[key]
	if !ok || c.Count <= 0 {
		return 0, nil
	}
	c.Count--
	s.counters[key] = c

	if err := s.save(); err != nil {
		c.Count++
		s.counters[key] = c
		return 0, err
	}
	return c.Count, nil
}

// Close is a no-op; every increment is already on disk
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) prune(now time.Time) {
	for k, c := range s.counters {
		if !now.Before(c.ExpireAt) {
			delete(s.counters, k)
		}
	}
}

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(fileState{Counters: s.counters}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create usage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".usage-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write usage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename usage file: %w", err)
	}
	return nil
}
