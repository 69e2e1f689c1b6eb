package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Backend with per-entry expiry
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return nil, ErrMiss
	}
	return e.data, nil
}

// Set stores data; a ttl of zero or less never expires. Expired entries
// are swept on every write.
func (m *Memory) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := m.now()
	e := entry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, old := range m.entries {
		if !old.expiresAt.IsZero() && !now.Before(old.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = e
	return nil
}

// DeletePattern removes every key matching the glob pattern
func (m *Memory) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.entries {
		if ok, err := path.Match(pattern, k); err != nil {
			return err
		} else if ok {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
