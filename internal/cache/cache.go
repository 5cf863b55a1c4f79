// Package cache provides stores for short-lived API credentials.
//
// Three implementations share the Store interface: an in-process map, a
// per-user file directory (so a CLI run can reuse a token fetched by the
// previous one), and redis (so several processes share one tenant token).
// Disable the file store with LARK_NO_CACHE=1.
package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is one cached credential.
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is unusable at now given a safety margin.
func (e Entry) Expired(now time.Time, margin time.Duration) bool {
	if e.Value == "" {
		return true
	}
	return !now.Add(margin).Before(e.ExpiresAt)
}

// Store persists credentials by key. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the entry for key. ok is false on a miss.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
