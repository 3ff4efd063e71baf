package store

import (
	"context"
	"sync"

	"github.com/yukti-app/walletd/ports"
)

// MemoryStore is an in-memory implementation of the CredentialStore
// interface, used in tests and when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

var _ ports.CredentialStore = (*MemoryStore)(nil)

// GetItem retrieves a value by key. A missing key reads as "".
func (s *MemoryStore) GetItem(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[key], nil
}

// SetItem stores a value under key.
func (s *MemoryStore) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// RemoveItem deletes a key.
func (s *MemoryStore) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// MultiRemove deletes several keys in one logical operation.
func (s *MemoryStore) MultiRemove(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}
