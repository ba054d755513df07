package service

import (
	"context"
	"sync"
	"time"
)

// SessionCacheStore caches rendered session listings. The scheduling core
// only ever writes through Set and calls Invalidate after a successful
// mutation; it never treats the cache as a source of truth.
type SessionCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate drops every cached session listing.
	Invalidate(ctx context.Context) error
}

type NoopSessionCacheStore struct{}

func NewNoopSessionCacheStore() *NoopSessionCacheStore { return &NoopSessionCacheStore{} }

func (s *NoopSessionCacheStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopSessionCacheStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopSessionCacheStore) Invalidate(context.Context) error { return nil }

type sessionCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemorySessionCacheStore struct {
	mu      sync.RWMutex
	entries map[string]sessionCacheEntry
}

func NewInMemorySessionCacheStore() *InMemorySessionCacheStore {
	return &InMemorySessionCacheStore{entries: map[string]sessionCacheEntry{}}
}

func (s *InMemorySessionCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemorySessionCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = sessionCacheEntry{payload: append([]byte(nil), value...), expiresAt: time.Now().UTC().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *InMemorySessionCacheStore) Invalidate(context.Context) error {
	s.mu.Lock()
	s.entries = map[string]sessionCacheEntry{}
	s.mu.Unlock()
	return nil
}
