package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps encoded records in a map, so callers never share state with it.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	updated map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	b, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRecord(b)
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	b, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = b
	s.updated[rec.Key] = rec.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	delete(s.updated, key)
	return nil
}

func (s *MemoryStore) ListIdle(_ context.Context, before time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for key, at := range s.updated {
		if at.Before(before) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
