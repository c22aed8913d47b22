// Package state provides the session state stores: an in-memory store for
// ephemeral runs and a SQLite-backed store for runs that must survive
// restarts. Both keep entity-keyed JSON documents with named snapshots.
package state

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"devforge/internal/domain"
)

// Compile-time interface assertion.
var _ domain.StateStore = (*MemoryStore)(nil)

// MemoryStore keeps state in process memory. Contents are lost when the
// process exits.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string]json.RawMessage
	snapshots map[string]map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:      make(map[string]json.RawMessage),
		snapshots: make(map[string]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) Get(_ context.Context, entity string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[entity]
	if !ok {
		return nil, domain.NewDomainError("state.Get", domain.ErrStateMissing, "entity: "+entity)
	}
	return value, nil
}

func (s *MemoryStore) Set(_ context.Context, entity string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so callers cannot mutate stored bytes afterwards.
	s.data[entity] = append(json.RawMessage(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, entity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[entity]
	delete(s.data, entity)
	return ok, nil
}

func (s *MemoryStore) Entities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.data), nil
}

func (s *MemoryStore) Snapshot(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]json.RawMessage, len(s.data))
	for entity, value := range s.data {
		snap[entity] = value
	}
	s.snapshots[name] = snap
	return nil
}

func (s *MemoryStore) Restore(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[name]
	if !ok {
		return domain.NewDomainError("state.Restore", domain.ErrStateMissing, "snapshot: "+name)
	}
	data := make(map[string]json.RawMessage, len(snap))
	for entity, value := range snap {
		data[entity] = value
	}
	s.data = data
	return nil
}

func (s *MemoryStore) Snapshots(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.snapshots), nil
}

func (s *MemoryStore) Close() error { return nil }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
