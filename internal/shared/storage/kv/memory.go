package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{owners: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.owners[owner][key]
	return val, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, owner, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.owners[owner]
	if !ok {
		entries = make(map[string]string)
		m.owners[owner] = entries
	}
	entries[key] = value
	return nil
}

func (m *MemoryStore) List(ctx context.Context, owner, pattern string, includeValues bool) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Item{}
	for key, val := range m.owners[owner] {
		if !Match(pattern, key) {
			continue
		}
		item := Item{Key: key}
		if includeValues {
			item.Value = val
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Flush(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.owners, owner)
	m.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
