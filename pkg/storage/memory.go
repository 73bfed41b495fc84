package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process [Store].
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, id string, payload []byte) (string, error) {
	id, err := resolveID(id)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = slices.Clone(payload)
	return id, nil
}

func (m *Memory) Load(ctx context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[id]
	if !ok {
		return nil, notFound("memory", id)
	}
	return slices.Clone(data), nil
}

// Len returns the number of stored compositions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
