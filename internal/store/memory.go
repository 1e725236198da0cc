package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps the table set in process memory. Used for unit tests
// and as a throwaway store when no persistence is configured.
type MemoryBackend struct {
	mu     sync.RWMutex
	tables Tables
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tables: Tables{}}
}

func (m *MemoryBackend) Load(ctx context.Context) (Tables, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables.clone(), nil
}

func (m *MemoryBackend) Dump(ctx context.Context, t Tables) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = t.clone()
	return nil
}

func (m *MemoryBackend) Name() string { return "memory" }
