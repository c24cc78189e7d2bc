package kv

import (
	"context"
	"sync"
)

// MemoryKV is an in-process store. GetErr and SetErr, when set, are
// returned by every Get or Set call.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
	sets   int

	GetErr error
	SetErr error
}

// NewMemoryKV returns an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the stored value.
func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value.
func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	m.sets++
	return nil
}

// Sets returns how many successful Set calls were made.
func (m *MemoryKV) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Close is a no-op.
func (m *MemoryKV) Close() error {
	return nil
}
