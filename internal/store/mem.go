package store

import (
	"context"
	"sync"
)

// MemBackend is an in-memory Backend for tests.
type MemBackend struct {
	mu   sync.Mutex
	data map[string][]byte

	// PutError, if set, is returned by Put and nothing is stored.
	PutError error
	// Puts counts successful writes per key.
	Puts map[string]int
}

// NewMemBackend returns an empty MemBackend.
func NewMemBackend() *MemBackend {
	return &MemBackend{data: make(map[string][]byte), Puts: make(map[string]int)}
}

// Get implements Backend.
func (m *MemBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Backend.
func (m *MemBackend) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutError != nil {
		return m.PutError
	}
	m.data[key] = append([]byte(nil), data...)
	m.Puts[key]++
	return nil
}

// Close implements Backend.
func (m *MemBackend) Close() error {
	return nil
}
