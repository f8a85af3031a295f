// Package storage provides the key/value slot primitive the task and settings
// stores persist into, plus in-memory, file and Redis backends.
package storage

import (
	"context"
	"sync"
)

// Storage gets and sets a string blob by key.
// GetString reports ok=false when the key was never written.
type Storage interface {
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	SetString(ctx context.Context, key, value string) error
}

// Memory keeps slots in a map. It is safe for concurrent use.
type Memory struct {
	slots map[string]string
	mu    sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string]string)}
}

func (m *Memory) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.slots[key]
	return value, ok, nil
}

func (m *Memory) SetString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = value
	return nil
}
