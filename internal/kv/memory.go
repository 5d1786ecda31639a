package kv

import (
	"context"
	"errors"
	"sync"
)

var errWriteDisabled = errors.New("writes disabled")

// Memory keeps values in process memory. Values are lost on exit.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	failWrites bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return unavailable("set", key, errWriteDisabled)
	}
	m.values[key] = value
	return nil
}

// SetFailWrites makes every following Set fail with ErrUnavailable.
func (m *Memory) SetFailWrites(fail bool) {
	m.mu.Lock()
	m.failWrites = fail
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }
