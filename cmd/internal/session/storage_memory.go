package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Storage for tests and storage-less dev runs.
type MemoryStore struct {
	mu  sync.Mutex
	st  State
	set bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return State{}, nil
	}
	return m.st, nil
}

func (m *MemoryStore) Save(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	m.set = true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	m.set = false
	return nil
}
