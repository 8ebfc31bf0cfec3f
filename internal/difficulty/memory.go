package difficulty

import (
	"context"
	"sync"
)

// MemoryStore is an in-process StateStore, safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[userID].Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.UserID] = st.Clone()
	return nil
}

// Delete removes the user's state.
func (m *MemoryStore) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
