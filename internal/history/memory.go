package history

import (
	"context"
	"sync"
)

// MemoryStore is the default in-process Store. Histories grow unbounded for
// the process lifetime; the context window bounds what prompts ever see.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]Turn
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Turn)}
}

// Load returns a copy of the session's history so callers can never mutate
// the stored sequence.
func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.sessions[sessionID]
	out := make([]Turn, len(stored))
	copy(out, stored)
	return out, nil
}

// Append adds turns to the session under the store lock, which serializes
// appends for a session in call order.
func (m *MemoryStore) Append(_ context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], turns...)
	return nil
}
