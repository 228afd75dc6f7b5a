package session

import (
	"sync"

	"github.com/autopaper/autopaper/core"
)

// InMemoryStore is a volatile ConversationStore keeping turn histories in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo sessions. Returned slices are copies to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]core.Turn
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{turns: make(map[string][]core.Turn)}
}

// AppendTurn adds a turn to the session history, creating it lazily.
func (s *InMemoryStore) AppendTurn(sessionID string, t core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID] = append(s.turns[sessionID], t)
	return nil
}

// Turns returns a copy of the ordered history for a session. A session with
// no recorded turns yields an empty slice, not an error.
func (s *InMemoryStore) Turns(sessionID string) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Turn(nil), s.turns[sessionID]...), nil
}

// Delete removes a session history. Deleting an unknown session is a no-op.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	return nil
}
