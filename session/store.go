// Package session houses conversation history storage. The Store interface
// isolates the agent loop from the accumulation policy: history grows without
// bound today, and a future bounding or summarization policy can be swapped
// in without touching the loop.
//
// Add additional backends (Redis, Postgres, ...) in subpackages without
// changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package session

import (
	"context"
	"sync"

	"github.com/hupe1980/agentchat/core"
)

// Store maps a caller-chosen session id to accumulated conversation history.
// Implementations must be safe for concurrent access from different session
// ids and must apply ReplaceHistory atomically per session; serializing
// concurrent turns against the same session id is the caller's concern.
type Store interface {
	// GetOrCreate returns the history for the session, creating an empty one
	// on first use. The returned slice is the caller's to mutate.
	GetOrCreate(ctx context.Context, sessionID string) ([]core.Message, error)

	// ReplaceHistory atomically replaces the session's history.
	ReplaceHistory(ctx context.Context, sessionID string, history []core.Message) error

	// Clear resets the session to an empty history. It is idempotent and a
	// no-op for unknown session ids.
	Clear(ctx context.Context, sessionID string) error
}

// InMemoryStore is a volatile Store keeping histories in a process-local map.
// It is safe for concurrent access and best suited for tests or single
// process deployments. Histories are cloned on the way in and out so callers
// can never mutate internal state.
type InMemoryStore struct {
	mu        sync.RWMutex
	histories map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{histories: make(map[string][]core.Message)}
}

// GetOrCreate implements Store.
func (s *InMemoryStore) GetOrCreate(_ context.Context, sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	history, ok := s.histories[sessionID]
	s.mu.RUnlock()
	if ok {
		return core.CloneHistory(history), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if history, ok := s.histories[sessionID]; ok {
		return core.CloneHistory(history), nil
	}
	s.histories[sessionID] = []core.Message{}
	return []core.Message{}, nil
}

// ReplaceHistory implements Store.
func (s *InMemoryStore) ReplaceHistory(_ context.Context, sessionID string, history []core.Message) error {
	clone := core.CloneHistory(history)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[sessionID] = clone
	return nil
}

// Clear implements Store.
func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, sessionID)
	return nil
}
