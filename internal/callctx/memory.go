package callctx

import (
	"context"
	"sync"

	"github.com/garasindo/voice-crm-service/internal/domain"
)

// MemoryStore is a process-local Store. Contexts do not survive a restart,
// so production deployments should prefer RedisStore; this implementation
// backs single-instance setups and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*domain.CallContext
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]*domain.CallContext)}
}

// Put inserts or replaces the context for a call.
func (s *MemoryStore) Put(_ context.Context, callSID string, callContext *domain.CallContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[callSID] = callContext
	return nil
}

// Get looks up the context for a call.
func (s *MemoryStore) Get(_ context.Context, callSID string) (*domain.CallContext, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	callContext, ok := s.contexts[callSID]
	return callContext, ok, nil
}

// Remove deletes the context for a call.
func (s *MemoryStore) Remove(_ context.Context, callSID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, callSID)
	return nil
}

// Len reports how many contexts are currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}
