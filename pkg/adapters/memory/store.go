package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tutorgraph/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save persists a copy of the session.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	copied := session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = copied
	return nil
}

// Load retrieves a copy of the session so callers cannot mutate the store by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
