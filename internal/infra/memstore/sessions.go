package memstore

import (
	"sync"

	"github.com/distrisur/pedidos-go/internal/domain"
)

// SessionStore maps user ids to their single live session. Sessions live
// for the process lifetime; there is no TTL eviction.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*domain.Session{}}
}

// GetOrCreate returns the live session for userID, creating an idle one
// on first contact. Concurrent calls with the same userID get the same
// *Session; serialization happens on the session's own lock.
func (s *SessionStore) GetOrCreate(userID string) *domain.Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess = domain.NewSession(userID)
	s.sessions[userID] = sess
	return sess
}

// Delete removes a user's session entirely.
func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the number of live sessions, surfaced on the stats endpoint.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
