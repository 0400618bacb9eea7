package repositories

import (
	"sync"

	"teamjoin/internal/models"
)

// SessionStore хранит состояние диалогов в памяти процесса, по user id
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]models.Session{}}
}

func (s *SessionStore) Get(userID string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *SessionStore) Set(userID string, sess models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
