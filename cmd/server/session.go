package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "session_id"

// session pairs a user with an expiry deadline.
type session struct {
	userID    uint
	expiresAt time.Time
}

// SessionStore maps opaque tokens to logged-in users. Tokens are random
// UUIDs handed to the browser in a cookie; nothing user-identifying is
// stored client-side.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
}

// NewSessionStore creates a session store whose sessions live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
	}
}

// Create starts a session for the user and returns its token.
func (s *SessionStore) Create(userID uint) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return token
}

// Get resolves a token to a user ID. Expired sessions are treated as absent.
func (s *SessionStore) Get(token string) (uint, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return 0, false
	}
	return sess.userID, true
}

// Delete ends a session. Deleting an unknown token is a no-op.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
