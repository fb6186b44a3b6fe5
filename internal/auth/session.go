// Package auth holds the client session and supplies the
// authentication gate for processing runs.
package auth

import (
	"sync"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/store"
)

// tokenKey is the durable store key holding the session token.
const tokenKey = "session_token"

// Session caches the API token in memory and persists it through the
// durable store so a restart keeps the user signed in.
type Session struct {
	store store.DurableStore
	mu    sync.RWMutex
	token string
}

// NewSession loads any persisted token from the store. An unreadable
// store degrades to a signed-out session rather than failing.
func NewSession(s store.DurableStore) *Session {
	sess := &Session{store: s}
	if token, ok, err := s.Read(tokenKey); err == nil && ok {
		sess.token = token
	}
	return sess
}

// SetToken stores a new session token. The in-memory token is only
// replaced once the write succeeds, so a persistence failure leaves
// the session unchanged.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return errors.New(errors.ErrInvalid, "empty session token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Write(tokenKey, token); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to persist session token", err)
	}
	s.token = token
	return nil
}

// Clear signs the user out.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(tokenKey); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to clear session token", err)
	}
	s.token = ""
	return nil
}

// Token returns the current API token, or empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a session token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}
