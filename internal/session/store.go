// Package session owns the authenticated identity for the running client.
//
// The Store is the single writer of session state. Every other component
// reads through it; mutation happens only via Login, Logout, and
// AuthFailure, which keeps the "who destroyed my session" question
// answerable from three call sites.
package session

import (
	"log/slog"
	"sync"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// Session is the authenticated identity and token for the current user.
type Session struct {
	User  models.User
	Token string
}

// Listener observes session transitions. A nil session means logged out.
type Listener func(s *Session)

// Store holds the live session and notifies listeners on change.
type Store struct {
	mu        sync.RWMutex
	current   *Session
	listeners []Listener
	persist   *FileStore
	logger    *slog.Logger
}

// NewStore creates a session store. persist may be nil for in-memory use
// (tests); logger may be nil.
func NewStore(persist *FileStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{persist: persist, logger: logger}
}

// Restore loads a persisted session from disk, if any. Callers should
// follow up with a live validation call and Logout on rejection.
func (s *Store) Restore() (*Session, error) {
	if s.persist == nil {
		return nil, nil
	}
	sess, err := s.persist.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if expired(sess.Token) {
		s.logger.Debug("persisted token expired, discarding")
		_ = s.persist.Clear()
		return nil, nil
	}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.notify(sess)
	return sess, nil
}

// Current returns the live session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login installs a freshly authenticated session and persists it.
func (s *Store) Login(user models.User, token string) *Session {
	sess := &Session{User: user, Token: token}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	if s.persist != nil {
		if err := s.persist.Save(sess); err != nil {
			s.logger.Warn("persist session", "error", err)
		}
	}
	s.notify(sess)
	return sess
}

// Logout clears the session and its persisted copy.
func (s *Store) Logout() {
	s.clear("logout")
}

// AuthFailure clears the session in response to a 401/403 from the
// backend. Safe to call from concurrent failing requests; only the first
// call observes a live session and notifies listeners.
func (s *Store) AuthFailure() {
	s.clear("auth failure")
}

func (s *Store) clear(reason string) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if !had {
		return
	}
	if s.persist != nil {
		if err := s.persist.Clear(); err != nil {
			s.logger.Warn("clear persisted session", "error", err)
		}
	}
	s.logger.Info("session ended", "reason", reason)
	s.notify(nil)
}

// OnChange registers a listener for session transitions. Listeners are
// invoked synchronously in registration order; they must not call back
// into the store's mutation API.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(sess *Session) {
	s.mu.RLock()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(sess)
	}
}
