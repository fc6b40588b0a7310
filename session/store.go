// Package session tracks which user has which dialog worker and
// serializes event processing per user.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/m3rciful/shelfbot/dialog"
)

// ErrActiveSession is returned when a user tries to start a dialog while
// another one is still running. The user must finish or /reset first.
var ErrActiveSession = errors.New("another dialog is already active")

// Session binds a user to a live dialog worker.
type Session struct {
	UserID     int64
	DialogType dialog.Type
	Template   string
	WorkerID   string
	CreatedAt  time.Time
}

// Store keeps at most one session per user. All methods are safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	byUser map[int64]Session
}

func NewStore() *Store {
	return &Store{byUser: make(map[int64]Session)}
}

// Get returns the user's active session, if any.
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byUser[userID]
	return sess, ok
}

// Put registers a session for the user. It fails with ErrActiveSession
// when the user already has one; the caller decides whether to tell the
// user or to reset first.
func (s *Store) Put(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[sess.UserID]; ok {
		return ErrActiveSession
	}
	s.byUser[sess.UserID] = sess
	return nil
}

// Remove drops the user's session and reports whether one existed.
func (s *Store) Remove(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if ok {
		delete(s.byUser, userID)
	}
	return sess, ok
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
