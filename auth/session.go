// Package auth holds the session handle, the identity store, and the
// access-guard decision logic. The session is an explicit object threaded
// into the stores and the guard rather than ambient package state.
package auth

import (
	"sync"

	"drivenmind/models"
)

// Session holds the at-most-one current identity for this process. The
// generation counter increments on every logout so an in-flight login that
// completes afterwards cannot resurrect the cleared session.
type Session struct {
	mu      sync.Mutex
	current *models.User
	gen     uint64
}

// NewSession returns an empty (logged-out) session
func NewSession() *Session {
	return &Session{}
}

// Current returns a copy of the current identity, or nil when logged out
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// LoggedIn reports whether an identity is current
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// setIfGeneration installs the identity only if no logout happened since
// gen was observed. Returns false when the write was stale and dropped.
func (s *Session) setIfGeneration(gen uint64, user *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.current = user.Clone()
	return true
}

// set unconditionally installs the identity (used on restore and profile
// updates, which are not racing a logout)
func (s *Session) set(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user.Clone()
}

// clear logs the session out and bumps the generation
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.gen++
}
