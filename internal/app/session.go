package app

import "sync"

// Session is the admin flag of one shell session. The credential check is
// a convenience gate for the editing commands, not access control.
type Session struct {
	mu       sync.RWMutex
	id       string
	password string
	admin    bool
}

func NewSession(id, password string) *Session {
	return &Session{id: id, password: password}
}

// Login flips the session to admin when the pair matches.
func (s *Session) Login(id, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = id == s.id && password == s.password
	return s.admin
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.admin = false
	s.mu.Unlock()
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}
