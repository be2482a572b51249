package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyLoggedIn is returned when a user with a live session logs in again
	ErrAlreadyLoggedIn = errors.New("user already logged in")
	ErrSessionNotFound = errors.New("session not found")
)

type session struct {
	id        string
	expiresAt time.Time
}

// SessionManager allows one live session per user.
type SessionManager struct {
	lock     sync.Mutex
	sessions map[int32]session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[int32]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start opens a session for userID. Expired sessions are replaced.
func (m *SessionManager) Start(userID int32) (string, time.Time, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	if s, ok := m.sessions[userID]; ok && now.Before(s.expiresAt) {
		return "", time.Time{}, ErrAlreadyLoggedIn
	}

	s := session{
		id:        uuid.NewString(),
		expiresAt: now.Add(m.ttl),
	}
	m.sessions[userID] = s
	return s.id, s.expiresAt, nil
}

// Valid reports whether sessionID is the live session of userID.
func (m *SessionManager) Valid(userID int32, sessionID string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	s, ok := m.sessions[userID]
	return ok && s.id == sessionID && m.now().Before(s.expiresAt)
}

func (m *SessionManager) End(userID int32, sessionID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.id != sessionID {
		return ErrSessionNotFound
	}
	delete(m.sessions, userID)
	return nil
}

// Count returns the number of sessions that have not expired.
func (m *SessionManager) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	count := 0
	for userID, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, userID)
			continue
		}
		count++
	}
	return count
}
