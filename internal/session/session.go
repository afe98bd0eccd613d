// Package session tracks who is logged in on each connection. The server
// keeps the session table; the client only holds a signed token naming its
// entry, so ending a session server-side revokes the token immediately.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/models"
)

// Session is the authenticated identity bound to one connection.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Role      models.Role
	Name      string
	StartedAt time.Time
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a manager signing tokens with secret. A zero ttl keeps
// sessions until logout or restart.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is not configured")
	}
	return &Manager{
		sessions: make(map[string]Session),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Start opens a session for user and returns the token the client must present.
func (m *Manager) Start(user models.User) (string, Session, error) {
	now := m.now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		Name:      user.FullName(),
		StartedAt: now,
	}

	token, err := m.signToken(sess.ID, now)
	if err != nil {
		return "", Session{}, apperrors.NewInternalError("sign session token", err)
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return token, sess, nil
}

// Current resolves token to its live session. A bad signature, an expired
// token or an ended session all report absent.
func (m *Manager) Current(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	id, err := m.parseToken(token)
	if err != nil {
		if id != "" {
			m.drop(id)
		}
		return Session{}, false
	}

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if m.ttl > 0 && m.now().After(sess.StartedAt.Add(m.ttl)) {
		m.drop(id)
		return Session{}, false
	}
	return sess, true
}

// End removes the session named by token. Unknown or invalid tokens are ignored.
func (m *Manager) End(token string) {
	if id, _ := m.parseToken(token); id != "" {
		m.drop(id)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// RequireRole returns a Forbidden error unless sess carries one of roles.
func RequireRole(sess Session, roles ...models.Role) error {
	if sess.UserID == "" {
		return apperrors.NewUnauthorizedError("login required")
	}
	if len(roles) == 0 || slices.Contains(roles, sess.Role) {
		return nil
	}
	return apperrors.NewForbiddenError("role " + string(sess.Role) + " may not perform this operation")
}
