// Package form implements multi-turn structured data collection.
//
// A form walks a user through an ordered sequence of required fields, one
// prompt per turn, validating each answer before advancing. Sessions are
// isolated per conversation and at most one form is active per session.
package form

import (
	"log/slog"
	"sync"

	"github.com/formflow/FormFlow/internal/models"
)

// Session holds per-conversation form progress. It is owned exclusively by
// the form Handler and is reset to empty on completion or abandonment.
//
// Invariant: ActiveForm == "" iff CollectedValues is empty and CurrentIndex
// is 0. CollectedValues always contains exactly the fields at positions
// [0, CurrentIndex) of RequiredFields.
type Session struct {
	mu sync.Mutex

	ActiveForm      models.FormType
	RequiredFields  []string
	CollectedValues map[string]string
	CurrentIndex    int
}

func newSession() *Session {
	return &Session{CollectedValues: make(map[string]string)}
}

// reset returns the session to the idle state. Caller must hold s.mu.
func (s *Session) reset() {
	s.ActiveForm = ""
	s.RequiredFields = nil
	s.CollectedValues = make(map[string]string)
	s.CurrentIndex = 0
}

// active reports whether a form is in progress. Caller must hold s.mu.
func (s *Session) active() bool {
	return s.ActiveForm != ""
}

// SessionManager maintains isolated form sessions keyed by session identifier.
// Sessions are created on demand; concurrent access to the map is guarded
// while each session serializes its own turns with its own mutex.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Get returns the session for the given ID, creating it if needed.
func (m *SessionManager) Get(sessionID string) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok = m.sessions[sessionID]; ok {
		return sess
	}
	sess = newSession()
	m.sessions[sessionID] = sess
	slog.Debug("SessionManager created session", "sessionID", sessionID)
	return sess
}

// Reset discards any form progress for the given session.
func (m *SessionManager) Reset(sessionID string) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.reset()
	sess.mu.Unlock()
	slog.Debug("SessionManager reset session", "sessionID", sessionID)
}

// Count returns the number of known sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
