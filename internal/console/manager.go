// Package console serves the local chat channel. It plays the part of the
// turn-taking runtime for a websocket client: it keeps the session attributes
// of each connection and drives slot filling between code hook calls.
package console

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/ashureev/bankdialog/internal/dialog"
)

type connState struct {
	conn    *websocket.Conn
	session dialog.Session
}

// SessionManager tracks console connections and their session attributes.
type SessionManager struct {
	mu     sync.RWMutex
	active map[string]map[string]*connState
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]map[string]*connState),
	}
}

// GetActive returns the active connection for a user and session.
func (m *SessionManager) GetActive(userID, sessionID string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st := m.state(userID, sessionID); st != nil {
		return st.conn
	}
	return nil
}

// Register adds a connection with an empty session. A connection already
// registered under the same user and session is closed and replaced.
func (m *SessionManager) Register(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*connState)
	}

	if existing, exists := m.active[userID][sessionID]; exists && existing.conn != conn {
		_ = existing.conn.Close(websocket.StatusNormalClosure, "session replaced")
	}

	m.active[userID][sessionID] = &connState{conn: conn, session: dialog.NewSession(nil)}
	slog.Info("Console session registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes a connection if it is still the registered one.
func (m *SessionManager) Unregister(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current.conn == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, userID)
			}
			slog.Info("Console session unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

// Session returns the session attributes held for a connection.
func (m *SessionManager) Session(userID, sessionID string) dialog.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st := m.state(userID, sessionID); st != nil {
		return st.session
	}
	return dialog.NewSession(nil)
}

// SetSession stores the session attributes returned by a turn.
func (m *SessionManager) SetSession(userID, sessionID string, session dialog.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.state(userID, sessionID); st != nil {
		st.session = session
	}
}

// Reset clears the session attributes of a connection.
func (m *SessionManager) Reset(userID, sessionID string) {
	m.SetSession(userID, sessionID, dialog.NewSession(nil))
}

// CloseAll closes every connection, used on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, sessions := range m.active {
		for sid, st := range sessions {
			_ = st.conn.Close(websocket.StatusGoingAway, "server shutting down")
			slog.Info("Console session closed", "user_id", userID, "session_id", sid)
		}
	}
	m.active = make(map[string]map[string]*connState)
}

func (m *SessionManager) state(userID, sessionID string) *connState {
	if sessions, ok := m.active[userID]; ok {
		return sessions[sessionID]
	}
	return nil
}
