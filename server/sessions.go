package server

import (
	"sync"

	"github.com/hartwell/jobpilot/assistant"
	"github.com/hartwell/jobpilot/core"
)

type sessionEntry struct {
	session    *assistant.Session
	dispatcher *assistant.Dispatcher
}

// sessionManager tracks live conversations by session ID. Each session
// carries its own dispatcher because the tool set is bound to the owning
// user.
type sessionManager struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func newSessionManager() *sessionManager {
	return &sessionManager{
		entries: make(map[string]*sessionEntry),
	}
}

func (m *sessionManager) add(session *assistant.Session, dispatcher *assistant.Dispatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[session.ID()] = &sessionEntry{session: session, dispatcher: dispatcher}
}

func (m *sessionManager) get(id string) (*sessionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, core.NewAssistantError("sessions.get", "", core.ErrSessionNotFound)
	}
	return e, nil
}

func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}
