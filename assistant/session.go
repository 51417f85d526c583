package assistant

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hartwell/jobpilot/core"
)

// Session holds one user's conversation with the assistant. History is
// append-only: messages are never edited or removed, only cleared wholesale
// by Reset.
type Session struct {
	id     string
	userID int64

	mu        sync.RWMutex
	messages  []core.Message
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is a read-only copy of a session at a point in time.
type Snapshot struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	Messages  []core.Message `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewSession(userID int64) *Session {
	now := time.Now()
	return &Session{
		id:        ulid.Make().String(),
		userID:    userID,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string    { return s.id }
func (s *Session) UserID() int64 { return s.userID }

// Append adds messages to the history. Callers stage a whole exchange and
// commit it in one call, so a failed exchange leaves no partial trace.
func (s *Session) Append(msgs ...core.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msgs...)
	s.updatedAt = time.Now()
}

// Messages returns a copy of the history.
func (s *Session) Messages() []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset clears the history. The session keeps its identity.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.updatedAt = time.Now()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]core.Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ID:        s.id,
		UserID:    s.userID,
		Messages:  msgs,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}
