package session

import (
	"sync"
	"time"

	"github.com/afiya/afiyacare/internal/language"
)

// DefaultDisplayName is used when the transport supplies no name
const DefaultDisplayName = "User"

// Session holds per-conversation state. All fields are guarded by mu; use
// Snapshot to read them.
type Session struct {
	mu sync.Mutex

	id           string
	displayName  string
	language     language.Code
	messageCount int
	lastActivity time.Time
}

// Snapshot is an immutable copy of a session's state
type Snapshot struct {
	ID           string
	DisplayName  string
	Language     language.Code
	MessageCount int
	LastActivity time.Time
}

func newSession(id, displayName string) *Session {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return &Session{
		id:          id,
		displayName: displayName,
		language:    language.Default,
	}
}

// ID returns the conversation identity
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:           s.id,
		DisplayName:  s.displayName,
		Language:     s.language,
		MessageCount: s.messageCount,
		LastActivity: s.lastActivity,
	}
}

// touch records one inbound message. Invalid language codes leave the
// current language untouched.
func (s *Session) touch(lang language.Code, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageCount++
	s.lastActivity = now
	if lang.Valid() {
		s.language = lang
	}
	return s.snapshotLocked()
}
