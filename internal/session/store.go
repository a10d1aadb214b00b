package session

import (
	"sync"
	"time"

	"github.com/afiya/afiyacare/internal/language"
)

// Store keeps one Session per conversation identity
type Store interface {
	// Get returns the session for id if one exists
	Get(id string) (*Session, bool)
	// GetOrCreate returns the existing session or creates one with defaults
	GetOrCreate(id, displayNameHint string) *Session
	// Touch increments the message count, refreshes the activity time and
	// stores the detected language
	Touch(s *Session, lang language.Code) Snapshot
	// Len returns the number of tracked sessions
	Len() int
}

// MemoryStore is an in-process Store. Sessions live for the lifetime of the
// process; nothing is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	now      func() time.Time
	onCreate func(Snapshot)
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// WithOnCreate registers a callback invoked once per new session
func WithOnCreate(fn func(Snapshot)) Option {
	return func(m *MemoryStore) {
		m.onCreate = fn
	}
}

// NewMemoryStore creates an empty store
func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session for id
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it on first sight. The
// display name hint is only used at creation time.
func (m *MemoryStore) GetOrCreate(id, displayNameHint string) *Session {
	if s, ok := m.Get(id); ok {
		return s
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, displayNameHint)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	if !ok && m.onCreate != nil {
		m.onCreate(s.Snapshot())
	}
	return s
}

// Touch records an inbound message on s
func (m *MemoryStore) Touch(s *Session, lang language.Code) Snapshot {
	return s.touch(lang, m.now())
}

// Len returns the number of sessions
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
