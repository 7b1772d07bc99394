package session

import (
	"sync"

	"github.com/longkey1/clippyai/internal/clippy"
)

// DefaultContextWindow is the number of trailing messages returned by
// GetContext and Context when no positive maximum is given.
const DefaultContextWindow = 10

// Store keeps sessions in memory for the lifetime of the process and tracks
// which one is current. Sessions are never removed; clearing the current
// session only drops the pointer.
//
// Operations on a missing session are no-ops or return empty results.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	current  string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// StartNewSession creates a seeded session, makes it current and returns its id.
func (st *Store) StartNewSession(initialText string) string {
	s := NewSession(initialText)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	st.current = s.ID
	return s.ID
}

// AddMessage appends to the current session. It does nothing when there is
// no current session.
func (st *Store) AddMessage(role clippy.Role, content string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[st.current]; ok {
		s.AddMessage(role, content)
	}
}

// GetContext returns the tail of the current session.
func (st *Store) GetContext(max int) []clippy.ContextMessage {
	st.mu.Lock()
	id := st.current
	st.mu.Unlock()
	return st.Context(id, max)
}

// ClearCurrentSession unsets the current session. Stored data is kept.
func (st *Store) ClearCurrentSession() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = ""
}

// Current returns the id of the current session, or "" when there is none.
func (st *Store) Current() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Append adds a message to the session with the given id and reports whether
// the session exists.
func (st *Store) Append(id string, role clippy.Role, content string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return false
	}
	s.AddMessage(role, content)
	return true
}

// Context returns the last max messages of the session with the given id.
// A max of zero or less means DefaultContextWindow.
func (st *Store) Context(id string, max int) []clippy.ContextMessage {
	if max <= 0 {
		max = DefaultContextWindow
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return []clippy.ContextMessage{}
	}
	return s.Tail(max)
}

// Get returns a copy of the session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Messages = append([]clippy.Message(nil), s.Messages...)
	return &cp, true
}

// Exists reports whether a session with the given id has been started.
func (st *Store) Exists(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	return ok
}
