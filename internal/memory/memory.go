// Package memory holds per-session conversation history for the lifetime of
// the process. History is bounded: once a session reaches the cap, the oldest
// turns are evicted first.
package memory

import (
	"strings"
	"sync"
	"time"

	"portfolio-rag/internal/domain"
)

// DefaultMaxTurns is the retained message cap per session: 10 exchanges,
// user and assistant messages counted separately.
const DefaultMaxTurns = 20

// Store maps session IDs to bounded conversation histories. The outer lock
// only guards the session map; each session carries its own mutex so
// concurrent turns for the same session serialize without sessions
// contending with each other.
type Store struct {
	maxTurns int

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewStore creates a Store retaining at most maxTurns messages per session.
// Non-positive values fall back to DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		maxTurns: maxTurns,
		sessions: make(map[string]*session),
	}
}

// Append records one turn for the session, creating the session lazily.
// After the append the history is truncated from the front to the cap.
func (s *Store) Append(sessionID, role, content string) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, domain.Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if excess := len(sess.turns) - s.maxTurns; excess > 0 {
		sess.turns = append([]domain.Turn(nil), sess.turns[excess:]...)
	}
}

// History returns the session's turns in chronological order as prompt
// messages, safe to pass directly into generation. Unknown sessions yield an
// empty slice.
func (s *Store) History(sessionID string) []domain.ChatMessage {
	s.mu.RLock()
	sess, ok := s.sessions[normalizeID(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	msgs := make([]domain.ChatMessage, 0, len(sess.turns))
	for _, turn := range sess.turns {
		msgs = append(msgs, turn.Message())
	}
	return msgs
}

// Clear discards a session's history. The session entry itself is removed so
// an abandoned ID costs nothing.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, normalizeID(sessionID))
}

// Len reports the number of retained turns for a session.
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	sess, ok := s.sessions[normalizeID(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.turns)
}

// SessionCount reports the number of live sessions.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// normalizeID keeps every lookup keyed the same way a create is, so a padded
// ID and its trimmed form address one session.
func normalizeID(sessionID string) string {
	return strings.TrimSpace(sessionID)
}

func (s *Store) getOrCreate(sessionID string) *session {
	sessionID = normalizeID(sessionID)

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}
