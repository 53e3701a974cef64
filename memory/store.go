package memory

import (
	"sync"
	"time"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
)

// Store is the in-process conversation memory, scoped by session id. Each
// session carries its own lock so concurrent sessions never block each
// other; the outer map lock is only held long enough to find an entry.
//
// Sessions are not persisted. They live until an explicit clear, process
// restart, or the retention trim drops their oldest turns.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*entry
	maxExchanges int // retention bound: trailing user exchanges kept per session
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewStore creates a store keeping at most maxExchanges trailing user
// exchanges per session. Zero or negative disables trimming.
func NewStore(maxExchanges int) *Store {
	return &Store{
		sessions:     make(map[string]*entry),
		maxExchanges: maxExchanges,
	}
}

func (s *Store) entryFor(sessionID string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok {
		return e
	}
	e = &entry{session: &Session{ID: sessionID, CreatedAt: time.Now()}}
	s.sessions[sessionID] = e
	return e
}

// Update runs fn with exclusive access to the session, creating it on first
// use, then applies the retention trim.
func (s *Store) Update(sessionID string, fn func(*Session)) {
	e := s.entryFor(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.session)
	e.session.Turns = trimTurns(e.session.Turns, s.maxExchanges)
}

// Snapshot returns a copy of the session state. A missing session yields an
// empty session with the given id.
func (s *Store) Snapshot(sessionID string) Session {
	e := s.entryFor(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := *e.session
	snap.Turns = append([]Turn(nil), e.session.Turns...)
	snap.Pending = append([]catalog.Match(nil), e.session.Pending...)
	return snap
}

// Preferences returns the current preference snapshot for a session.
func (s *Store) Preferences(sessionID string) Preferences {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Preferences{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Prefs
}

// Clear removes one session. Clearing a non-existent session is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ClearAll removes every session.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*entry)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// trimTurns keeps the turns belonging to the last maxExchanges user turns.
// Assistant turns trailing a kept user turn are kept with it.
func trimTurns(turns []Turn, maxExchanges int) []Turn {
	if maxExchanges <= 0 || len(turns) == 0 {
		return turns
	}

	usersSeen := 0
	start := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			usersSeen++
			if usersSeen == maxExchanges {
				start = i
				break
			}
		}
	}

	return turns[start:]
}
