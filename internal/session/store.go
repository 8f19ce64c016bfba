package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"Aquaquote/internal/engine"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	state engine.State
	seen  time.Time
}

// Store keeps one engine.State per session in memory. Updates replace the
// whole state under the lock, so readers only see committed snapshots.
// Every read or write refreshes the session's idle clock.
type Store struct {
	mu       sync.Mutex
	eng      *engine.Engine
	sessions map[string]*entry
	now      func() time.Time
}

func NewStore(eng *engine.Engine) *Store {
	return &Store{eng: eng, sessions: make(map[string]*entry), now: time.Now}
}

func (s *Store) Engine() *engine.Engine {
	return s.eng
}

func (s *Store) Create() (string, engine.State) {
	id := uuid.NewString()
	st := s.eng.Initial()

	s.mu.Lock()
	s.sessions[id] = &entry{state: st, seen: s.now()}
	s.mu.Unlock()
	return id, st
}

func (s *Store) Get(id string) (engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return engine.State{}, ErrNotFound
	}
	e.seen = s.now()
	return e.state, nil
}

// Update commits fn's state unless fn fails, in which case the stored
// state is left untouched and fn's error returned.
func (s *Store) Update(id string, fn func(engine.State) (engine.State, error)) (engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return engine.State{}, ErrNotFound
	}
	e.seen = s.now()
	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	return next, nil
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Sweep drops sessions idle for longer than maxIdle and reports how many.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, e := range s.sessions {
		if e.seen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
