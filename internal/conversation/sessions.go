package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session owns exactly one State. Sessions never share state.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time
	State     *State

	turnMu     sync.Mutex
	lastActive time.Time
}

// LockTurn serializes turns of a single session; it is held for the whole
// compose-to-append pipeline.
func (s *Session) LockTurn() {
	s.turnMu.Lock()
}

func (s *Session) UnlockTurn() {
	s.turnMu.Unlock()
}

// Sessions is the in-memory registry of live sessions. Nothing is persisted;
// a deleted or expired session loses its transcript.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: map[string]*Session{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Sessions) Create(owner string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	session := &Session{
		ID:         uuid.NewString(),
		Owner:      owner,
		CreatedAt:  now,
		State:      NewState(),
		lastActive: now,
	}
	r.sessions[session.ID] = session
	return session
}

// Get returns the session if it exists and belongs to owner, and marks it
// active.
func (r *Sessions) Get(owner, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.Owner != owner {
		return nil, ErrSessionNotFound
	}
	session.lastActive = r.now()
	return session, nil
}

func (r *Sessions) Delete(owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.Owner != owner {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SweepIdle drops sessions idle for longer than ttl and returns their ids.
// Sessions with a turn in progress are kept.
func (r *Sessions) SweepIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	expired := make([]string, 0)
	for id, session := range r.sessions {
		if !session.lastActive.Before(cutoff) {
			continue
		}
		// A session with a turn in flight is busy, not idle.
		if !session.turnMu.TryLock() {
			continue
		}
		session.turnMu.Unlock()
		expired = append(expired, id)
		delete(r.sessions, id)
	}
	return expired
}
