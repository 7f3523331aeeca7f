package conversation

import "sync"

// State is the append-only turn list of one session. Turns are never edited
// or removed; the lock only guards readers against a concurrent append.
type State struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewState() *State {
	return &State{}
}

func (s *State) Append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// Turns returns a copy of the history in chronological order.
func (s *State) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *State) Last() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}
