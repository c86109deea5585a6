// Package chat holds the message types and the ordered per-session history.
package chat

import "sync"

// State is the ordered message history of one session. Insertion order is
// the conversation order sent to the model; nothing here reorders or drops
// messages implicitly. The mutex only guards against torn appends when
// submissions overlap; it does not serialize them.
type State struct {
	mu   sync.Mutex
	msgs []Message
}

func NewState() *State {
	return &State{}
}

// Append adds a message to the end of the history.
func (s *State) Append(m Message) {
	s.mu.Lock()
	s.msgs = append(s.msgs, m)
	s.mu.Unlock()
}

// AppendExchange records a completed user/assistant exchange as one unit, so
// history never ends up with a user turn that has no answer.
func (s *State) AppendExchange(user, assistant Message) {
	s.mu.Lock()
	s.msgs = append(s.msgs, user, assistant)
	s.mu.Unlock()
}

// Clear empties the history.
func (s *State) Clear() {
	s.mu.Lock()
	s.msgs = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the history. Mutating the returned slice does
// not affect the state, so a request built from it stays consistent even if
// the state changes while the request is in flight.
func (s *State) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}
