// Package convo holds the conversation session shared across pipeline
// workers.
package convo

import "sync"

// Role tags one side of a turn. Assistant replies are recorded under
// RoleSystem, matching the wire contract of the chat backend this history is
// replayed into.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one entry of the ordered history.
type Turn struct {
	Role    Role
	Content string
}

// Session is an append-only turn history seeded with a fixed system
// instruction. Appends are guarded so concurrent workers cannot interleave
// half a turn pair.
type Session struct {
	mu    sync.Mutex
	turns []Turn
}

// NewSession builds a session whose first turn is the system instruction.
func NewSession(systemInstruction string) *Session {
	return &Session{turns: []Turn{{Role: RoleSystem, Content: systemInstruction}}}
}

// AppendExchange records one user prompt and the assistant reply as a single
// atomic update.
func (s *Session) AppendExchange(prompt, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns,
		Turn{Role: RoleUser, Content: prompt},
		Turn{Role: RoleSystem, Content: reply},
	)
}

// Snapshot returns a copy of the history for building one backend request.
func (s *Session) Snapshot() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of recorded turns, the system instruction included.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
