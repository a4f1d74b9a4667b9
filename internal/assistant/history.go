// ABOUTME: Bounded conversation history passed to each assistant call.
// ABOUTME: Owned by a chat session; the oldest turns drop off first.
package assistant

import "sync"

// DefaultHistoryTurns is the number of turns a History keeps by default.
const DefaultHistoryTurns = 5

// Turn is one question and its answer.
type Turn struct {
	User      string
	Assistant string
}

// History keeps the most recent turns. The zero value is not usable; call
// NewHistory.
type History struct {
	mu    sync.Mutex
	max   int
	turns []Turn
}

// NewHistory creates a History holding at most max turns. max < 1 uses
// DefaultHistoryTurns.
func NewHistory(max int) *History {
	if max < 1 {
		max = DefaultHistoryTurns
	}
	return &History{max: max}
}

// Add records a turn, evicting the oldest when full.
func (h *History) Add(user, reply string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{User: user, Assistant: reply})
	if over := len(h.turns) - h.max; over > 0 {
		h.turns = append([]Turn(nil), h.turns[over:]...)
	}
}

// Turns returns a copy of the stored turns, oldest first.
func (h *History) Turns() []Turn {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Turn(nil), h.turns...)
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Reset clears the history.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
