package chatbot

// Turn is one question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// ConversationMemory holds recent turns of one session, bounded by a
// maximum turn count: once full, the oldest turn is evicted. It is not
// persisted across restarts.
type ConversationMemory struct {
	turns    []Turn
	maxTurns int
}

// NewConversationMemory creates a memory holding at most maxTurns turns.
func NewConversationMemory(maxTurns int) *ConversationMemory {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &ConversationMemory{maxTurns: maxTurns}
}

// Append records a completed turn, evicting the oldest if at capacity.
func (m *ConversationMemory) Append(question, answer string) {
	m.turns = append(m.turns, Turn{Question: question, Answer: answer})
	if len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Turns returns a copy of the held turns, oldest first.
func (m *ConversationMemory) Turns() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of held turns.
func (m *ConversationMemory) Len() int {
	return len(m.turns)
}

// Clear discards all turns.
func (m *ConversationMemory) Clear() {
	m.turns = nil
}
