// Package history keeps the ordered conversation log for one agent session
// and projects it into the context string sent with the next turn.
package history

import "strings"

// Role tags a turn as coming from the user or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged unit of conversation. Turns are never edited or
// removed once appended.
type Turn struct {
	Role    Role
	Content string
}

// History is an append-only log of turns, owned by a single session. It is
// bounded only by the length of the interactive session itself.
type History struct {
	turns []Turn
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Append records one turn. Insertion order is conversational order.
func (h *History) Append(role Role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns the recorded turns in insertion order.
func (h *History) Turns() []Turn {
	return h.turns
}

const contextHeader = "Conversation so far:\n"

// RenderContext projects the log into a single context string: the empty
// string when nothing has been recorded, otherwise a fixed header followed by
// one "role: content" line per turn in insertion order.
func (h *History) RenderContext() string {
	if len(h.turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(contextHeader)
	for _, t := range h.turns {
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}
