package core

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. The role set is closed: every message in an agent history or
// conversation log carries exactly one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is the primary unit of conversational history. After emission it is
// treated as immutable: histories and conversation logs are append-only and
// entries are never edited or reordered. AgentID identifies the originating
// agent for assistant and system messages; it is empty for plain user input.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	AgentID   string    `json:"agent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with the current UTC timestamp.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// NewAgentMessage creates a message attributed to a specific agent.
func NewAgentMessage(role, content, agentID string) Message {
	m := NewMessage(role, content)
	m.AgentID = agentID
	return m
}

// Prefix returns the display prefix used when rendering the message into
// context summaries: the originating agent id when present, the role otherwise.
func (m Message) Prefix() string {
	if m.AgentID != "" {
		return m.AgentID
	}
	return m.Role
}

// NewID generates a new unique identifier for conversations and invocations.
func NewID() string { return uuid.NewString() }

// truncate shortens s to at most max characters, appending an ellipsis marker
// only when content was actually cut. Counting is rune-based so multi-byte
// content never splits mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
