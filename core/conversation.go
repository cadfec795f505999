package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// NoConversationHistory is the fixed sentinel returned by JoinContext when the
// shared log is empty.
const NoConversationHistory = "This is a new conversation with no history."

// joinContextContentLimit caps per-message content length in join context
// summaries and join announcements.
const joinContextContentLimit = 300

// Conversation is a shared, append-only message log with an explicit, mutable
// participant set. Participants are agent names in insertion order without
// duplicates; membership is validated against the registry only at insertion
// time, never retroactively. A conversation has no close or archive state:
// removing the last participant leaves it active with an intact log.
//
// Conversation is safe for concurrent access. Store implementations hand out
// clones so callers can never mutate a store's internal record directly.
type Conversation struct {
	ID           string         `json:"id"`
	Participants []string       `json:"participants"`
	Messages     []Message      `json:"messages"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	mu sync.RWMutex
}

// NewConversation creates an empty conversation with a fresh unique id.
func NewConversation() *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]any{},
	}
}

// AddParticipant appends an agent to the participant list and records a
// system message announcing the join. It is idempotent: adding an existing
// participant is a no-op that produces no announcement. A non-empty
// contextSummary is embedded in the announcement, truncated to 300 characters
// with an ellipsis marker when longer.
func (c *Conversation) AddParticipant(agentName, contextSummary string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.Participants {
		if p == agentName {
			return
		}
	}

	c.Participants = append(c.Participants, agentName)

	content := fmt.Sprintf("Agent '%s' joined the conversation.", agentName)
	if contextSummary != "" {
		content = fmt.Sprintf("Agent '%s' joined the conversation with context:\n%s",
			agentName, truncate(contextSummary, joinContextContentLimit))
	}
	c.appendLocked(NewAgentMessage(RoleSystem, content, agentName))
}

// RemoveParticipant removes an agent from the participant list and records a
// system departure message. Removing a non-participant is a no-op.
func (c *Conversation) RemoveParticipant(agentName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, p := range c.Participants {
		if p == agentName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	c.Participants = append(c.Participants[:idx], c.Participants[idx+1:]...)
	c.appendLocked(NewAgentMessage(RoleSystem,
		fmt.Sprintf("Agent '%s' left the conversation.", agentName), agentName))
}

// HasParticipant reports whether agentName is a current participant.
func (c *Conversation) HasParticipant(agentName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.Participants {
		if p == agentName {
			return true
		}
	}
	return false
}

// ParticipantNames returns a copy of the participant list in insertion order.
func (c *Conversation) ParticipantNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.Participants...)
}

// AddMessage appends a message to the shared log and bumps UpdatedAt.
func (c *Conversation) AddMessage(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(msg)
}

func (c *Conversation) appendLocked(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now().UTC()
}

// RecentMessages returns the last limit messages in original append order.
// A non-positive limit returns the full log.
func (c *Conversation) RecentMessages(limit int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := c.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// JoinContext renders the context summary handed to an agent joining the
// conversation: a header naming the current participants followed by the last
// maxMessages log entries as "[agent-id-or-role]: content", each content
// truncated to 300 characters with an ellipsis marker when truncated. Returns
// the NoConversationHistory sentinel when the log is empty.
func (c *Conversation) JoinContext(maxMessages int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.Messages) == 0 {
		return NoConversationHistory
	}

	recent := c.Messages
	if maxMessages > 0 && len(recent) > maxMessages {
		recent = recent[len(recent)-maxMessages:]
	}

	parts := []string{
		fmt.Sprintf("Conversation started: %s", c.CreatedAt.Format(time.RFC3339)),
		fmt.Sprintf("Current participants: %s", strings.Join(c.Participants, ", ")),
		"",
		"Recent messages:",
	}
	for _, msg := range recent {
		parts = append(parts, fmt.Sprintf("[%s]: %s", msg.Prefix(), truncate(msg.Content, joinContextContentLimit)))
	}

	return strings.Join(parts, "\n")
}

// SetMetadata stores a free-form key/value pair on the conversation. Metadata
// is an escape hatch for callers, not a primary data channel; nothing in the
// coordination layer interprets it.
func (c *Conversation) SetMetadata(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata[key] = value
	c.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the conversation safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Conversation{
		ID:           c.ID,
		Participants: append([]string(nil), c.Participants...),
		Messages:     make([]Message, len(c.Messages)),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Metadata:     make(map[string]any, len(c.Metadata)),
	}
	copy(clone.Messages, c.Messages)
	for k, v := range c.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
