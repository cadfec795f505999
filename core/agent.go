package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// NoAgentHistory is the fixed sentinel returned by ContextSummary when an
// agent has no recorded history.
const NoAgentHistory = "No conversation history."

// summaryContentLimit caps per-message content length in agent context summaries.
const summaryContentLimit = 200

// AgentConfig is the durable identity and configuration of an agent. It is
// immutable after registration; only the agent's history grows afterwards.
type AgentConfig struct {
	Name         string    `json:"name"`
	RepoPath     string    `json:"repo_path"`
	Description  string    `json:"description,omitempty"`
	Language     string    `json:"language,omitempty"`
	Framework    string    `json:"framework,omitempty"`
	EntryPoints  []string  `json:"entry_points,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate reports whether the config carries the required identity fields.
func (c AgentConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("agent name is required")
	}
	if strings.TrimSpace(c.RepoPath) == "" {
		return fmt.Errorf("agent repo path is required")
	}
	return nil
}

// AgentRecord is an agent identity plus its private rolling message history
// and the optional session continuation token returned by the external
// runtime. It is safe for concurrent access.
//
// Contract:
//   - History is append-only; entries are never mutated after AddMessage
//   - History returns a defensive copy to avoid external mutation
//   - Clone performs deep copies for safe divergence.
type AgentRecord struct {
	Config    AgentConfig
	history   []Message
	sessionID string
	mu        sync.RWMutex
}

// NewAgentRecord creates a record for a freshly registered agent. A zero
// CreatedAt is stamped with the current UTC time.
func NewAgentRecord(config AgentConfig) *AgentRecord {
	if config.CreatedAt.IsZero() {
		config.CreatedAt = time.Now().UTC()
	}
	return &AgentRecord{Config: config}
}

// Name returns the agent's unique registry name.
func (a *AgentRecord) Name() string { return a.Config.Name }

// RepoPath returns the repository checkout the agent is bound to.
func (a *AgentRecord) RepoPath() string { return a.Config.RepoPath }

// AddMessage appends a message to the agent's private history.
func (a *AgentRecord) AddMessage(msg Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msg)
}

// History returns a defensive copy of the full message history.
func (a *AgentRecord) History() []Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	history := make([]Message, len(a.history))
	copy(history, a.history)
	return history
}

// SetSessionID records the external runtime's session continuation token.
func (a *AgentRecord) SetSessionID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionID = id
}

// SessionID returns the last recorded session continuation token ("" if none).
func (a *AgentRecord) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// ContextSummary renders the last maxMessages history entries as
// "[role]: content" (or "[role - agentID]: content" when attributed), each
// content truncated to 200 characters with an ellipsis marker when truncated.
// Returns the NoAgentHistory sentinel for an empty history.
func (a *AgentRecord) ContextSummary(maxMessages int) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.history) == 0 {
		return NoAgentHistory
	}

	recent := a.history
	if maxMessages > 0 && len(recent) > maxMessages {
		recent = recent[len(recent)-maxMessages:]
	}

	parts := make([]string, 0, len(recent))
	for _, msg := range recent {
		prefix := fmt.Sprintf("[%s]", msg.Role)
		if msg.AgentID != "" {
			prefix = fmt.Sprintf("[%s - %s]", msg.Role, msg.AgentID)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", prefix, truncate(msg.Content, summaryContentLimit)))
	}

	return strings.Join(parts, "\n")
}

// Clone returns a deep copy of the record safe for independent mutation.
func (a *AgentRecord) Clone() *AgentRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	clone := &AgentRecord{Config: a.Config, sessionID: a.sessionID}
	clone.Config.EntryPoints = append([]string(nil), a.Config.EntryPoints...)
	clone.history = make([]Message, len(a.history))
	copy(clone.history, a.history)
	return clone
}

// RestoreHistory replaces the in-memory history wholesale. It exists for
// store implementations reloading a record from durable storage and must not
// be used to rewrite a live history.
func (a *AgentRecord) RestoreHistory(history []Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = make([]Message, len(history))
	copy(a.history, history)
}
