package core

import "fmt"

var (
	// ErrAgentExists is returned when registering an agent whose name is
	// already present in the registry and the store rejects conflicts.
	ErrAgentExists = fmt.Errorf("agent already registered")

	// ErrAgentNotFound is returned when an unknown agent name is referenced.
	ErrAgentNotFound = fmt.Errorf("agent not found")

	// ErrConversationNotFound is returned when an unknown conversation id is
	// referenced.
	ErrConversationNotFound = fmt.Errorf("conversation not found")

	// ErrToolUnavailable indicates the external runtime binary is unreachable
	// or misconfigured. It is fatal for any invocation until resolved.
	ErrToolUnavailable = fmt.Errorf("external runtime unavailable")

	// ErrInvocationFailed indicates a runtime invocation produced a nonzero
	// exit or malformed structured output. Callers may retry with backoff.
	ErrInvocationFailed = fmt.Errorf("runtime invocation failed")

	// ErrNoClassification indicates the classifier returned a tag outside the
	// whitelist. Callers must apply a fallback policy or ask for clarification.
	ErrNoClassification = fmt.Errorf("task classification ambiguous")
)
