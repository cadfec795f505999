package orchestrator

import (
	"fmt"
	"strings"

	"github.com/repomesh/repomesh/core"
)

// buildPrompt assembles the full prompt for one broadcast leg: the agent's
// system prompt, its repository identity, the recent conversation context and
// finally the current user message.
func buildPrompt(rec *core.AgentRecord, contextMessages []core.Message, userPrompt string) string {
	var parts []string

	if rec.Config.SystemPrompt != "" {
		parts = append(parts, "System: "+rec.Config.SystemPrompt, "")
	}

	parts = append(parts, fmt.Sprintf("You are an agent for the %q repository.", rec.Name()))
	parts = append(parts, "Repository path: "+rec.RepoPath())
	if rec.Config.Description != "" {
		parts = append(parts, "Repository description: "+rec.Config.Description)
	}
	parts = append(parts, "")

	if len(contextMessages) > 0 {
		parts = append(parts, "Recent conversation context:")
		for _, msg := range contextMessages {
			parts = append(parts, fmt.Sprintf("[%s]: %s", msg.Prefix(), msg.Content))
		}
		parts = append(parts, "")
	}

	parts = append(parts, "User: "+userPrompt)

	return strings.Join(parts, "\n")
}

// shorten caps s at max runes for diagnostics.
func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
