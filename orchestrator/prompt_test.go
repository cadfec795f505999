package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repomesh/repomesh/core"
)

func TestBuildPrompt(t *testing.T) {
	rec := core.NewAgentRecord(core.AgentConfig{
		Name:         "auth-service",
		RepoPath:     "./repos/auth-service",
		Description:  "Authentication and session management",
		SystemPrompt: "Prefer minimal diffs.",
	})

	context := []core.Message{
		core.NewMessage(core.RoleUser, "what changed?"),
		core.NewAgentMessage(core.RoleAssistant, "token rotation landed", "payments"),
	}

	prompt := buildPrompt(rec, context, "summarize open work")

	lines := strings.Split(prompt, "\n")
	assert.Equal(t, "System: Prefer minimal diffs.", lines[0])
	assert.Contains(t, prompt, `You are an agent for the "auth-service" repository.`)
	assert.Contains(t, prompt, "Repository path: ./repos/auth-service")
	assert.Contains(t, prompt, "Repository description: Authentication and session management")
	assert.Contains(t, prompt, "[user]: what changed?")
	assert.Contains(t, prompt, "[payments]: token rotation landed")
	assert.True(t, strings.HasSuffix(prompt, "User: summarize open work"))
}

func TestBuildPrompt_NoContext(t *testing.T) {
	rec := core.NewAgentRecord(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})

	prompt := buildPrompt(rec, nil, "hello")
	assert.NotContains(t, prompt, "Recent conversation context:")
	assert.NotContains(t, prompt, "System:")
	assert.True(t, strings.HasSuffix(prompt, "User: hello"))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "abcde", shorten("abcde", 5))
	assert.Equal(t, "abcde...", shorten("abcdef", 5))
}
