package core

import (
	"strings"
	"testing"
)

func TestAgentRecord_HistoryDefensiveCopy(t *testing.T) {
	rec := NewAgentRecord(AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	rec.AddMessage(NewMessage(RoleUser, "hello"))

	history := rec.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	history[0].Content = "changed"
	if rec.History()[0].Content != "hello" {
		t.Error("history slice should be copied on read")
	}
}

func TestAgentRecord_ContextSummaryEmpty(t *testing.T) {
	rec := NewAgentRecord(AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	if got := rec.ContextSummary(10); got != NoAgentHistory {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestAgentRecord_ContextSummaryTruncation(t *testing.T) {
	rec := NewAgentRecord(AgentConfig{Name: "svc", RepoPath: "./repos/svc"})

	exact := strings.Repeat("a", 200)
	over := strings.Repeat("b", 201)
	rec.AddMessage(NewMessage(RoleUser, exact))
	rec.AddMessage(NewAgentMessage(RoleAssistant, over, "svc"))

	summary := rec.ContextSummary(10)
	lines := strings.Split(summary, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 summary lines, got %d", len(lines))
	}
	if lines[0] != "[user]: "+exact {
		t.Errorf("200-char content must be unmodified, got %q", lines[0])
	}
	want := "[assistant - svc]: " + strings.Repeat("b", 200) + "..."
	if lines[1] != want {
		t.Errorf("expected truncated line %q, got %q", want, lines[1])
	}
}

func TestAgentRecord_ContextSummaryWindow(t *testing.T) {
	rec := NewAgentRecord(AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	rec.AddMessage(NewMessage(RoleUser, "first"))
	rec.AddMessage(NewMessage(RoleUser, "second"))
	rec.AddMessage(NewMessage(RoleUser, "third"))

	summary := rec.ContextSummary(2)
	if strings.Contains(summary, "first") {
		t.Error("summary should only contain the last 2 messages")
	}
	if !strings.Contains(summary, "second") || !strings.Contains(summary, "third") {
		t.Errorf("summary missing recent messages: %q", summary)
	}
}

func TestAgentRecord_Clone(t *testing.T) {
	rec := NewAgentRecord(AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	rec.AddMessage(NewMessage(RoleUser, "hello"))
	rec.SetSessionID("sess-1")

	clone := rec.Clone()
	if clone == rec {
		t.Fatal("clone should be a different pointer")
	}
	clone.AddMessage(NewMessage(RoleUser, "only in clone"))
	if len(rec.History()) != 1 {
		t.Error("original should not see clone's appended message")
	}
	if clone.SessionID() != "sess-1" {
		t.Errorf("clone lost session id: %q", clone.SessionID())
	}
}

func TestAgentConfig_Validate(t *testing.T) {
	if err := (AgentConfig{Name: "svc", RepoPath: "./repos/svc"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (AgentConfig{RepoPath: "./repos/svc"}).Validate(); err == nil {
		t.Error("missing name should be rejected")
	}
	if err := (AgentConfig{Name: "svc"}).Validate(); err == nil {
		t.Error("missing repo path should be rejected")
	}
}
