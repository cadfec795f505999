package core

import (
	"strings"
	"testing"
)

func TestConversation_AddParticipantIdempotent(t *testing.T) {
	conv := NewConversation()
	conv.AddParticipant("svc", "")
	conv.AddParticipant("svc", "")

	if got := conv.ParticipantNames(); len(got) != 1 || got[0] != "svc" {
		t.Fatalf("expected exactly one participant, got %v", got)
	}

	joins := 0
	for _, msg := range conv.RecentMessages(0) {
		if msg.Role == RoleSystem && strings.Contains(msg.Content, "joined") {
			joins++
		}
	}
	if joins != 1 {
		t.Errorf("expected exactly one join announcement, got %d", joins)
	}
}

func TestConversation_JoinAnnouncementTruncation(t *testing.T) {
	conv := NewConversation()
	conv.AddParticipant("auth-service", "")

	summary := strings.Repeat("x", 400)
	conv.AddParticipant("payments", summary)

	if !conv.HasParticipant("payments") {
		t.Fatal("payments should be a participant")
	}

	msgs := conv.RecentMessages(1)
	want := strings.Repeat("x", 300) + "..."
	if !strings.Contains(msgs[0].Content, want) {
		t.Errorf("announcement should embed the 300-char prefix plus ellipsis, got %q", msgs[0].Content)
	}
	if strings.Contains(msgs[0].Content, strings.Repeat("x", 301)) {
		t.Error("announcement must not carry more than 300 summary characters")
	}
}

func TestConversation_RemoveParticipant(t *testing.T) {
	conv := NewConversation()
	conv.AddParticipant("svc", "")
	conv.RemoveParticipant("svc")

	if conv.HasParticipant("svc") {
		t.Error("svc should have been removed")
	}

	msgs := conv.RecentMessages(1)
	if !strings.Contains(msgs[0].Content, "left the conversation") {
		t.Errorf("expected departure announcement, got %q", msgs[0].Content)
	}

	// Absent name is a no-op: no extra announcement.
	before := len(conv.RecentMessages(0))
	conv.RemoveParticipant("ghost")
	if len(conv.RecentMessages(0)) != before {
		t.Error("removing an absent participant must not append messages")
	}
}

func TestConversation_RecentMessagesOrder(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewMessage(RoleUser, "A"))
	conv.AddMessage(NewMessage(RoleUser, "B"))
	conv.AddMessage(NewMessage(RoleUser, "C"))

	got := conv.RecentMessages(2)
	if len(got) != 2 || got[0].Content != "B" || got[1].Content != "C" {
		t.Fatalf("expected [B C] in append order, got %+v", got)
	}
}

func TestConversation_TimestampsNonDecreasing(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewMessage(RoleUser, "A"))
	conv.AddMessage(NewMessage(RoleUser, "B"))
	conv.AddMessage(NewMessage(RoleUser, "C"))

	msgs := conv.RecentMessages(0)
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("timestamps must be non-decreasing in append order")
		}
	}
}

func TestConversation_JoinContext(t *testing.T) {
	conv := NewConversation()
	if got := conv.JoinContext(20); got != NoConversationHistory {
		t.Fatalf("empty log should yield sentinel, got %q", got)
	}

	conv.AddParticipant("svc", "")
	conv.AddMessage(NewAgentMessage(RoleAssistant, strings.Repeat("y", 301), "svc"))

	ctx := conv.JoinContext(20)
	if !strings.Contains(ctx, "Current participants: svc") {
		t.Errorf("join context missing participant header: %q", ctx)
	}
	if !strings.Contains(ctx, "[svc]: "+strings.Repeat("y", 300)+"...") {
		t.Error("301-char content should be rendered as 300-char prefix plus ellipsis")
	}

	// Exactly 300 characters passes through unmodified.
	conv2 := NewConversation()
	exact := strings.Repeat("z", 300)
	conv2.AddMessage(NewMessage(RoleUser, exact))
	if !strings.Contains(conv2.JoinContext(20), "[user]: "+exact) {
		t.Error("300-char content must be unmodified")
	}
	if strings.Contains(conv2.JoinContext(20), exact+"...") {
		t.Error("300-char content must not gain an ellipsis")
	}
}

func TestConversation_CloneIsIndependent(t *testing.T) {
	conv := NewConversation()
	conv.AddParticipant("svc", "")
	conv.SetMetadata("topic", "payments refactor")

	clone := conv.Clone()
	clone.AddParticipant("other", "")
	clone.SetMetadata("topic", "changed")

	if conv.HasParticipant("other") {
		t.Error("original should not see clone's participant")
	}
	if conv.Metadata["topic"] != "payments refactor" {
		t.Error("original metadata should be unchanged")
	}
}
