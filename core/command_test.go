package core

import "testing"

func TestParseCommand(t *testing.T) {
	if cmd, ok := ParseCommand("/feature"); !ok || cmd != CommandFeature {
		t.Fatalf("expected /feature to parse, got %q ok=%v", cmd, ok)
	}
	if cmd, ok := ParseCommand("  /bug\n"); !ok || cmd != CommandBug {
		t.Fatalf("surrounding whitespace should be trimmed, got %q ok=%v", cmd, ok)
	}
	if _, ok := ParseCommand("/unknown-tag"); ok {
		t.Error("tags outside the vocabulary must not parse")
	}
	if _, ok := ParseCommand(""); ok {
		t.Error("empty input must not parse")
	}
	if _, ok := ParseCommand("feature"); ok {
		t.Error("missing slash must not parse")
	}
}

func TestParseTaskCommand(t *testing.T) {
	if cmd, ok := ParseTaskCommand("/chore"); !ok || cmd != CommandChore {
		t.Fatalf("expected /chore to parse, got %q ok=%v", cmd, ok)
	}
	// Valid vocabulary member, but not a task type.
	if _, ok := ParseTaskCommand("/tester"); ok {
		t.Error("classification subset must exclude non-task tags")
	}
}

func TestCommandsClosedVocabulary(t *testing.T) {
	if len(Commands()) != 10 {
		t.Fatalf("vocabulary drifted: %d tags", len(Commands()))
	}
	for _, c := range Commands() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
}
