package core

import "strings"

// Command is one tag from the fixed, closed vocabulary of slash commands the
// external runtime's prompt templates understand. The coordination layer
// treats the vocabulary as opaque: it never interprets a tag's semantics,
// only routes it.
type Command string

// Task type commands. Classification maps free-form task text onto one of
// these three.
const (
	CommandChore   Command = "/chore"
	CommandBug     Command = "/bug"
	CommandFeature Command = "/feature"
)

// Designer commands.
const (
	CommandArchitect       Command = "/architect"
	CommandDesigner        Command = "/designer"
	CommandUIDesigner      Command = "/ui_designer"
	CommandTestTDDDesigner Command = "/test_tdd_designer"
)

// Coder and validator commands.
const (
	CommandBackendCoder Command = "/backend_coder"
	CommandUICoder      Command = "/ui_coder"
	CommandTester       Command = "/tester"
)

// Commands returns the full closed command vocabulary in declaration order.
func Commands() []Command {
	return []Command{
		CommandChore, CommandBug, CommandFeature,
		CommandArchitect, CommandDesigner, CommandUIDesigner, CommandTestTDDDesigner,
		CommandBackendCoder, CommandUICoder, CommandTester,
	}
}

// TaskCommands returns the subset of tags a classifier may resolve a task to.
func TaskCommands() []Command {
	return []Command{CommandChore, CommandBug, CommandFeature}
}

// Valid reports whether c is a member of the closed vocabulary.
func (c Command) Valid() bool {
	for _, known := range Commands() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCommand trims s and accepts it only if it is a member of the closed
// vocabulary. Any other value (empty, malformed, unrecognized) yields
// ok=false; the raw string is never surfaced as a Command.
func ParseCommand(s string) (Command, bool) {
	c := Command(strings.TrimSpace(s))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// ParseTaskCommand is ParseCommand restricted to the classification subset.
func ParseTaskCommand(s string) (Command, bool) {
	c := Command(strings.TrimSpace(s))
	for _, known := range TaskCommands() {
		if c == known {
			return c, true
		}
	}
	return "", false
}
