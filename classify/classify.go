package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/repomesh/repomesh/core"
)

// Classifier decides which task command a free-form task maps to. The second
// return is false when the model's answer falls outside the whitelist; repoPath
// gives implementations access to the agent's checkout and may be ignored.
type Classifier interface {
	Classify(ctx context.Context, repoPath, task string, tier core.ModelTier) (core.Command, bool, error)
}

// Prompt renders the fixed classification prompt for task. The instruction
// set is deliberately rigid: the model must answer with a bare tag so the
// whitelist check stays a plain string comparison.
func Prompt(task string) string {
	var b strings.Builder
	b.WriteString("Classify the following task into exactly one of these commands:\n")
	b.WriteString("- /chore: routine maintenance work (dependency bumps, cleanups, small refactors)\n")
	b.WriteString("- /bug: fixing incorrect or broken behavior\n")
	b.WriteString("- /feature: adding new functionality\n\n")
	b.WriteString("Respond with only the command tag and nothing else.\n\n")
	fmt.Fprintf(&b, "Task: %s", task)
	return b.String()
}

// Match filters a raw model reply through the task command whitelist.
func Match(raw string) (core.Command, bool) {
	return core.ParseTaskCommand(raw)
}
