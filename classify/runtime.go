package classify

import (
	"context"
	"fmt"

	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/logging"
)

// Options configures the runtime-backed classifier.
type Options struct {
	// SkipPermissions is forwarded to the runtime invocation.
	SkipPermissions bool
	// Logger receives classification diagnostics.
	Logger logging.Logger
}

// RuntimeClassifier classifies by asking the external CLI runtime itself,
// running in the agent's repository so the model can consult the checkout.
type RuntimeClassifier struct {
	invoker         core.Invoker
	skipPermissions bool
	logger          logging.Logger
}

var _ Classifier = (*RuntimeClassifier)(nil)

// NewRuntimeClassifier wraps an invoker as a Classifier.
func NewRuntimeClassifier(invoker core.Invoker, optFns ...func(o *Options)) *RuntimeClassifier {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &RuntimeClassifier{
		invoker:         invoker,
		skipPermissions: opts.SkipPermissions,
		logger:          opts.Logger,
	}
}

// Classify runs the classification prompt in repoPath. A failed invocation is
// surfaced as an error wrapping core.ErrInvocationFailed; a reply outside the
// whitelist reports no match without error.
func (c *RuntimeClassifier) Classify(ctx context.Context, repoPath, task string, tier core.ModelTier) (core.Command, bool, error) {
	resp, err := c.invoker.Invoke(ctx, core.InvokeRequest{
		Prompt:           Prompt(task),
		Model:            tier,
		WorkingDirectory: repoPath,
		SkipPermissions:  c.skipPermissions,
	})
	if err != nil {
		return "", false, err
	}
	if !resp.Success {
		return "", false, fmt.Errorf("%w: %s", core.ErrInvocationFailed, resp.Output)
	}

	tag, ok := Match(resp.Output)
	if !ok {
		c.logger.Debug("classification outside whitelist", "raw", resp.Output)
		return "", false, nil
	}
	return tag, true, nil
}
