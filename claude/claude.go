package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/repomesh/repomesh/core"
	"github.com/repomesh/repomesh/internal/util"
	"github.com/repomesh/repomesh/logging"
)

// DefaultPath is the binary name resolved through PATH when no explicit
// location is configured.
const DefaultPath = "claude"

// Options configures the CLI adapter.
type Options struct {
	// Path locates the binary. Defaults to DefaultPath.
	Path string
	// Timeout bounds a single invocation. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration
	// Logger receives adapter diagnostics.
	Logger logging.Logger
}

// CLI invokes the Claude Code binary as a subprocess. It implements
// core.Invoker and is safe for concurrent use; every call spawns its own
// process.
type CLI struct {
	path    string
	timeout time.Duration
	logger  logging.Logger
}

var _ core.Invoker = (*CLI)(nil)

// New creates a CLI adapter.
func New(optFns ...func(o *Options)) *CLI {
	opts := Options{
		Path:   DefaultPath,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &CLI{
		path:    opts.Path,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// CheckInstalled probes the binary with a version query. It returns an error
// wrapping core.ErrToolUnavailable when the binary is missing or broken.
func (c *CLI) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.path, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: expected at %q: %v", core.ErrToolUnavailable, c.path, err)
	}
	return nil
}

// modelName maps a tier onto the CLI's model alias. Unknown tiers get the
// balanced alias.
func modelName(tier core.ModelTier) string {
	switch tier {
	case core.ModelTierFast:
		return "haiku"
	case core.ModelTierMostCapable:
		return "opus"
	default:
		return "sonnet"
	}
}

// Invoke runs one prompt to completion. The binary inherits the parent
// environment and runs in req.WorkingDirectory when set. A non-zero exit or
// a timeout yields a Success=false response; an unusable binary yields an
// error wrapping core.ErrToolUnavailable.
func (c *CLI) Invoke(ctx context.Context, req core.InvokeRequest) (core.InvokeResponse, error) {
	if err := c.CheckInstalled(ctx); err != nil {
		return core.InvokeResponse{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-p", req.Prompt, "--model", modelName(req.Model)}
	if req.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	if req.SessionID != "" {
		args = append(args, "--resume", req.SessionID)
	}

	c.logger.Debug("invoking runtime",
		"model", modelName(req.Model),
		"agent", req.AgentName,
		"invocation_id", req.InvocationID,
		"capture", req.OutputFile != "")

	if req.OutputFile != "" {
		return c.invokeCapture(ctx, req, args)
	}
	return c.invokeText(ctx, req, args)
}

func (c *CLI) invokeText(ctx context.Context, req core.InvokeRequest, args []string) (core.InvokeResponse, error) {
	args = append(args, "--output-format", "text")

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Dir = req.WorkingDirectory

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if resp, done, err := c.finish(ctx, req, cmd.Run(), &stderr); done {
		return resp, err
	}

	return core.InvokeResponse{
		Output:  strings.TrimSpace(stdout.String()),
		Success: true,
	}, nil
}

func (c *CLI) invokeCapture(ctx context.Context, req core.InvokeRequest, args []string) (core.InvokeResponse, error) {
	args = append(args, "--output-format", "stream-json", "--verbose")

	if path, err := savePrompt(req.Prompt, filepath.Dir(req.OutputFile)); err != nil {
		c.logger.Warn("failed to save prompt", "error", err)
	} else if path != "" {
		c.logger.Debug("saved prompt", "path", path)
	}

	stream, err := util.CreateFileWithDirs(req.OutputFile)
	if err != nil {
		return core.InvokeResponse{}, fmt.Errorf("create stream output: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Dir = req.WorkingDirectory
	cmd.Stdout = stream

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if closeErr := stream.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	if resp, done, err := c.finish(ctx, req, runErr, &stderr); done {
		return resp, err
	}

	_, result, parseErr := parseStream(req.OutputFile)
	if parseErr == nil {
		if _, err := convertToJSON(req.OutputFile); err != nil {
			c.logger.Warn("failed to convert stream output", "error", err)
		}
	}
	if parseErr != nil || result == nil {
		return core.InvokeResponse{
			Output:  "Error: no result record in runtime output",
			Success: false,
		}, nil
	}

	return core.InvokeResponse{
		Output:     result.Result,
		Success:    !result.IsError,
		SessionID:  result.SessionID,
		CostUSD:    result.TotalCostUSD,
		DurationMS: result.DurationMS,
	}, nil
}

// finish normalizes a process exit. done=true means the caller should return
// the response as-is; done=false means the process exited zero.
func (c *CLI) finish(ctx context.Context, req core.InvokeRequest, runErr error, stderr *bytes.Buffer) (core.InvokeResponse, bool, error) {
	if runErr == nil {
		return core.InvokeResponse{}, false, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Warn("runtime invocation timed out", "agent", req.AgentName)
		return core.InvokeResponse{
			Output:  "Error: runtime invocation timed out",
			Success: false,
		}, true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return core.InvokeResponse{
			Output:  "Error: " + strings.TrimSpace(stderr.String()),
			Success: false,
		}, true, nil
	}

	// The process never started.
	return core.InvokeResponse{}, true, fmt.Errorf("%w: %v", core.ErrToolUnavailable, runErr)
}

var commandTagRe = regexp.MustCompile(`^/(\w+)`)

// savePrompt writes the prompt under <dir>/prompts/<tag>.txt when the prompt
// opens with a slash command. Prompts without one are not audited; the empty
// path signals that.
func savePrompt(prompt, dir string) (string, error) {
	m := commandTagRe.FindStringSubmatch(prompt)
	if m == nil {
		return "", nil
	}

	path := filepath.Join(dir, "prompts", m[1]+".txt")
	if err := util.WriteFileWithDirs(path, []byte(prompt), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
