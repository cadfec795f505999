package core

import "context"

// ModelTier selects the capability/cost trade-off for a runtime invocation.
// The adapter maps tiers onto the concrete model identifiers of the external
// runtime; unknown tiers fall back to ModelTierBalanced.
type ModelTier string

const (
	ModelTierFast        ModelTier = "fast"
	ModelTierBalanced    ModelTier = "balanced"
	ModelTierMostCapable ModelTier = "most-capable"
)

// InvokeRequest carries everything the Runtime Adapter needs for exactly one
// prompt against the external runtime.
type InvokeRequest struct {
	// Prompt is the full prompt text passed to the runtime.
	Prompt string
	// Model selects the model tier for this invocation.
	Model ModelTier
	// WorkingDirectory overrides the directory the runtime runs in
	// (typically the agent's repository checkout). Empty = process cwd.
	WorkingDirectory string
	// SkipPermissions bypasses the runtime's interactive permission prompts.
	SkipPermissions bool
	// OutputFile, when set, switches the invocation to structured
	// streaming-output mode with line-delimited events captured at this path.
	OutputFile string
	// SessionID resumes a previous runtime session lineage when non-empty.
	SessionID string
	// InvocationID and AgentName key the prompt audit trail for captured
	// invocations. Optional.
	InvocationID string
	AgentName    string
}

// InvokeResponse is the normalized outcome of one runtime invocation.
// Invocation failures are reported as Success=false with diagnostic Output,
// not as an error, so broadcast flows can continue past one failed
// participant.
type InvokeResponse struct {
	// Output is the trimmed result text on success, the error stream contents
	// on failure.
	Output string
	// Success is true iff the runtime exited zero and (in capture mode) the
	// terminal result record carried no error flag.
	Success bool
	// SessionID is the runtime's session continuation token, when reported.
	SessionID string
	// CostUSD and DurationMS are reported only in capture mode; nil when the
	// runtime did not provide them.
	CostUSD    *float64
	DurationMS *int64
}

// Invoker is the boundary towards the external CLI agent runtime. One call
// means one prompt. Implementations must be substitutable with deterministic
// fakes; nothing above this interface may depend on the real binary.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error)
}
