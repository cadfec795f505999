package testutil

import (
	"context"

	"github.com/repomesh/repomesh/core"
)

// InvokerFunc adapts a function to core.Invoker so tests can script runtime
// behavior per request without touching the real binary.
type InvokerFunc func(ctx context.Context, req core.InvokeRequest) (core.InvokeResponse, error)

// Invoke implements core.Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, req core.InvokeRequest) (core.InvokeResponse, error) {
	return f(ctx, req)
}

// EchoInvoker succeeds on every request, echoing the prompt back with the
// given session id.
func EchoInvoker(sessionID string) core.Invoker {
	return InvokerFunc(func(_ context.Context, req core.InvokeRequest) (core.InvokeResponse, error) {
		return core.InvokeResponse{
			Output:    "echo: " + req.Prompt,
			Success:   true,
			SessionID: sessionID,
		}, nil
	})
}

// FailingInvoker fails every request with the given diagnostic output.
func FailingInvoker(output string) core.Invoker {
	return InvokerFunc(func(context.Context, core.InvokeRequest) (core.InvokeResponse, error) {
		return core.InvokeResponse{Output: output, Success: false}, nil
	})
}
