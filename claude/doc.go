// Package claude adapts the Claude Code CLI to the core.Invoker contract.
//
// The adapter shells out to the locally installed and authenticated binary,
// inheriting the parent environment so no API credentials are handled here.
// Two output modes are supported: plain text (stdout is the result) and
// capture mode, where the CLI streams line-delimited JSON events to a file
// and the terminal "result" record yields the response, session token and
// cost metadata. Invocation failures come back as Success=false responses;
// only a missing or broken binary is reported as an error.
package claude
