// Package orchestrator composes the agent store, conversation store, runtime
// adapter and classifier into the top-level coordination API: registering
// per-repository agents, routing single-turn commands to them, and convening
// multi-party conversations with deterministic broadcast ordering.
//
// All mutation paths serialize per agent name and per conversation id, so at
// most one invocation is in flight for a given agent and a conversation log
// only ever has a single writer. Invocation failures come back as
// Success=false responses and never abort a broadcast.
package orchestrator
