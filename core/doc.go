// Package core provides the foundational domain types and contracts used by
// RepoMesh. It defines the core abstractions for:
//
//   - Agents (named, persistent proxies binding one external runtime session
//     lineage to one repository checkout)
//   - Messages (immutable, append-only conversational records)
//   - Conversations (shared message logs with explicit participant sets)
//   - Pluggable stores for agent records and conversations
//   - The Invoker boundary towards the external CLI agent runtime
//   - The closed command tag vocabulary used for task classification
//
// The package intentionally keeps implementation concerns (persistence, the
// concrete CLI adapter, orchestration) out of scope, exposing small interfaces
// to enable custom backends and deterministic fakes in tests.
package core
