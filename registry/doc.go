// Package registry houses concrete implementations of the core.AgentStore.
// The interface itself (and the AgentRecord struct) live in the core package
// to centralize domain contracts. Keeping only implementations here prevents
// higher level packages (orchestrator, façade) from depending on concrete
// storage.
//
// FileStore is the durable default: one directory per agent holding a
// config.json and a history.json, every mutation persisted through an atomic
// write-then-rename. InMemoryStore backs tests and ephemeral setups.
package registry
