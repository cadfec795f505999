// Package conversation houses concrete implementations of the
// core.ConversationStore. The Conversation type itself lives in the core
// package to centralize domain contracts.
//
// FileStore is the durable default: one <id>.json per conversation under its
// root, every mutation persisted through an atomic write-then-rename and
// loaded lazily on first access. InMemoryStore backs tests and ephemeral
// setups.
package conversation
