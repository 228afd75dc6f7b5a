// Package session provides ConversationStore implementations for persisting
// ordered turn histories: a volatile in-memory store for tests and demos,
// and a SQLite-backed store (subpackage sqlite) for durable sessions.
package session
