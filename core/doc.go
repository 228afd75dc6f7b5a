// Package core contains the shared data model of the research assistant:
// conversation turns, tool invocation requests and results, the append-only
// Conversation log, the failure taxonomy, and the store interfaces used for
// optional persistence. Higher layers (reasoner, tool, loop) depend on core;
// core depends on nothing but the standard library and uuid generation.
package core
