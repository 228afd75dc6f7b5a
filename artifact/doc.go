// Package artifact contains concrete implementations of core.ArtifactStore.
//
// Research tools produce binary side effects: rendered plots, compiled PDFs,
// downloaded figures. The canonical ArtifactStore interface lives in the core
// package so tools and the loop depend on the contract, not a backend.
// This package supplies a volatile in-memory store; the fs subpackage stores
// artifacts on the local filesystem under per-session directories.
package artifact
