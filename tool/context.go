package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
)

// Context is the constrained surface handed to a tool body for one
// invocation. It carries cancellation, correlation ids and artifact
// persistence helpers, and accumulates the artifact references the tool
// produced so the executor can attach them to the ToolResult.
type Context struct {
	ctx       context.Context
	sessionID string
	requestID string
	store     core.ArtifactStore
	logger    logging.Logger

	mu        sync.Mutex
	artifacts []string
}

// NewContext builds an invocation context. store may be nil for tools that
// produce no artifacts; logger falls back to a no-op.
func NewContext(ctx context.Context, sessionID, requestID string, store core.ArtifactStore, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{ctx: ctx, sessionID: sessionID, requestID: requestID, store: store, logger: logger}
}

// Context returns the cancellation context bounding this invocation.
func (tc *Context) Context() context.Context { return tc.ctx }

// SessionID returns the owning session's identifier.
func (tc *Context) SessionID() string { return tc.sessionID }

// RequestID returns the tool request id this invocation answers.
func (tc *Context) RequestID() string { return tc.requestID }

// Logger returns the structured logger for the invocation.
func (tc *Context) Logger() logging.Logger { return tc.logger }

// SaveArtifact persists artifact bytes under ref and records the reference
// for the resulting ToolResult.
func (tc *Context) SaveArtifact(ref string, data []byte) error {
	if tc.store == nil {
		return fmt.Errorf("artifact store not configured")
	}
	if err := tc.store.Save(tc.sessionID, ref, data); err != nil {
		return err
	}
	tc.RecordArtifact(ref)
	return nil
}

// RecordArtifact registers a reference to an artifact the tool persisted
// itself (a file path or served endpoint URL) without going through the
// artifact store.
func (tc *Context) RecordArtifact(ref string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.artifacts = append(tc.artifacts, ref)
}

// Artifacts returns the references recorded during this invocation.
func (tc *Context) Artifacts() []string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]string(nil), tc.artifacts...)
}
