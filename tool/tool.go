// Package tool implements the tool-calling subsystem: a fixed registry of
// named external capabilities with JSON Schema validated arguments, and an
// executor that dispatches validated requests under per-tool timeout and
// retry policies, normalizing every failure into a classified result.
package tool

import (
	"time"

	"github.com/autopaper/autopaper/core"
)

// Tool is a named external capability exposed to the reasoner. Tool bodies
// are thin request/response utilities; all orchestration concerns (argument
// validation, timeouts, retries, failure classification) live in the
// Executor, never in the tool itself.
//
// Implementations should:
//   - use snake_case names matching what the reasoner is told
//   - describe themselves in a way a model can act on
//   - be safe for concurrent use, since batch execution runs in parallel
//   - return *core.ClassifiedError for failures they can classify; the
//     executor classifies everything else
type Tool interface {
	// Name returns the unique registry key for this tool.
	Name() string

	// Description returns the natural-language description shown to the
	// reasoner.
	Description() string

	// InputSchema returns a JSON Schema object describing the accepted
	// arguments. Arguments are validated against it before Call runs.
	InputSchema() map[string]any

	// Call executes the tool body with schema-valid arguments. The
	// invocation context carries cancellation, the request id and artifact
	// persistence helpers.
	Call(tc *Context, args map[string]any) (any, error)
}

// RetryPolicy bounds how a tool's retryable failures are re-attempted.
// Attempts counts total tries including the first; backoff grows
// exponentially from InitialBackoff. Schema and render failures are never
// retried regardless of policy.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// DefaultRetryPolicy allows one retry after a short backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, InitialBackoff: 250 * time.Millisecond}
}

// Definition pairs a Tool with its execution policy. Definitions are
// registered once at process start and immutable thereafter.
type Definition struct {
	Tool    Tool
	Timeout time.Duration
	Retry   RetryPolicy
}

// Spec returns the declarative description of the tool for the reasoner.
func (d Definition) Spec() core.ToolSpec {
	return core.ToolSpec{
		Name:        d.Tool.Name(),
		Description: d.Tool.Description(),
		InputSchema: d.Tool.InputSchema(),
	}
}
