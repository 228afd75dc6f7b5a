package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/core"
)

// stubTool is a configurable test double counting body invocations.
type stubTool struct {
	name   string
	schema map[string]any
	fn     func(tc *Context, args map[string]any) (any, error)
	calls  atomic.Int32
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub tool" }
func (s *stubTool) InputSchema() map[string]any {
	if s.schema != nil {
		return s.schema
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (s *stubTool) Call(tc *Context, args map[string]any) (any, error) {
	s.calls.Add(1)
	return s.fn(tc, args)
}

func topicSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string"},
		},
		"required": []string{"topic"},
	}
}

func newTestExecutor(t *testing.T, defs ...Definition) *Executor {
	t.Helper()
	reg, err := NewRegistry(defs...)
	require.NoError(t, err)
	return NewExecutor(reg)
}

func TestExecutor_SchemaViolationSkipsToolBody(t *testing.T) {
	stub := &stubTool{
		name:   "arxiv_search",
		schema: topicSchema(),
		fn: func(_ *Context, _ map[string]any) (any, error) {
			return "should not run", nil
		},
	}
	exec := newTestExecutor(t, Definition{Tool: stub})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{
		ID:        "r1",
		ToolName:  "arxiv_search",
		Arguments: json.RawMessage(`{"max_results": 3}`), // topic missing
	})

	assert.Equal(t, core.StatusError, res.Status)
	assert.Equal(t, core.ClassSchemaViolation, res.ErrorDetail)
	assert.Equal(t, int32(0), stub.calls.Load(), "tool body must not be invoked on invalid arguments")
}

func TestExecutor_UnknownToolIsSchemaViolation(t *testing.T) {
	exec := newTestExecutor(t)

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "nope"})

	assert.Equal(t, core.StatusError, res.Status)
	assert.Equal(t, core.ClassSchemaViolation, res.ErrorDetail)
}

func TestExecutor_MalformedArgumentJSON(t *testing.T) {
	stub := &stubTool{name: "plot", fn: func(_ *Context, _ map[string]any) (any, error) { return nil, nil }}
	exec := newTestExecutor(t, Definition{Tool: stub})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{
		ID:        "r1",
		ToolName:  "plot",
		Arguments: json.RawMessage(`{"broken`),
	})

	assert.Equal(t, core.ClassSchemaViolation, res.ErrorDetail)
	assert.Equal(t, int32(0), stub.calls.Load())
}

func TestExecutor_TimeoutThenSuccessWithinRetryPolicy(t *testing.T) {
	stub := &stubTool{name: "read_paper"}
	stub.fn = func(tc *Context, _ map[string]any) (any, error) {
		if stub.calls.Load() == 1 {
			<-tc.Context().Done()
			return nil, tc.Context().Err()
		}
		return map[string]any{"content": "extracted text"}, nil
	}
	exec := newTestExecutor(t, Definition{
		Tool:    stub,
		Timeout: 20 * time.Millisecond,
		Retry:   RetryPolicy{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "read_paper"})

	assert.Equal(t, core.StatusOK, res.Status)
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestExecutor_RenderErrorIsNotRetried(t *testing.T) {
	stub := &stubTool{name: "render_latex"}
	stub.fn = func(_ *Context, _ map[string]any) (any, error) {
		return nil, core.NewRenderError("pdflatex exited 1", nil)
	}
	exec := newTestExecutor(t, Definition{
		Tool:  stub,
		Retry: RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Millisecond},
	})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "render_latex"})

	assert.Equal(t, core.StatusError, res.Status)
	assert.Equal(t, core.ClassRender, res.ErrorDetail)
	assert.Equal(t, int32(1), stub.calls.Load(), "deterministic failures must not be retried")
}

func TestExecutor_NetworkErrorRetriesUpToPolicy(t *testing.T) {
	stub := &stubTool{name: "arxiv_search"}
	stub.fn = func(_ *Context, _ map[string]any) (any, error) {
		return nil, core.NewNetworkError("connection refused", nil)
	}
	exec := newTestExecutor(t, Definition{
		Tool:  stub,
		Retry: RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond},
	})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "arxiv_search"})

	assert.Equal(t, core.StatusError, res.Status)
	assert.Equal(t, core.ClassNetwork, res.ErrorDetail)
	assert.Equal(t, int32(3), stub.calls.Load())
}

func TestExecutor_PanicIsContained(t *testing.T) {
	stub := &stubTool{name: "plot"}
	stub.fn = func(_ *Context, _ map[string]any) (any, error) {
		panic("index out of range")
	}
	exec := newTestExecutor(t, Definition{Tool: stub})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "plot"})

	assert.Equal(t, core.StatusError, res.Status)
	assert.Equal(t, core.ClassUnknown, res.ErrorDetail)
}

func TestExecutor_BatchResultsInRequestOrder(t *testing.T) {
	mkTool := func(name string, delay time.Duration) *stubTool {
		s := &stubTool{name: name}
		s.fn = func(tc *Context, _ map[string]any) (any, error) {
			select {
			case <-time.After(delay):
			case <-tc.Context().Done():
				return nil, tc.Context().Err()
			}
			return name, nil
		}
		return s
	}
	// The slow tool comes first so completion order inverts request order.
	slow := mkTool("slow_tool", 40*time.Millisecond)
	fast := mkTool("fast_tool", 0)
	exec := newTestExecutor(t, Definition{Tool: slow}, Definition{Tool: fast})

	reqs := []core.ToolRequest{
		{ID: "r1", ToolName: "slow_tool"},
		{ID: "r2", ToolName: "fast_tool"},
		{ID: "r3", ToolName: "fast_tool"},
	}
	results := exec.ExecuteBatch(context.Background(), "s1", reqs)

	require.Len(t, results, len(reqs))
	for i, res := range results {
		assert.Equal(t, reqs[i].ID, res.RequestID, "result %d must pair with request %d", i, i)
		assert.Equal(t, core.StatusOK, res.Status)
	}
}

func TestExecutor_DeterministicToolIsIdempotent(t *testing.T) {
	stub := &stubTool{name: "latex_table"}
	stub.fn = func(_ *Context, args map[string]any) (any, error) {
		return fmt.Sprintf("table:%v", args["caption"]), nil
	}
	exec := newTestExecutor(t, Definition{Tool: stub})

	req := core.ToolRequest{ID: "r1", ToolName: "latex_table", Arguments: json.RawMessage(`{"caption":"Results"}`)}
	first := exec.Execute(context.Background(), "s1", req)
	second := exec.Execute(context.Background(), "s1", req)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Payload, second.Payload)
}

func TestExecutor_ArtifactRefsSurfaceOnResult(t *testing.T) {
	stub := &stubTool{name: "create_plot"}
	stub.fn = func(tc *Context, _ map[string]any) (any, error) {
		tc.RecordArtifact("plots/accuracy.png")
		return map[string]any{"path": "plots/accuracy.png"}, nil
	}
	exec := newTestExecutor(t, Definition{Tool: stub})

	res := exec.Execute(context.Background(), "s1", core.ToolRequest{ID: "r1", ToolName: "create_plot"})

	require.Equal(t, core.StatusOK, res.Status)
	assert.Equal(t, []string{"plots/accuracy.png"}, res.ArtifactRefs)
}
