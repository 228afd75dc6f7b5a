package reasoner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/core"
)

func history() []core.Turn {
	return []core.Turn{core.NewUserTurn("find recent work on sparse attention")}
}

func TestScriptedReplaysSteps(t *testing.T) {
	req := core.ToolRequest{ID: "call-1", ToolName: "arxiv_search", Arguments: json.RawMessage(`{"query":"sparse attention"}`)}
	r := NewScripted(
		RequestStep(req),
		FinalStep("done"),
	)

	out, err := r.Step(context.Background(), history())
	require.NoError(t, err)
	require.False(t, out.IsFinal())
	require.Len(t, out.Requests, 1)
	assert.Equal(t, "arxiv_search", out.Requests[0].ToolName)

	out, err = r.Step(context.Background(), history())
	require.NoError(t, err)
	assert.True(t, out.IsFinal())
	assert.Equal(t, "done", out.FinalAnswer)

	// Past the end of the script the last step repeats.
	out, err = r.Step(context.Background(), history())
	require.NoError(t, err)
	assert.Equal(t, "done", out.FinalAnswer)
	assert.Equal(t, 3, r.Calls())
}

func TestScriptedRejectsEmptyHistory(t *testing.T) {
	r := NewScripted(FinalStep("x"))
	_, err := r.Step(context.Background(), nil)
	require.Error(t, err)
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	r := WithRetry(NewScripted(
		ErrorStep(core.NewNetworkError("connection reset", errors.New("reset"))),
		FinalStep("recovered"),
	), func(o *RetryOptions) {
		o.MaxAttempts = 2
		o.InitialBackoff = time.Millisecond
	})

	out, err := r.Step(context.Background(), history())
	require.NoError(t, err)
	assert.Equal(t, "recovered", out.FinalAnswer)
}

func TestRetryExhaustionBecomesReasoningUnavailable(t *testing.T) {
	inner := NewScripted(
		ErrorStep(core.NewExternalServiceError("overloaded", nil)),
	)
	r := WithRetry(inner, func(o *RetryOptions) {
		o.MaxAttempts = 3
		o.InitialBackoff = time.Millisecond
	})

	_, err := r.Step(context.Background(), history())
	require.Error(t, err)
	assert.Equal(t, core.ClassReasoningUnavailable, core.ClassOf(err))
	assert.Equal(t, 3, inner.Calls())
}

func TestRetrySkipsNonRetryableErrors(t *testing.T) {
	inner := NewScripted(ErrorStep(errors.New("malformed reply")))
	r := WithRetry(inner, func(o *RetryOptions) {
		o.MaxAttempts = 5
		o.InitialBackoff = time.Millisecond
	})

	_, err := r.Step(context.Background(), history())
	require.Error(t, err)
	assert.Equal(t, core.ClassUnknown, core.ClassOf(err))
	assert.Equal(t, 1, inner.Calls())
}

func TestRetryPreservesInfo(t *testing.T) {
	r := WithRetry(NewScripted(FinalStep("x")))
	assert.Equal(t, "scripted", r.Info().Name)
}
