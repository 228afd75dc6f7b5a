package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
	"github.com/xeipuuv/gojsonschema"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// MaxConcurrency bounds parallel invocations within one batch, keeping
	// pressure on external APIs predictable. Values < 1 mean 4.
	MaxConcurrency int
	// ArtifactStore receives artifact bytes tools persist via their Context.
	ArtifactStore core.ArtifactStore
	// Logger receives structured execution events.
	Logger logging.Logger
}

// Executor dispatches validated tool requests against a Registry. It owns
// every per-invocation policy: argument validation, the per-tool timeout,
// bounded retries with exponential backoff for transient failures, panic
// containment and failure classification. Tool bodies never see an invalid
// argument map and callers never see a raw error, only a ToolResult.
type Executor struct {
	registry       *Registry
	store          core.ArtifactStore
	logger         logging.Logger
	maxConcurrency int
}

// NewExecutor creates an Executor over the given registry.
func NewExecutor(registry *Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		MaxConcurrency: 4,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 4
	}
	return &Executor{
		registry:       registry,
		store:          opts.ArtifactStore,
		logger:         opts.Logger,
		maxConcurrency: opts.MaxConcurrency,
	}
}

// Execute runs a single tool request to a classified ToolResult. It never
// returns an error: every failure mode is normalized into the result.
func (e *Executor) Execute(ctx context.Context, sessionID string, req core.ToolRequest) core.ToolResult {
	start := time.Now()

	def, ok := e.registry.Get(req.ToolName)
	if !ok {
		return e.errorResult(req, core.NewSchemaViolation(fmt.Sprintf("unknown tool %q", req.ToolName)), start)
	}

	args, verr := e.validateArguments(def, req)
	if verr != nil {
		// Fail fast: the tool body is never invoked on invalid input.
		return e.errorResult(req, verr, start)
	}

	payload, artifacts, err := e.executeWithRetry(ctx, sessionID, def, req, args)
	if err != nil {
		return e.errorResult(req, err, start)
	}

	logging.LogToolCall(e.logger, req.ToolName, req.ID, time.Since(start), nil)
	return core.ToolResult{
		RequestID:    req.ID,
		ToolName:     req.ToolName,
		Status:       core.StatusOK,
		Payload:      payload,
		ArtifactRefs: artifacts,
	}
}

// ExecuteBatch runs a batch of requests, possibly in parallel up to the
// configured concurrency limit, and returns exactly one result per request
// in the original request order regardless of completion order. Replaying
// the resulting log is therefore deterministic with respect to executor
// timing.
func (e *Executor) ExecuteBatch(ctx context.Context, sessionID string, reqs []core.ToolRequest) []core.ToolResult {
	results := make([]core.ToolResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	if len(reqs) == 1 {
		results[0] = e.Execute(ctx, sessionID, reqs[0])
		return results
	}

	p := pool.New().WithMaxGoroutines(e.maxConcurrency)
	for i := range reqs {
		p.Go(func() {
			results[i] = e.Execute(ctx, sessionID, reqs[i])
		})
	}
	p.Wait()

	return results
}

// validateArguments parses the raw argument JSON and validates it against
// the tool's input schema. Any problem is a schema_violation.
func (e *Executor) validateArguments(def Definition, req core.ToolRequest) (map[string]any, error) {
	args := map[string]any{}
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			return nil, core.NewSchemaViolation(fmt.Sprintf("arguments are not a JSON object: %v", err))
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.Tool.InputSchema()),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return nil, core.NewSchemaViolation(fmt.Sprintf("schema validation failed: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, core.NewSchemaViolation(strings.Join(msgs, "; "))
	}

	return args, nil
}

// executeWithRetry invokes the tool body under its timeout, retrying
// transient failures per the declared retry policy. Deterministic failures
// (schema, render) are permanent on first occurrence.
func (e *Executor) executeWithRetry(
	ctx context.Context,
	sessionID string,
	def Definition,
	req core.ToolRequest,
	args map[string]any,
) (any, []string, error) {
	var payload any
	var artifacts []string

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = def.Retry.InitialBackoff
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(def.Retry.MaxAttempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		p, a, err := e.invokeOnce(ctx, sessionID, def, req, args)
		if err != nil {
			class := core.ClassOf(err)
			e.logger.Warn("tool.call.attempt_failed",
				"tool", req.ToolName, "request_id", req.ID, "attempt", attempt, "class", string(class), "error", err.Error())
			if !class.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		payload, artifacts = p, a
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return nil, nil, err
	}
	return payload, artifacts, nil
}

// invokeOnce runs one attempt of the tool body under the per-tool timeout
// with panic containment.
func (e *Executor) invokeOnce(
	ctx context.Context,
	sessionID string,
	def Definition,
	req core.ToolRequest,
	args map[string]any,
) (payload any, artifacts []string, err error) {
	callCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	tc := NewContext(callCtx, sessionID, req.ID, e.store, e.logger)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool.call.panic", "tool", req.ToolName, "request_id", req.ID, "recover", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = core.NewClassifiedError(core.ClassUnknown, fmt.Sprintf("tool %s panicked", req.ToolName), fmt.Errorf("%v", r))
		}
	}()

	payload, err = def.Tool.Call(tc, args)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, nil, core.NewTimeoutError(fmt.Sprintf("tool %s exceeded %s timeout", req.ToolName, def.Timeout), err)
		}
		return nil, nil, err
	}
	return payload, tc.Artifacts(), nil
}

// errorResult normalizes err into a ToolResult with a classified detail.
func (e *Executor) errorResult(req core.ToolRequest, err error, start time.Time) core.ToolResult {
	class := core.ClassOf(err)
	if class == "" {
		class = core.ClassUnknown
	}
	logging.LogToolCall(e.logger, req.ToolName, req.ID, time.Since(start), err)
	return core.ToolResult{
		RequestID:    req.ID,
		ToolName:     req.ToolName,
		Status:       core.StatusError,
		ErrorDetail:  class,
		ErrorMessage: err.Error(),
	}
}
