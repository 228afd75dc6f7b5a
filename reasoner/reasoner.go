// Package reasoner wraps the language-model decision step: given the full
// conversation history it produces either a final textual answer or a batch
// of structured tool invocation requests. The Reasoner interface decouples
// the control loop from any model provider; deterministic stubs implement it
// for testing and the openai / anthropic subpackages back it with real APIs.
package reasoner

import (
	"context"
	"fmt"
	"sync"

	"github.com/autopaper/autopaper/core"
)

// Output is the result of one reasoning step. An empty Requests slice makes
// FinalAnswer the terminal reply; a non-empty one asks the caller to execute
// the batch and come back with the extended history, with FinalAnswer
// carrying any reasoning text the model emitted alongside the requests.
type Output struct {
	FinalAnswer string
	Requests    []core.ToolRequest
}

// IsFinal reports whether this output terminates the loop.
func (o *Output) IsFinal() bool { return len(o.Requests) == 0 }

// Info describes a reasoner implementation.
type Info struct {
	Name     string
	Provider string
}

// Reasoner is the model-backed decision step. Step always receives the full
// ordered history, never a truncated window, so tool-call/result pairing
// stays unambiguous across long sessions. Implementations are treated as
// non-deterministic and externally rate limited; transient failures should
// surface as classified errors so the retry decorator can act on them.
type Reasoner interface {
	Step(ctx context.Context, turns []core.Turn) (*Output, error)
	Info() Info
}

// ScriptStep is one canned reply of a Scripted reasoner.
type ScriptStep struct {
	Output *Output
	Err    error
}

// Scripted is a deterministic in-memory Reasoner for tests and examples.
// Each Step consumes the next scripted entry; once the script is spent it
// replays the last entry forever, which makes "never converges" scenarios
// trivial to express.
type Scripted struct {
	mu    sync.Mutex
	steps []ScriptStep
	calls int
}

// NewScripted builds a scripted reasoner from the given steps.
func NewScripted(steps ...ScriptStep) *Scripted {
	return &Scripted{steps: steps}
}

// FinalStep is a convenience ScriptStep holding a final answer.
func FinalStep(answer string) ScriptStep {
	return ScriptStep{Output: &Output{FinalAnswer: answer}}
}

// RequestStep is a convenience ScriptStep holding a tool request batch.
func RequestStep(reqs ...core.ToolRequest) ScriptStep {
	return ScriptStep{Output: &Output{Requests: reqs}}
}

// ErrorStep is a convenience ScriptStep yielding an error.
func ErrorStep(err error) ScriptStep {
	return ScriptStep{Err: err}
}

// Step implements Reasoner.
func (s *Scripted) Step(_ context.Context, turns []core.Turn) (*Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return nil, fmt.Errorf("scripted reasoner has no steps")
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("reasoner invoked with empty history")
	}

	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++

	step := s.steps[idx]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Output, nil
}

// Info implements Reasoner.
func (s *Scripted) Info() Info { return Info{Name: "scripted", Provider: "test"} }

// Calls returns how many times Step ran.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
