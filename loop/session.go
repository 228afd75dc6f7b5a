package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/reasoner"
	"github.com/autopaper/autopaper/tool"
)

// State is the session lifecycle phase.
type State string

const (
	// StateAwaitingUser means the session is idle and ready for input.
	StateAwaitingUser State = "awaiting_user"
	// StateReasoning means a reasoner step is in flight.
	StateReasoning State = "reasoning"
	// StateExecutingTools means a tool request batch is being executed.
	StateExecutingTools State = "executing_tools"
	// StateDone means the last exchange ended with a final answer. The
	// session accepts further input.
	StateDone State = "done"
	// StateAborted is terminal: a session-fatal error occurred and no
	// further input is accepted.
	StateAborted State = "aborted"
)

// Result is the outcome of one completed exchange.
type Result struct {
	// Answer is the final assistant reply.
	Answer string
	// ArtifactRefs references every artifact tools persisted during the
	// exchange, in completion order.
	ArtifactRefs []string
	// Iterations counts the reasoner steps the exchange consumed.
	Iterations int
}

// Options holds dependency and configuration overrides passed to NewSession.
type Options struct {
	// MaxIterations bounds reasoner steps per exchange. When the budget is
	// exhausted the session aborts rather than looping forever.
	MaxIterations int
	// Store optionally mirrors every appended turn for persistence across
	// process restarts. The in-process conversation remains authoritative.
	Store core.ConversationStore
	// Logger receives structured progress events.
	Logger logging.Logger
}

// Session coordinates one conversation: it owns the history, invokes the
// reasoner with full snapshots, executes tool batches, and appends results
// in request order. Submit is safe for concurrent use; exchanges are
// serialized.
type Session struct {
	id       string
	conv     *core.Conversation
	reasoner reasoner.Reasoner
	executor *tool.Executor

	maxIterations int
	store         core.ConversationStore
	logger        logging.Logger

	mu    sync.Mutex
	state State
}

// NewSession constructs a session around a reasoner and a tool executor.
func NewSession(id string, r reasoner.Reasoner, exec *tool.Executor, optFns ...func(o *Options)) *Session {
	opts := Options{
		MaxIterations: 10,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}
	if id == "" {
		id = core.NewID()
	}

	return &Session{
		id:            id,
		conv:          core.NewConversation(id),
		reasoner:      r,
		executor:      exec,
		maxIterations: opts.MaxIterations,
		store:         opts.Store,
		logger:        logging.WithSession(opts.Logger, id),
		state:         StateAwaitingUser,
	}
}

// RestoreSession rebuilds a session from previously persisted turns. The
// restored history keeps its original ordering and new turns continue the
// sequence.
func RestoreSession(
	id string,
	turns []core.Turn,
	r reasoner.Reasoner,
	exec *tool.Executor,
	optFns ...func(o *Options),
) (*Session, error) {
	conv, err := core.RestoreConversation(id, turns)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	s := NewSession(id, r, exec, optFns...)
	s.conv = conv
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the full ordered conversation.
func (s *Session) History() []core.Turn { return s.conv.Snapshot() }

// Submit runs one exchange: it appends the user input and alternates
// reasoning and tool execution until a final answer arrives or the iteration
// budget is spent. Tool failures are recorded as classified results and fed
// back to the reasoner; only reasoner unavailability, budget exhaustion, and
// context cancellation abort the session.
func (s *Session) Submit(ctx context.Context, input string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAborted {
		return nil, fmt.Errorf("session %s is aborted", s.id)
	}
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	if err := s.appendTurn(core.NewUserTurn(input)); err != nil {
		return nil, err
	}

	var artifactRefs []string

	for iteration := 1; iteration <= s.maxIterations; iteration++ {
		s.state = StateReasoning
		snapshot := s.conv.Snapshot()
		start := time.Now()
		out, err := s.reasoner.Step(ctx, snapshot)
		logging.LogReasonerStep(s.logger, s.reasoner.Info().Provider, len(snapshot), time.Since(start), err)
		if err != nil {
			s.state = StateAborted
			if core.ClassOf(err).SessionFatal() {
				return nil, err
			}
			return nil, core.NewReasoningUnavailable("reasoning step failed", err)
		}

		if out.IsFinal() {
			if err := s.appendTurn(core.NewAssistantTurn(out.FinalAnswer)); err != nil {
				s.state = StateAborted
				return nil, err
			}
			s.state = StateDone
			s.logger.Info("exchange.complete",
				"iterations", iteration, "artifacts", len(artifactRefs))
			return &Result{
				Answer:       out.FinalAnswer,
				ArtifactRefs: artifactRefs,
				Iterations:   iteration,
			}, nil
		}

		if err := s.appendTurn(core.NewToolCallTurn(out.FinalAnswer, out.Requests)); err != nil {
			s.state = StateAborted
			return nil, err
		}

		s.state = StateExecutingTools
		results := s.executor.ExecuteBatch(ctx, s.id, out.Requests)

		// On cancellation the whole batch is dropped: either every result
		// of a batch enters the history or none does.
		if ctx.Err() != nil {
			s.state = StateAborted
			return nil, fmt.Errorf("session %s canceled: %w", s.id, ctx.Err())
		}

		for _, res := range results {
			if err := s.appendTurn(core.NewToolResultTurn(res)); err != nil {
				s.state = StateAborted
				return nil, err
			}
			artifactRefs = append(artifactRefs, res.ArtifactRefs...)
		}
	}

	s.state = StateAborted
	return nil, core.NewBudgetExhausted(
		fmt.Sprintf("no final answer after %d iterations", s.maxIterations))
}

// appendTurn appends to the in-process conversation and mirrors the stored
// turn, with its assigned order, to the configured store.
func (s *Session) appendTurn(t core.Turn) error {
	stored, err := s.conv.Append(t)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if s.store != nil {
		if err := s.store.AppendTurn(s.id, stored); err != nil {
			return fmt.Errorf("persist turn: %w", err)
		}
	}
	return nil
}
