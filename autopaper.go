// Package autopaper provides a high-level facade over the research assistant
// core: conversation state, tool registry and executor, model-backed
// reasoners and the orchestration loop. Most applications interact with this
// package by:
//  1. Loading a config.Config (file + environment)
//  2. Creating an AutoPaper via New() (optionally overriding stores, logger
//     or the reasoner itself)
//  3. Opening sessions with NewSession / ResumeSession and calling Submit
//
// All defaults are safe for local development: in-memory stores, the full
// research tool set, and the provider selected in the configuration.
package autopaper

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	artifactfs "github.com/autopaper/autopaper/artifact/fs"
	"github.com/autopaper/autopaper/config"
	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/loop"
	"github.com/autopaper/autopaper/reasoner"
	anthropicreasoner "github.com/autopaper/autopaper/reasoner/anthropic"
	openaireasoner "github.com/autopaper/autopaper/reasoner/openai"
	"github.com/autopaper/autopaper/session"
	sqlitesession "github.com/autopaper/autopaper/session/sqlite"
	"github.com/autopaper/autopaper/tool"
	"github.com/autopaper/autopaper/tools/arxiv"
	"github.com/autopaper/autopaper/tools/dashboard"
	"github.com/autopaper/autopaper/tools/image"
	"github.com/autopaper/autopaper/tools/latex"
	"github.com/autopaper/autopaper/tools/paper"
	"github.com/autopaper/autopaper/tools/plot"
)

// Options configures the AutoPaper instance.
type Options struct {
	// Reasoner overrides the provider-backed reasoner, mainly for tests.
	Reasoner reasoner.Reasoner

	// Instructions is the system prompt for provider reasoners.
	Instructions string

	// ArtifactStore overrides the filesystem artifact store.
	ArtifactStore core.ArtifactStore

	// ConversationStore overrides the configured persistence driver.
	ConversationStore core.ConversationStore

	// Logger (defaults to a structured logger per the config)
	Logger logging.Logger
}

// AutoPaper is the high-level facade aggregating registry, executor,
// reasoner and stores.
type AutoPaper struct {
	cfg       *config.Config
	registry  *tool.Registry
	executor  *tool.Executor
	reasoner  reasoner.Reasoner
	convStore core.ConversationStore
	logger    logging.Logger
	dashboard *dashboard.Tool
	sqlite    *sqlitesession.Store
}

// New assembles an AutoPaper from configuration with optional overrides.
func New(cfg *config.Config, optFns ...func(o *Options)) (*AutoPaper, error) {
	opts := Options{
		Instructions: ResearcherInstructions,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(&logging.Config{
			Level:  parseLevel(cfg.Logging.Level),
			Format: cfg.Logging.Format,
		})
	}

	artifacts := opts.ArtifactStore
	if artifacts == nil {
		store, err := artifactfs.NewStore(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		artifacts = store
	}

	ap := &AutoPaper{cfg: cfg, logger: logger}

	convStore := opts.ConversationStore
	if convStore == nil {
		switch cfg.Store.Driver {
		case "sqlite":
			store, err := sqlitesession.Open(cfg.Store.Path)
			if err != nil {
				return nil, fmt.Errorf("session store: %w", err)
			}
			ap.sqlite = store
			convStore = store
		default:
			convStore = session.NewInMemoryStore()
		}
	}
	ap.convStore = convStore

	ap.dashboard = dashboard.NewTool(func(o *dashboard.Options) {
		o.Host = cfg.Dashboard.Host
		o.Port = cfg.Dashboard.Port
		o.Logger = logger
	})

	registry, err := buildRegistry(cfg, ap.dashboard)
	if err != nil {
		return nil, err
	}
	ap.registry = registry

	ap.executor = tool.NewExecutor(registry, func(o *tool.ExecutorOptions) {
		o.MaxConcurrency = cfg.Tools.Concurrency
		o.ArtifactStore = artifacts
		o.Logger = logger
	})

	r := opts.Reasoner
	if r == nil {
		r, err = buildReasoner(cfg, opts.Instructions, registry.Specs())
		if err != nil {
			return nil, err
		}
	}
	ap.reasoner = reasoner.WithRetry(r, func(o *reasoner.RetryOptions) {
		o.MaxAttempts = cfg.Reasoner.MaxAttempts
		o.InitialBackoff = cfg.Reasoner.InitialBackoff
	})

	return ap, nil
}

// NewSession opens a fresh research session. An empty id generates one.
func (ap *AutoPaper) NewSession(id string) *loop.Session {
	return loop.NewSession(id, ap.reasoner, ap.executor, func(o *loop.Options) {
		o.MaxIterations = ap.cfg.Session.MaxIterations
		o.Store = ap.convStore
		o.Logger = ap.logger
	})
}

// ResumeSession rebuilds a session from the conversation store.
func (ap *AutoPaper) ResumeSession(id string) (*loop.Session, error) {
	turns, err := ap.convStore.Turns(id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return loop.RestoreSession(id, turns, ap.reasoner, ap.executor, func(o *loop.Options) {
		o.MaxIterations = ap.cfg.Session.MaxIterations
		o.Store = ap.convStore
		o.Logger = ap.logger
	})
}

// Specs returns the registered tool surface.
func (ap *AutoPaper) Specs() []core.ToolSpec { return ap.registry.Specs() }

// Close releases dashboard servers and the persistence layer.
func (ap *AutoPaper) Close() error {
	var firstErr error
	if err := ap.dashboard.Close(); err != nil {
		firstErr = err
	}
	if ap.sqlite != nil {
		if err := ap.sqlite.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildRegistry(cfg *config.Config, dash *dashboard.Tool) (*tool.Registry, error) {
	searchTool := arxiv.NewSearchTool(func(o *arxiv.Options) {
		if cfg.Tools.ArxivBaseURL != "" {
			o.BaseURL = cfg.Tools.ArxivBaseURL
		}
	})
	renderTool := latex.NewRenderTool(func(o *latex.Options) {
		o.OutputDir = cfg.OutputDir
		o.Command = cfg.Tools.LatexCommand
	})

	retry := tool.RetryPolicy{
		MaxAttempts:    cfg.Tools.RetryAttempts,
		InitialBackoff: cfg.Tools.InitialBackoff,
	}
	def := func(t tool.Tool) tool.Definition {
		return tool.Definition{Tool: t, Timeout: cfg.Tools.Timeout, Retry: retry}
	}

	return tool.NewRegistry(
		def(searchTool),
		def(paper.NewReadTool()),
		// Rendering a full paper can exceed the default tool timeout.
		tool.Definition{Tool: renderTool, Timeout: 5 * time.Minute, Retry: retry},
		def(latex.NewFigureTool()),
		def(latex.NewTableTool()),
		def(plot.NewTool()),
		def(dash),
		def(image.NewDownloadTool()),
	)
}

func buildReasoner(cfg *config.Config, instructions string, specs []core.ToolSpec) (reasoner.Reasoner, error) {
	switch cfg.Reasoner.Provider {
	case "openai":
		return openaireasoner.New(func(o *openaireasoner.Options) {
			if cfg.Reasoner.Model != "" {
				o.Model = cfg.Reasoner.Model
			}
			o.Temperature = cfg.Reasoner.Temperature
			o.MaxCompletionTokens = cfg.Reasoner.MaxTokens
			o.Instructions = instructions
			o.Tools = specs
		}), nil
	case "anthropic":
		return anthropicreasoner.New(func(o *anthropicreasoner.Options) {
			if cfg.Reasoner.Model != "" {
				o.Model = anthropic.Model(cfg.Reasoner.Model)
			}
			o.Temperature = cfg.Reasoner.Temperature
			o.MaxTokens = cfg.Reasoner.MaxTokens
			o.Instructions = instructions
			o.Tools = specs
		}), nil
	default:
		return nil, fmt.Errorf("unknown reasoner provider %q", cfg.Reasoner.Provider)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
