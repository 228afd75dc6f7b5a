// Package config loads application configuration from a config file and
// environment variables. API keys are read from the environment only and
// never written to config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Reasoner  ReasonerConfig  `mapstructure:"reasoner"`
	Session   SessionConfig   `mapstructure:"session"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	OutputDir string          `mapstructure:"output_dir"`
	Store     StoreConfig     `mapstructure:"store"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// ReasonerConfig selects and tunes the model provider.
type ReasonerConfig struct {
	Provider       string        `mapstructure:"provider"` // "openai" or "anthropic"
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int64         `mapstructure:"max_tokens"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// SessionConfig tunes the control loop.
type SessionConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// ToolsConfig tunes tool execution.
type ToolsConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	ArxivBaseURL   string        `mapstructure:"arxiv_base_url"`
	LatexCommand   string        `mapstructure:"latex_command"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // "json" or "text"
}

// StoreConfig selects conversation persistence.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "sqlite"
	Path   string `mapstructure:"path"`   // sqlite database file
}

// DashboardConfig controls the dashboard servers.
type DashboardConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load reads configuration from the given file (optional) plus AUTOPAPER_*
// environment variables, applying defaults for everything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("autopaper")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AUTOPAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("reasoner.provider", "openai")
	v.SetDefault("reasoner.model", "")
	v.SetDefault("reasoner.temperature", 0.7)
	v.SetDefault("reasoner.max_tokens", 4096)
	v.SetDefault("reasoner.max_attempts", 3)
	v.SetDefault("reasoner.initial_backoff", "500ms")

	v.SetDefault("session.max_iterations", 10)

	v.SetDefault("tools.concurrency", 4)
	v.SetDefault("tools.timeout", "60s")
	v.SetDefault("tools.retry_attempts", 2)
	v.SetDefault("tools.initial_backoff", "250ms")
	v.SetDefault("tools.arxiv_base_url", "")
	v.SetDefault("tools.latex_command", "pdflatex")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output_dir", "output")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "output/sessions.db")

	v.SetDefault("dashboard.host", "127.0.0.1")
	v.SetDefault("dashboard.port", 8050)

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicitly named one
		// must exist.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Reasoner.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown reasoner provider %q", c.Reasoner.Provider)
	}
	if c.Session.MaxIterations < 1 {
		return fmt.Errorf("session.max_iterations must be at least 1")
	}
	if c.Tools.Concurrency < 1 {
		return fmt.Errorf("tools.concurrency must be at least 1")
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
