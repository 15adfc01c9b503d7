// Package config loads fluxgraphd's configuration from a YAML file with
// environment-variable overrides, following the teacher's own
// examples/multi-llm-review convention of a YAML base plus ${VAR}
// expansion, extended here with a .env loader for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v2"
)

// Config is the full configuration for the fluxgraphd binary: which
// backend to open, where to listen when acting as a storehttp server,
// scheduler tuning, and logging.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Emitter   EmitterConfig   `yaml:"emitter"`
}

// BackendConfig selects and parameterizes one of store/storebadger,
// store/storesql, store/storepostgres, or store/storehttp.
type BackendConfig struct {
	// Kind is one of "badger", "sqlite", "postgres", "http".
	Kind string `yaml:"kind"`

	// Path is the BadgerDB directory or SQLite file path, depending on Kind.
	Path string `yaml:"path"`

	// DSN is the Postgres connection string, used when Kind is "postgres".
	DSN string `yaml:"dsn"`

	// RemoteURL is the storehttp base URL, used when Kind is "http".
	RemoteURL string `yaml:"remote_url"`
}

// ServerConfig configures the storehttp/httpserver listener fluxgraphd's
// "serve" subcommand starts.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// SchedulerConfig mirrors scheduler.Options so it can be set from YAML
// or environment rather than hardcoded at the call site.
type SchedulerConfig struct {
	JoinPreviousTick bool `yaml:"join_previous_tick"`
}

// LoggingConfig controls telemetry's zerolog level.
type LoggingConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `yaml:"level"`
}

// EmitterConfig selects which emit.Emitter the scheduler reports tick and
// node events to.
type EmitterConfig struct {
	// Kind is one of "log", "otel", "prometheus", "null".
	Kind string `yaml:"kind"`
}

// Default returns the configuration fluxgraphd starts from when no
// config file is given: an embedded BadgerDB store rooted at ./data,
// no remote listener, overlapping ticks, and info-level logging.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind: "badger",
			Path: "./data",
		},
		Server: ServerConfig{
			ListenAddress: "127.0.0.1:8080",
		},
		Scheduler: SchedulerConfig{
			JoinPreviousTick: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Emitter: EmitterConfig{
			Kind: "log",
		},
	}
}

// Load reads envFile (if non-empty) into the process environment, then
// reads path as YAML into a Config seeded with Default()'s values, then
// applies environment-variable overrides on top. envFile is ignored if
// the file does not exist, matching godotenv's typical optional-.env
// usage in local development.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// expandEnv expands ${VAR} references in raw YAML bytes before parsing,
// the same trick the teacher's loadConfig uses for provider API keys.
func expandEnv(raw []byte) []byte {
	return []byte(os.Expand(string(raw), func(name string) string {
		return os.Getenv(name)
	}))
}

// applyEnvOverrides lets FLUXGRAPH_-prefixed environment variables win
// over both defaults and the YAML file, the same override order the
// pack's other config loaders (pkg/config.LoadFromEnv) apply.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLUXGRAPH_BACKEND_KIND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := os.Getenv("FLUXGRAPH_BACKEND_PATH"); v != "" {
		cfg.Backend.Path = v
	}
	if v := os.Getenv("FLUXGRAPH_BACKEND_DSN"); v != "" {
		cfg.Backend.DSN = v
	}
	if v := os.Getenv("FLUXGRAPH_BACKEND_REMOTE_URL"); v != "" {
		cfg.Backend.RemoteURL = v
	}
	if v := os.Getenv("FLUXGRAPH_SERVER_LISTEN_ADDRESS"); v != "" {
		cfg.Server.ListenAddress = v
	}
	if v := os.Getenv("FLUXGRAPH_SCHEDULER_JOIN_PREVIOUS_TICK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scheduler.JoinPreviousTick = b
		}
	}
	if v := os.Getenv("FLUXGRAPH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FLUXGRAPH_EMITTER_KIND"); v != "" {
		cfg.Emitter.Kind = v
	}
}

// Validate checks that Config names a supported backend kind and has
// the fields that kind requires.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend.Kind) {
	case "badger", "sqlite":
		if c.Backend.Path == "" {
			return fmt.Errorf("backend %q requires backend.path", c.Backend.Kind)
		}
	case "postgres":
		if c.Backend.DSN == "" {
			return fmt.Errorf("backend \"postgres\" requires backend.dsn")
		}
	case "http":
		if c.Backend.RemoteURL == "" {
			return fmt.Errorf("backend \"http\" requires backend.remote_url")
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}

	switch strings.ToLower(c.Emitter.Kind) {
	case "log", "otel", "prometheus", "null":
	default:
		return fmt.Errorf("unknown emitter kind %q", c.Emitter.Kind)
	}
	return nil
}

// RequestTimeout is the per-HTTP-request timeout cmd/fluxgraphd gives
// storehttp's client; Config has no field to change it. Kept here so cmd/fluxgraphd
// has one place to read it from instead of a bare literal at the call site.
const RequestTimeout = 30 * time.Second
