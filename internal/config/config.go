// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package config loads service configuration from three layers: struct
// defaults, an optional YAML file, and REELRANK_-prefixed environment
// variables, each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrank/config.yaml",
	"/etc/reelrank/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "REELRANK_CONFIG_PATH"

// Config is the root service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Data    DataConfig    `koanf:"data"`
	Engine  EngineConfig  `koanf:"engine"`
	Agent   AgentConfig   `koanf:"agent"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is requests per second per client; RateBurst is the burst
	// allowance. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// DataConfig holds dataset file locations and seeding behavior.
type DataConfig struct {
	CatalogPath      string `koanf:"catalog_path"`
	InteractionsPath string `koanf:"interactions_path"`

	// SeedIfMissing generates a synthetic dataset when the files are absent.
	SeedIfMissing bool `koanf:"seed_if_missing"`
}

// EngineConfig holds recommendation engine tuning.
type EngineConfig struct {
	WeightContent   float64 `koanf:"weight_content"`
	WeightCollab    float64 `koanf:"weight_collab"`
	ContentRank     int     `koanf:"content_rank"`
	CollabRank      int     `koanf:"collab_rank"`
	LikedThreshold  float64 `koanf:"liked_threshold"`
	EvalSampleUsers int     `koanf:"eval_sample_users"`
	DefaultK        int     `koanf:"default_k"`
	Seed            int64   `koanf:"seed"`
}

// AgentConfig holds conversational agent settings.
type AgentConfig struct {
	// OllamaURL points at an Ollama-compatible API. Empty disables LLM
	// routing; the keyword router is used exclusively.
	OllamaURL string        `koanf:"ollama_url"`
	Model     string        `koanf:"model"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the full default configuration. Defaults are loaded
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       25,
			RateBurst:       50,
		},
		Data: DataConfig{
			CatalogPath:      "data/movies.csv",
			InteractionsPath: "data/ratings.csv",
			SeedIfMissing:    true,
		},
		Engine: EngineConfig{
			WeightContent:   0.5,
			WeightCollab:    0.5,
			ContentRank:     20,
			CollabRank:      10,
			LikedThreshold:  4.0,
			EvalSampleUsers: 50,
			DefaultK:        10,
			Seed:            42,
		},
		Agent: AgentConfig{
			OllamaURL: "",
			Model:     "llama3.1",
			Timeout:   30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("REELRANK_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first readable config file path, or "".
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps REELRANK_-stripped environment variable names to koanf
// paths. An explicit table avoids ambiguity between section separators and
// underscores inside key names (WEIGHT_CONTENT is one key, not a section).
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_rate_limit":       "server.rate_limit",
	"server_rate_burst":       "server.rate_burst",

	"data_catalog_path":      "data.catalog_path",
	"data_interactions_path": "data.interactions_path",
	"data_seed_if_missing":   "data.seed_if_missing",

	"engine_weight_content":    "engine.weight_content",
	"engine_weight_collab":     "engine.weight_collab",
	"engine_content_rank":      "engine.content_rank",
	"engine_collab_rank":       "engine.collab_rank",
	"engine_liked_threshold":   "engine.liked_threshold",
	"engine_eval_sample_users": "engine.eval_sample_users",
	"engine_default_k":         "engine.default_k",
	"engine_seed":              "engine.seed",

	"agent_ollama_url": "agent.ollama_url",
	"agent_model":      "agent.model",
	"agent_timeout":    "agent.timeout",

	"logging_level":  "logging.level",
	"logging_format": "logging.format",
	"logging_caller": "logging.caller",
}

// envTransform maps REELRANK_ENGINE_WEIGHT_CONTENT to engine.weight_content
// and so on. Unknown variables are dropped.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "REELRANK_"))
	return envMappings[key]
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Data.CatalogPath == "" {
		return fmt.Errorf("data.catalog_path must not be empty")
	}
	if c.Data.InteractionsPath == "" {
		return fmt.Errorf("data.interactions_path must not be empty")
	}
	if c.Engine.WeightContent < 0 || c.Engine.WeightCollab < 0 {
		return fmt.Errorf("engine weights must be non-negative")
	}
	if c.Engine.ContentRank < 1 || c.Engine.CollabRank < 1 {
		return fmt.Errorf("engine ranks must be at least 1")
	}
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("agent.timeout must be positive")
	}
	return nil
}
