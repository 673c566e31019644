// Package config loads incidentparse configuration from an optional YAML
// file with environment-variable overrides. The resulting Config is built
// once at startup and threaded explicitly into the pipeline; nothing in this
// package caches global state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Env var consulted for the API credential when the config file does not
// carry one. Absence is not an error at load time; it surfaces when the
// first model call is attempted.
const EnvAPIKey = "GROQ_API_KEY"

// Config holds all incidentparse configuration.
type Config struct {
	Name string `yaml:"name"`

	// LLM endpoint configuration
	LLM LLMConfig `yaml:"llm"`

	// HTTP API surface
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the chat-completion endpoint.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ServerConfig configures the HTTP parse API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the category file loggers.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Dir        string          `yaml:"dir"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the baseline configuration: Groq endpoint, the fast
// instant model, near-deterministic sampling, tight token budget.
func Default() *Config {
	return &Config{
		Name: "incidentparse",
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.1-8b-instant",
			Timeout:     "60s",
			MaxTokens:   200,
			Temperature: 0.1,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Dir:       "logs",
			Level:     "info",
		},
	}
}

// Load reads the config file at path, merging it over defaults and then
// applying environment overrides. A missing file is not an error; defaults
// plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies environment-variable overrides. The credential env var
// wins over the file so deployments never need to write secrets to disk.
func (c *Config) applyEnv() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.LLM.APIKey = key
	}
	if url := os.Getenv("GROQ_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if model := os.Getenv("GROQ_MODEL"); model != "" {
		c.LLM.Model = model
	}
}

// TimeoutDuration parses the configured LLM timeout, falling back to 60s on
// an empty or malformed value.
func (l LLMConfig) TimeoutDuration() time.Duration {
	if l.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
