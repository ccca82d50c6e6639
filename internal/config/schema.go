package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
)

// Config holds helios configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	Storage      StorageCfg                `mapstructure:"storage" yaml:"storage"`
	LogLevel     string                    `mapstructure:"log_level" yaml:"log_level"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type"`                     // "gemini", "openai", "openrouter", "mock"
	Model     string `mapstructure:"model" yaml:"model"`                   // Model name
	BaseURL   string `mapstructure:"base_url" yaml:"base_url,omitempty"`   // Override the provider endpoint
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`               // API key (supports ${ENV_VAR} syntax)
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"`         // Requests per minute, 0 = unlimited
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg holds analysis defaults.
type DefaultsCfg struct {
	LLMProvider           string `mapstructure:"llm_provider" yaml:"llm_provider"`
	StrictExtraction      bool   `mapstructure:"strict_extraction" yaml:"strict_extraction"`
	RepairAttempts        int    `mapstructure:"repair_attempts" yaml:"repair_attempts"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	HistoryLimit          int    `mapstructure:"history_limit" yaml:"history_limit"`
	SessionIdleMinutes    int    `mapstructure:"session_idle_minutes" yaml:"session_idle_minutes"`
}

// ServerCfg holds the HTTP listener settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// StorageCfg locates the files helios writes. Relative paths are resolved
// against the home directory; empty paths use the home defaults.
type StorageCfg struct {
	UsersFile  string `mapstructure:"users_file" yaml:"users_file"`
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
	PromptsDir string `mapstructure:"prompts_dir" yaml:"prompts_dir"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"gemini": {
				Type:      "gemini",
				Model:     "gemini-3-flash-preview",
				APIKey:    "${GEMINI_API_KEY}",
				RateLimit: 15,
				Enabled:   true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
			"openrouter": {
				Type:    "openrouter",
				Model:   "google/gemini-2.5-flash",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:           "gemini",
			StrictExtraction:      false,
			RepairAttempts:        1,
			RequestTimeoutSeconds: 120,
			HistoryLimit:          100,
			SessionIdleMinutes:    720,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		LogLevel: "info",
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// ExtractionMode returns the configured extraction strictness.
func (c *Config) ExtractionMode() extract.Mode {
	if c.Defaults.StrictExtraction {
		return extract.Strict
	}
	return extract.Permissive
}

// RequestTimeout returns the per-request timeout for AI calls.
func (c *Config) RequestTimeout() time.Duration {
	if c.Defaults.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Defaults.RequestTimeoutSeconds) * time.Second
}

// SessionIdle returns how long an unused session is kept. Zero keeps
// sessions until logout.
func (c *Config) SessionIdle() time.Duration {
	if c.Defaults.SessionIdleMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Defaults.SessionIdleMinutes) * time.Minute
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
