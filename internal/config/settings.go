package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrInvalidKey is returned when a config key contains invalid characters.
var ErrInvalidKey = errors.New("invalid config key")

// ErrUnknownKey is returned by Lookup for keys that are not settings.
var ErrUnknownKey = errors.New("unknown config key")

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	// Don't allow keys starting or ending with dots
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}

// Entry is one effective setting.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Default     any    `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

// redacted replaces resolved secrets in Entries.
const redacted = "********"

type setting struct {
	key         string
	description string
	get         func(*Config) any
}

var settings = []setting{
	{"defaults.llm_provider", "LLM provider used for analysis", func(c *Config) any { return c.Defaults.LLMProvider }},
	{"defaults.strict_extraction", "Reject model answers that do not match the schema exactly", func(c *Config) any { return c.Defaults.StrictExtraction }},
	{"defaults.repair_attempts", "Follow-up calls made after an answer fails extraction", func(c *Config) any { return c.Defaults.RepairAttempts }},
	{"defaults.request_timeout_seconds", "Timeout for one AI request", func(c *Config) any { return c.Defaults.RequestTimeoutSeconds }},
	{"defaults.history_limit", "Entries kept per history list", func(c *Config) any { return c.Defaults.HistoryLimit }},
	{"defaults.session_idle_minutes", "Minutes before an unused session is dropped", func(c *Config) any { return c.Defaults.SessionIdleMinutes }},
	{"server.host", "HTTP listen host", func(c *Config) any { return c.Server.Host }},
	{"server.port", "HTTP listen port", func(c *Config) any { return c.Server.Port }},
	{"storage.users_file", "Login store path", func(c *Config) any { return c.Storage.UsersFile }},
	{"storage.output_file", "Output path of the standalone parser", func(c *Config) any { return c.Storage.OutputFile }},
	{"storage.prompts_dir", "Prompt override directory", func(c *Config) any { return c.Storage.PromptsDir }},
	{"log_level", "Log level (debug, info, warn, error)", func(c *Config) any { return c.LogLevel }},
}

// Entries lists the effective settings of c, including one entry per
// provider field. API keys are shown only as their ${VAR} reference; literal
// keys are redacted.
func (c *Config) Entries() []Entry {
	defaults := DefaultConfig()
	entries := make([]Entry, 0, len(settings)+6*len(c.LLMProviders))
	for _, s := range settings {
		entries = append(entries, Entry{
			Key:         s.key,
			Value:       s.get(c),
			Default:     s.get(defaults),
			Description: s.description,
		})
	}

	names := make([]string, 0, len(c.LLMProviders))
	for name := range c.LLMProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := c.LLMProviders[name]
		d := defaults.LLMProviders[name]
		prefix := "llm_providers." + name + "."
		entries = append(entries,
			Entry{Key: prefix + "type", Value: p.Type, Default: d.Type, Description: "Provider type"},
			Entry{Key: prefix + "model", Value: p.Model, Default: d.Model, Description: "Model name"},
			Entry{Key: prefix + "base_url", Value: p.BaseURL, Default: d.BaseURL, Description: "Endpoint override"},
			Entry{Key: prefix + "api_key", Value: maskKey(p.APIKey), Default: d.APIKey, Description: "API key reference"},
			Entry{Key: prefix + "rate_limit", Value: p.RateLimit, Default: d.RateLimit, Description: "Requests per minute"},
			Entry{Key: prefix + "enabled", Value: p.Enabled, Default: d.Enabled, Description: "Whether the provider is enabled"},
		)
	}
	return entries
}

// Lookup returns the entry for key.
func (c *Config) Lookup(key string) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for _, e := range c.Entries() {
		if e.Key == key {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func maskKey(key string) string {
	if key == "" || (strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}")) {
		return key
	}
	return redacted
}
