package providers

import "os"

// TestConfig holds provider API keys loaded from environment variables so
// live tests can run when credentials are present.
type TestConfig struct {
	GeminiAPIKey     string
	OpenRouterAPIKey string
}

// LoadTestConfig loads provider API keys from the environment.
func LoadTestConfig() TestConfig {
	return TestConfig{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
	}
}

// HasGemini returns true if a Gemini API key is configured.
func (c TestConfig) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

// HasOpenRouter returns true if an OpenRouter API key is configured.
func (c TestConfig) HasOpenRouter() bool {
	return c.OpenRouterAPIKey != ""
}

// ToRegistryConfig includes only providers that have API keys.
func (c TestConfig) ToRegistryConfig() RegistryConfig {
	cfg := RegistryConfig{LLMProviders: make(map[string]LLMProviderConfig)}
	if c.HasGemini() {
		cfg.LLMProviders[GeminiName] = LLMProviderConfig{
			Type:      GeminiName,
			APIKey:    c.GeminiAPIKey,
			RateLimit: 10,
			Enabled:   true,
		}
	}
	if c.HasOpenRouter() {
		cfg.LLMProviders[OpenRouterName] = LLMProviderConfig{
			Type:    OpenRouterName,
			APIKey:  c.OpenRouterAPIKey,
			Enabled: true,
		}
	}
	return cfg
}
