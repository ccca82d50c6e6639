package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	gemini, ok := cfg.GetLLMProvider("gemini")
	if !ok {
		t.Fatal("expected default gemini provider")
	}
	if gemini.APIKey != "${GEMINI_API_KEY}" || !gemini.Enabled {
		t.Errorf("gemini = %+v", gemini)
	}
	if cfg.Defaults.LLMProvider != "gemini" {
		t.Errorf("expected gemini as default provider, got %s", cfg.Defaults.LLMProvider)
	}
	if cfg.ExtractionMode() != extract.Permissive {
		t.Error("expected permissive extraction by default")
	}
	if len(cfg.EnabledLLMProviders()) != 1 {
		t.Errorf("expected only gemini enabled, got %v", cfg.EnabledLLMProviders())
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "gm-key-123")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"gemini": {Type: "gemini", APIKey: "${TEST_GEMINI_KEY}", RateLimit: 15, Enabled: true},
			"local":  {Type: "openai", APIKey: "direct-key", BaseURL: "http://localhost:11434/v1/"},
		},
	}

	rc := cfg.ToProviderRegistryConfig()
	if rc.LLMProviders["gemini"].APIKey != "gm-key-123" || rc.LLMProviders["gemini"].RateLimit != 15 {
		t.Errorf("gemini = %+v", rc.LLMProviders["gemini"])
	}
	if rc.LLMProviders["local"].APIKey != "direct-key" || rc.LLMProviders["local"].BaseURL != "http://localhost:11434/v1/" {
		t.Errorf("local = %+v", rc.LLMProviders["local"])
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := &Config{
		Defaults: DefaultsCfg{StrictExtraction: true, RequestTimeoutSeconds: 30},
		LogLevel: "DEBUG",
	}
	if cfg.ExtractionMode() != extract.Strict {
		t.Error("expected strict mode")
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
	if cfg.SessionIdle() != 0 {
		t.Errorf("SessionIdle() = %v", cfg.SessionIdle())
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", cfg.Level())
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
defaults:
  strict_extraction: true
  history_limit: 5
llm_providers:
  gemini:
    model: gemini-2.5-pro
`)

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if !cfg.Defaults.StrictExtraction || cfg.Defaults.HistoryLimit != 5 {
			t.Errorf("defaults = %+v", cfg.Defaults)
		}
		if cfg.Defaults.RepairAttempts != 1 {
			t.Errorf("expected default repair attempts, got %d", cfg.Defaults.RepairAttempts)
		}
		gemini := cfg.LLMProviders["gemini"]
		if gemini.Model != "gemini-2.5-pro" || gemini.APIKey != "${GEMINI_API_KEY}" || !gemini.Enabled {
			t.Errorf("gemini = %+v, want model override merged with defaults", gemini)
		}
		if mgr.ConfigFile() != configFile {
			t.Errorf("ConfigFile() = %s", mgr.ConfigFile())
		}
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		mgr, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().Server.Port != "8080" {
			t.Errorf("port = %s", mgr.Get().Server.Port)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("HELIOS_SERVER_PORT", "9191")
		t.Setenv("HELIOS_DEFAULTS_REPAIR_ATTEMPTS", "3")

		mgr, err := NewManager(writeConfig(t, "log_level: warn\n"))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Server.Port != "9191" || cfg.Defaults.RepairAttempts != 3 || cfg.LogLevel != "warn" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := NewManager(writeConfig(t, "defaults: [unclosed")); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Register multiple callbacks
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Call Get concurrently to verify no race conditions
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Defaults.LLMProvider
			}
			done <- struct{}{}
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, `
defaults:
  history_limit: 10
`)

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	if got := mgr.Get().Defaults.HistoryLimit; got != 10 {
		t.Errorf("initial value mismatch: expected 10, got %d", got)
	}

	// Track callback invocations
	var callbackCount atomic.Int32
	var lastValue atomic.Int64

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(int64(cfg.Defaults.HistoryLimit))
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	newContent := `
defaults:
  history_limit: 25
`
	if err := os.WriteFile(configFile, []byte(newContent), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if lastValue.Load() == 25 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Error("callback was not invoked after config file change")
	}
	if got := mgr.Get().Defaults.HistoryLimit; got != 25 {
		t.Errorf("config not updated: expected 25, got %d", got)
	}
	if v := lastValue.Load(); v != 25 {
		t.Errorf("callback received wrong value: expected 25, got %v", v)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	cfg := mgr.Get()
	if cfg.Defaults.LLMProvider != "gemini" || cfg.LLMProviders["openrouter"].Model != "google/gemini-2.5-flash" {
		t.Errorf("round-tripped config = %+v", cfg)
	}
}

func TestEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLMProviders["local"] = LLMProviderCfg{Type: "openai", APIKey: "sk-literal"}
	cfg.Server.Port = "9000"

	t.Run("lookup", func(t *testing.T) {
		e, err := cfg.Lookup("server.port")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if e.Value != "9000" || e.Default != "8080" || e.Description == "" {
			t.Errorf("entry = %+v", e)
		}
	})

	t.Run("api keys are masked", func(t *testing.T) {
		e, err := cfg.Lookup("llm_providers.local.api_key")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if e.Value != redacted {
			t.Errorf("literal key exposed: %v", e.Value)
		}
		e, _ = cfg.Lookup("llm_providers.gemini.api_key")
		if e.Value != "${GEMINI_API_KEY}" {
			t.Errorf("env reference = %v", e.Value)
		}
	})

	t.Run("unknown and invalid keys", func(t *testing.T) {
		if _, err := cfg.Lookup("server.tls"); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("error = %v, want ErrUnknownKey", err)
		}
		if _, err := cfg.Lookup("server port"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("error = %v, want ErrInvalidKey", err)
		}
	})
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"defaults.llm_provider", false},
		{"llm_providers.open-router.model", false},
		{"", true},
		{".leading", true},
		{"trailing.", true},
		{"has space", true},
		{"semi;colon", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
