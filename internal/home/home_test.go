package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-helios")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-helios" {
			t.Errorf("expected path /tmp/test-helios, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-helios")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ConfigPath", dir.ConfigPath(), "/tmp/test-helios/config.yaml"},
		{"UsersPath", dir.UsersPath(), "/tmp/test-helios/users.json"},
		{"ReportsDir", dir.ReportsDir(), "/tmp/test-helios/reports"},
		{"ReportPath", dir.ReportPath(), "/tmp/test-helios/reports/medical_report.json"},
		{"PromptsDir", dir.PromptsDir(), "/tmp/test-helios/prompts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestDir_Resolve(t *testing.T) {
	dir, _ := New("/tmp/test-helios")

	if got := dir.Resolve("", "/fallback"); got != "/fallback" {
		t.Errorf("empty: got %s", got)
	}
	if got := dir.Resolve("/abs/users.json", ""); got != "/abs/users.json" {
		t.Errorf("absolute: got %s", got)
	}
	if got := dir.Resolve("data/users.json", ""); got != "/tmp/test-helios/data/users.json" {
		t.Errorf("relative: got %s", got)
	}
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(filepath.Join(tmpDir, "helios-home"))

	if dir.Exists() {
		t.Error("expected directory to not exist initially")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("expected directory to exist after EnsureExists")
	}
	for _, sub := range []string{dir.ReportsDir(), dir.PromptsDir()} {
		if _, err := os.Stat(sub); err != nil {
			t.Errorf("expected %s to exist: %v", sub, err)
		}
	}

	if dir.ConfigExists() {
		t.Error("config should not exist yet")
	}
}
