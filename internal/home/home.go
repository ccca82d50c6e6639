package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the helios home directory.
	DefaultDirName = ".helios"

	// ReportsDirName is the subdirectory for parsed report output.
	ReportsDirName = "reports"

	// PromptsDirName is the subdirectory for prompt overrides.
	PromptsDirName = "prompts"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// UsersFileName is the login store file name.
	UsersFileName = "users.json"

	// ReportFileName is the file the standalone parser writes.
	ReportFileName = "medical_report.json"
)

// Dir represents the helios home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.helios).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// UsersPath returns the path to the login store.
func (d *Dir) UsersPath() string {
	return filepath.Join(d.path, UsersFileName)
}

// ReportsDir returns the directory for parsed report output.
func (d *Dir) ReportsDir() string {
	return filepath.Join(d.path, ReportsDirName)
}

// ReportPath returns the default output path of the standalone parser.
func (d *Dir) ReportPath() string {
	return filepath.Join(d.ReportsDir(), ReportFileName)
}

// PromptsDir returns the directory holding prompt overrides.
func (d *Dir) PromptsDir() string {
	return filepath.Join(d.path, PromptsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.ReportsDir(), d.PromptsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// Resolve returns path unchanged if it is absolute, otherwise joined to the
// home directory. An empty path resolves to fallback.
func (d *Dir) Resolve(path, fallback string) string {
	switch {
	case path == "":
		return fallback
	case filepath.IsAbs(path):
		return path
	}
	return filepath.Join(d.path, path)
}
