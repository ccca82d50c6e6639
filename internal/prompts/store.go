package prompts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots, underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

// ErrInvalidKey is returned for keys that cannot name an override file.
var ErrInvalidKey = errors.New("invalid prompt key")

// Store keeps prompt overrides as <key>.tmpl files in a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key string) (string, error) {
	if !validKeyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".tmpl"), nil
}

// Get returns the override for key. ok is false when none exists.
func (s *Store) Get(key string) (text string, ok bool, err error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read override %s: %w", key, err)
	}
	return string(data), true, nil
}

// Put writes an override for key.
func (s *Store) Put(key, text string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompts dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write override %s: %w", key, err)
	}
	return nil
}

// Delete removes the override for key. Deleting a missing override is not an error.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete override %s: %w", key, err)
	}
	return nil
}

// Keys lists keys that have overrides.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmpl") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	sort.Strings(keys)
	return keys, nil
}
