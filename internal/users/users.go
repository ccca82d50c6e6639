// Package users is the login store: a flat JSON file mapping usernames to
// passwords. Passwords are stored as entered.
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 4

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrUserExists         = errors.New("username already exists")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Store is a username to password file. Methods are safe for concurrent use.
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	users map[string]string
}

// Open loads the store at path. A missing or unreadable file is treated as
// an empty store and is created on the first sign-up.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	s.users = s.load()
	return s
}

func (s *Store) load() map[string]string {
	users := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read users file, starting empty", "path", s.path, "error", err)
		}
		return users
	}
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("users file is corrupt, starting empty", "path", s.path, "error", err)
		return make(map[string]string)
	}
	return users
}

// SignUp registers a new user and saves the file.
func (s *Store) SignUp(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrUserExists
	}
	s.users[username] = password
	if err := s.save(); err != nil {
		delete(s.users, username)
		return err
	}
	return nil
}

// Authenticate checks a username and password.
func (s *Store) Authenticate(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[username]
	if !ok || stored != password {
		return ErrInvalidCredentials
	}
	return nil
}

// Exists reports whether username is registered.
func (s *Store) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// Usernames returns the registered usernames, sorted.
func (s *Store) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// save writes the file atomically. Callers hold mu.
func (s *Store) save() error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create users directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
