package users

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s := Open(filepath.Join(t.TempDir(), "users.json"), nil)
		if len(s.Usernames()) != 0 {
			t.Errorf("Usernames() = %v", s.Usernames())
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		s := Open(path, nil)
		if len(s.Usernames()) != 0 {
			t.Errorf("Usernames() = %v", s.Usernames())
		}
	})

	t.Run("existing users", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		if err := os.WriteFile(path, []byte(`{"alice": "secret"}`), 0o600); err != nil {
			t.Fatal(err)
		}
		s := Open(path, nil)
		if err := s.Authenticate("alice", "secret"); err != nil {
			t.Errorf("Authenticate() error = %v", err)
		}
	})
}

func TestSignUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.json")
	s := Open(path, nil)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"ok", "alice", "pass", nil},
		{"duplicate", "alice", "other", ErrUserExists},
		{"duplicate with spaces", "  alice ", "other", ErrUserExists},
		{"short password", "bob", "abc", ErrPasswordTooShort},
		{"missing username", "", "password", ErrMissingFields},
		{"missing password", "bob", "", ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SignUp(tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("users file not written: %v", err)
	}
	var onDisk map[string]string
	if err := json.Unmarshal(data, &onDisk); err != nil || onDisk["alice"] != "pass" || len(onDisk) != 1 {
		t.Errorf("file = %s", data)
	}

	reopened := Open(path, nil)
	if !reopened.Exists("alice") {
		t.Error("reopened store should contain alice")
	}
}

func TestAuthenticate(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "users.json"), nil)
	if err := s.SignUp("alice", "secret"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, username, password string
		wantErr                  error
	}{
		{"valid", "alice", "secret", nil},
		{"wrong password", "alice", "Secret", ErrInvalidCredentials},
		{"unknown user", "mallory", "secret", ErrInvalidCredentials},
		{"empty", "", "", ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Authenticate(tt.username, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
