// Package auth tracks the local session: who is reading, persisted as
// a small file in the state directory so the name survives restarts.
// Logout removes the file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sessionFile = "session"

// Session identifies the logged-in reader.
type Session struct {
	Username string
}

// Store reads and writes the session file.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// User returns the current session. ok is false when nobody is logged in.
func (s *Store) User() (Session, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		return Session{}, false
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return Session{}, false
	}
	return Session{Username: name}, true
}

// Login records the username.
func (s *Store) Login(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username must not be empty")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sessionFile), []byte(username+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Logout clears the session. Logging out twice is fine.
func (s *Store) Logout() error {
	err := os.Remove(filepath.Join(s.dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
