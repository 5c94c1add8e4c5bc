package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/isdelr/leadgate-be/internal/models"
)

// ErrNotLoggedIn is returned when no session has been saved.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the locally persisted login state.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// TokenStore keeps the session in a JSON file readable only by the owner.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultStatePath returns <user config dir>/lead-extractor/session.json.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lead-extractor", "session.json"), nil
}

// Load reads the saved session.
func (s *TokenStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	if session.Token == "" {
		return Session{}, ErrNotLoggedIn
	}
	return session, nil
}

// Save replaces the saved session.
func (s *TokenStore) Save(session Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the saved session. Clearing an empty store is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
