package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hszk-dev/aora/internal/domain/model"
)

type storedSession struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// sessionFile persists the session token between runs.
type sessionFile struct {
	path string
}

func newSessionFile(path string) (*sessionFile, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(dir, "aora", "session.json")
	}
	return &sessionFile{path: path}, nil
}

// Load returns nil when no session is stored.
func (f *sessionFile) Load() (*model.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &model.Session{ID: s.ID, AccountID: s.AccountID, Token: s.Token, ExpiresAt: s.ExpiresAt}, nil
}

func (f *sessionFile) Save(sess *model.Session) error {
	data, err := json.Marshal(storedSession{
		ID:        sess.ID,
		AccountID: sess.AccountID,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (f *sessionFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
