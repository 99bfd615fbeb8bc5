package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileName = "bankctl_token"

// Store persists the opaque bearer credential between invocations.
// A missing credential is the empty string, never an error.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type fileStore struct {
	path string
}

// NewFileStore returns a Store backed by a single file under the user config
// dir (or the given path when non-empty). The token survives process restarts
// on the same user profile and carries no client-side TTL.
func NewFileStore(path string) (Store, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		path = filepath.Join(configDir, "bankctl", tokenFileName)
	}

	return &fileStore{path: path}, nil
}

func (s *fileStore) Get(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *fileStore) Set(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *fileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

type memoryStore struct {
	token string
}

// NewMemoryStore returns a volatile Store for tests.
func NewMemoryStore(token string) Store {
	return &memoryStore{token: token}
}

func (s *memoryStore) Get(_ context.Context) (string, error) {
	return s.token, nil
}

func (s *memoryStore) Set(_ context.Context, token string) error {
	s.token = token
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.token = ""
	return nil
}
