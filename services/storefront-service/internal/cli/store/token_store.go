package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoToken токен еще не сохранен
var ErrNoToken = errors.New("token not found, run 'storectl login' first")

// TokenInfo сохраненная админ-сессия
type TokenInfo struct {
	Token     string    `json:"token"`
	Server    string    `json:"server"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired сообщает, истек ли токен на момент now
func (t *TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// TokenStore хранит токен администратора в файле с правами 0600
type TokenStore struct {
	path string
}

// NewTokenStore создает хранилище в $STORECTL_HOME/.storectl или ~/.storectl
func NewTokenStore() (*TokenStore, error) {
	home := os.Getenv("STORECTL_HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
	}
	return NewTokenStoreAt(filepath.Join(home, ".storectl"))
}

// NewTokenStoreAt создает хранилище в указанной директории
func NewTokenStoreAt(dir string) (*TokenStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &TokenStore{path: filepath.Join(dir, "token")}, nil
}

// Save сохраняет токен
func (ts *TokenStore) Save(info *TokenInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(ts.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load читает токен
func (ts *TokenStore) Load() (*TokenInfo, error) {
	data, err := os.ReadFile(ts.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var info TokenInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if info.Token == "" {
		return nil, ErrNoToken
	}
	return &info, nil
}

// Clear удаляет сохраненный токен
func (ts *TokenStore) Clear() error {
	if err := os.Remove(ts.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Path путь к файлу токена
func (ts *TokenStore) Path() string {
	return ts.path
}
