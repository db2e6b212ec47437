// Package session persists the state of a login that is waiting for the
// user to come back with an authorization code. File locking keeps
// concurrent CLI invocations from corrupting the pending state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const pendingLoginFile = "pending_login.json"

// PendingLoginTTL bounds how long a started login stays resumable.
const PendingLoginTTL = 15 * time.Minute

// PendingLogin is the on-disk state between 'auth login' and
// 'auth complete'. The verifier must survive the round trip through the
// user's browser.
type PendingLogin struct {
	Verifier  string    `json:"verifier"`
	AuthURL   string    `json:"authUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Manager handles pending-login file operations in a configurable
// directory.
type Manager struct {
	configDir string
}

// NewManager creates a session manager rooted at configDir.
func NewManager(configDir string) *Manager {
	return &Manager{configDir: configDir}
}

func (m *Manager) sessionDir() string {
	return filepath.Join(m.configDir, "sessions")
}

func (m *Manager) pendingLoginPath() string {
	return filepath.Join(m.sessionDir(), pendingLoginFile)
}

// withLock runs fn while holding the pending-login file lock.
func (m *Manager) withLock(fn func(filePath string) error) error {
	if err := os.MkdirAll(m.sessionDir(), 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	filePath := m.pendingLoginPath()
	lock := flock.New(filePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring session file lock: %w", err)
	}
	if !locked {
		return errors.New("session file is locked, another instance may be running")
	}
	defer lock.Unlock()

	return fn(filePath)
}

// Save persists a pending login, stamping it with the current time.
func (m *Manager) Save(pending *PendingLogin) error {
	return m.withLock(func(filePath string) error {
		if pending.CreatedAt.IsZero() {
			pending.CreatedAt = time.Now()
		}
		data, err := json.MarshalIndent(pending, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling pending login: %w", err)
		}
		return os.WriteFile(filePath, data, 0600)
	})
}

// Load retrieves the pending login. It returns (nil, nil) when no login
// is pending; an expired pending login is cleaned up and treated as
// absent.
func (m *Manager) Load() (*PendingLogin, error) {
	var pending *PendingLogin
	err := m.withLock(func(filePath string) error {
		data, err := os.ReadFile(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("reading pending login: %w", err)
		}

		var state PendingLogin
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("unmarshalling pending login: %w", err)
		}

		if time.Since(state.CreatedAt) > PendingLoginTTL {
			_ = os.Remove(filePath)
			return nil
		}

		pending = &state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Delete removes the pending login. Deleting an absent pending login is
// not an error.
func (m *Manager) Delete() error {
	return m.withLock(func(filePath string) error {
		err := os.Remove(filePath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting pending login: %w", err)
		}
		return nil
	})
}
