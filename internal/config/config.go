// Package config persists the application's settings: the switchboard
// endpoint, the OAuth token, and the debug flag.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

const configDir = ".auth-editor"
const configFile = "config.json"

// ClientID is the OAuth client registered with the Renown identity
// service for this application.
const ClientID = "auth-editor-cli"

// Configuration holds all persisted settings. The token is written back
// whenever the oauth2 layer refreshes it.
type Configuration struct {
	SwitchboardURL string            `json:"switchboardUrl"`
	UserAddress    string            `json:"userAddress"`
	Token          switchboard.Token `json:"token"`
	Debug          bool              `json:"debug"`
	mu             sync.RWMutex
}

// Save persists the configuration to a JSON file in the user's home
// directory.
func (c *Configuration) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config to JSON: %v", err)
	}

	configDirPath, err := GetConfigDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configDirPath); os.IsNotExist(err) {
		if err := os.Mkdir(configDirPath, 0700); err != nil {
			return fmt.Errorf("creating config directory: %v", err)
		}
	}

	configFilePath := filepath.Join(configDirPath, configFile)
	if err := os.WriteFile(configFilePath, jsonData, 0600); err != nil {
		return fmt.Errorf("writing configuration file: %v", err)
	}

	return nil
}

// UpdateToken replaces the stored token and saves. Used as the SDK's
// refresh callback.
func (c *Configuration) UpdateToken(token *switchboard.Token) error {
	c.mu.Lock()
	c.Token = *token
	c.mu.Unlock()
	return c.Save()
}

// ClearToken drops the stored credential and saves.
func (c *Configuration) ClearToken() error {
	c.mu.Lock()
	c.Token = switchboard.Token{}
	c.mu.Unlock()
	return c.Save()
}

// GetConfigDir returns the directory holding the config file and session
// state. AUTH_EDITOR_CONFIG_DIR overrides the default for tests.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("AUTH_EDITOR_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %v", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

// Load reads the configuration file from disk.
func Load() (*Configuration, error) {
	config := &Configuration{}
	configDirPath, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDirPath, configFile)
	fileHandle, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(fileHandle, config)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling json: %v", err)
	}

	return config, nil
}

// LoadOrCreate attempts to load the configuration file. A missing file
// yields a new, empty configuration.
func LoadOrCreate() (*Configuration, error) {
	config, err := Load()
	if err != nil {
		if os.IsNotExist(err) {
			return &Configuration{}, nil
		}
		return nil, err
	}
	return config, nil
}

// ValidateEndpoint checks that raw parses as an absolute http or https
// URL with a host.
func ValidateEndpoint(raw string) error {
	if raw == "" {
		return fmt.Errorf("endpoint is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing endpoint: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint has no host")
	}
	return nil
}
