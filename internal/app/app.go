// Package app wires configuration, logging, and the switchboard SDK into
// a single context that commands share.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/config"
	"github.com/powerhouse-inc/auth-editor/internal/logger"
	"github.com/powerhouse-inc/auth-editor/internal/session"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

// App carries the shared state every command needs.
type App struct {
	Config  *config.Configuration
	SDK     SDK
	Logger  logger.Logger
	Session *session.Manager
}

// NewApp loads configuration, applies the persistent flags, and builds a
// switchboard client. An unauthenticated client is fine for queries;
// mutations will fail locally until the user logs in.
func NewApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		if err := config.ValidateEndpoint(url); err != nil {
			return nil, fmt.Errorf("invalid --url: %w", err)
		}
		cfg.SwitchboardURL = url
	}

	log := logger.NewDefaultLogger(cfg.Debug)

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  log,
		Session: session.NewManager(configDir),
	}

	var token *switchboard.Token
	if cfg.Token.AccessToken != "" {
		token = &cfg.Token
	}
	client := switchboard.NewClient(context.Background(), cfg.SwitchboardURL, token, cfg.UpdateToken, log)
	app.SDK = &LiveSDK{Client: client}

	return app, nil
}

// RequireEndpoint fails early when no switchboard URL is configured,
// before a command issues its first call.
func (a *App) RequireEndpoint() error {
	if a.Config.SwitchboardURL == "" {
		return errors.New("no switchboard URL configured, pass --url or run 'auth login' with one")
	}
	return nil
}

// Logout clears the stored credential and any pending login.
func (a *App) Logout() error {
	if err := a.Config.ClearToken(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	if err := a.Session.Delete(); err != nil {
		a.Logger.Warn("could not delete pending login", "error", err)
	}
	return nil
}
