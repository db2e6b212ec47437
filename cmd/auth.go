// Package cmd (auth.go) defines the authentication command group: the
// two-step PKCE login, logout, and status.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/config"
	"github.com/powerhouse-inc/auth-editor/internal/session"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with the Renown identity service",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start the browser login flow",
	Long: `Starts the PKCE authorization-code flow. Prints a URL to open in a
browser; after authorizing, run 'auth complete <code>' with the code from
the redirect.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth login': %w", err)
		}
		address, _ := cmd.Flags().GetString("address")
		return authLoginLogic(a, address)
	},
}

var authCompleteCmd = &cobra.Command{
	Use:   "complete <code>",
	Short: "Finish a pending login with the authorization code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth complete': %w", err)
		}
		return authCompleteLogic(a, args[0])
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth logout': %w", err)
		}
		if err := a.Logout(); err != nil {
			return err
		}
		ui.Success("You have been logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authentication state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth status': %w", err)
		}
		return authStatusLogic(a)
	},
}

func authLoginLogic(a *app.App, address string) error {
	authURL, verifier, err := switchboard.StartLogin(config.ClientID)
	if err != nil {
		return fmt.Errorf("starting login: %w", err)
	}

	if err := a.Session.Save(&session.PendingLogin{Verifier: verifier, AuthURL: authURL}); err != nil {
		return fmt.Errorf("saving pending login: %w", err)
	}

	if address != "" {
		a.Config.UserAddress = address
		if err := a.Config.Save(); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
	}

	fmt.Println("Open this URL in your browser to authorize:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()
	fmt.Println("Then run: auth-editor auth complete <code>")
	return nil
}

func authCompleteLogic(a *app.App, code string) error {
	pending, err := a.Session.Load()
	if err != nil {
		return fmt.Errorf("loading pending login: %w", err)
	}
	if pending == nil {
		return fmt.Errorf("no pending login, run 'auth login' first")
	}

	token, err := switchboard.CompleteLogin(context.Background(), config.ClientID, code, pending.Verifier)
	if err != nil {
		// The pending login is spent either way.
		_ = a.Session.Delete()
		return fmt.Errorf("completing login: %w", err)
	}

	if err := a.Config.UpdateToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := a.Session.Delete(); err != nil {
		a.Logger.Warn("could not delete pending login", "error", err)
	}

	ui.Success("Login successful.")
	return nil
}

func authStatusLogic(a *app.App) error {
	if a.Config.Token.AccessToken != "" {
		fmt.Println("Logged in.")
	} else {
		fmt.Println("Not logged in.")
	}

	pending, err := a.Session.Load()
	if err == nil && pending != nil {
		fmt.Println("A login is pending; run 'auth complete <code>' to finish it.")
	}

	if a.Config.SwitchboardURL != "" {
		fmt.Printf("Switchboard: %s\n", a.Config.SwitchboardURL)
	}
	if a.Config.UserAddress != "" {
		fmt.Printf("Address:     %s\n", a.Config.UserAddress)
	}
	return nil
}

func init() {
	authLoginCmd.Flags().String("address", "", "User address to resolve the global role for")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authCompleteCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
