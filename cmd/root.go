// Package cmd defines the Cobra commands for the auth-editor CLI. Each
// command splits flag handling (RunE) from testable logic functions that
// operate on an app.App.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auth-editor",
	Short: "Manage access control for a Powerhouse switchboard",
	Long: `auth-editor is a command-line client for managing access control on a
Powerhouse switchboard: the resource tree of drives, folders, and files,
per-resource permission grants for users and groups, per-operation
grants, and the group directory.

Capabilities include:
  - Authentication against the Renown identity service (login, logout, status)
  - Listing drives and printing the full resource tree
  - Viewing and editing per-resource grants (READ, WRITE, ADMIN)
  - Viewing and editing per-operation grants
  - Group management (create, delete, membership)
  - An interactive dashboard that stays in sync with the switchboard`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("url", "", "Switchboard GraphQL endpoint (overrides the configured one)")
}
