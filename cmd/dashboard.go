package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/dashboard"
	"github.com/powerhouse-inc/auth-editor/internal/logger"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive permission editor",
	Long: `Opens a full-screen dashboard: the resource tree on the left, the
selected resource's grants on the right, re-synchronized with the
switchboard every 10 seconds. Grants and revokes are issued from the
dashboard and confirmed by re-fetching the authority's state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'dashboard': %w", err)
		}
		return dashboardLogic(a)
	},
}

func dashboardLogic(a *app.App) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}

	// Stderr logging would corrupt the alt-screen; failures surface in
	// the dashboard's status bar instead.
	if live, ok := a.SDK.(*app.LiveSDK); ok {
		live.Client.SetLogger(logger.NoopLogger{})
	}

	model := dashboard.NewModel(a.SDK, a.Config.UserAddress)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
