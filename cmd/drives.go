// Package cmd (drives.go) defines the commands for listing drives and
// printing the reconstructed resource tree.
package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Inspect drives and the resource tree",
}

var drivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all drives on the switchboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'drives list': %w", err)
		}
		return drivesListLogic(a)
	},
}

var drivesTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the full drive/folder/file hierarchy",
	Long: `Fetches every drive's node list concurrently and prints the
reconstructed hierarchy. A drive whose detail fetch fails is shown empty
rather than hiding the rest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'drives tree': %w", err)
		}
		return drivesTreeLogic(a)
	},
}

func drivesListLogic(a *app.App) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	drives, err := a.SDK.ListDrives(context.Background())
	if err != nil {
		return fmt.Errorf("listing drives: %w", err)
	}
	ui.DisplayDrives(drives)
	return nil
}

func drivesTreeLogic(a *app.App) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}

	// The drive list is fetched once, inside FetchTree; the initial
	// progress call carries the total and sizes the bar before any
	// completion arrives.
	var bar *progressbar.ProgressBar
	tree, err := a.SDK.FetchTree(context.Background(), func(completed, total int) {
		if completed == 0 {
			if total > 0 {
				bar = ui.NewDriveFetchProgressBar(total)
			}
			return
		}
		_ = bar.Add(1)
	})
	if err != nil {
		return fmt.Errorf("fetching tree: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if len(tree) == 0 {
		fmt.Println("No drives found.")
		return nil
	}

	ui.DisplayTree(tree)
	return nil
}

func init() {
	drivesCmd.AddCommand(drivesListCmd)
	drivesCmd.AddCommand(drivesTreeCmd)
	rootCmd.AddCommand(drivesCmd)
}
