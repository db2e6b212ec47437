package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami [address]",
	Short: "Resolve a global role (admin, user, or guest)",
	Long: `Resolves the global role of the given address, or of the configured
user address when none is given. The role is advisory display context;
authorization is enforced by the switchboard on every call.

With --groups the address's group memberships are listed too. With
--grants your own per-resource grant list is shown; this identifies you
by your login credential, not by the address argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'whoami': %w", err)
		}
		address := a.Config.UserAddress
		if len(args) == 1 {
			address = args[0]
		}
		showGroups, _ := cmd.Flags().GetBool("groups")
		showGrants, _ := cmd.Flags().GetBool("grants")
		return whoamiLogic(a, address, showGroups, showGrants)
	},
}

func whoamiLogic(a *app.App, address string, showGroups, showGrants bool) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	if address == "" {
		return fmt.Errorf("no address given and none configured, pass one or run 'auth login --address'")
	}

	ctx := context.Background()
	identity, err := a.SDK.WhoAmI(ctx, address)
	if err != nil {
		return fmt.Errorf("resolving role: %w", err)
	}
	ui.DisplayIdentity(identity)

	if showGroups {
		// Membership is best-effort context: a failed lookup degrades to
		// an empty list rather than hiding the role above.
		groups, err := a.SDK.UserGroups(ctx, address)
		if err != nil {
			a.Logger.Warnf("looking up groups for %s: %v", address, err)
			groups = nil
		}
		ui.DisplayUserGroups(groups)
	}

	if showGrants {
		grants, err := a.SDK.UserDocumentPermissions(ctx)
		if err != nil {
			return fmt.Errorf("fetching your grants: %w", err)
		}
		ui.DisplayUserDocumentPermissions(grants)
	}
	return nil
}

func init() {
	whoamiCmd.Flags().Bool("groups", false, "Also list the address's group memberships")
	whoamiCmd.Flags().Bool("grants", false, "Also list your own per-resource grants (requires login)")
	rootCmd.AddCommand(whoamiCmd)
}
