// Package cmd (access.go) defines the per-resource grant commands:
// viewing, granting, and revoking user and group permissions.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "View and edit per-resource grants",
	Long: `Grants attach to exactly one resource node and are never inherited:
a grant on a folder says nothing about the files inside it. Each target
(user or group) holds at most one grant per resource; granting again
replaces the level.`,
}

var accessGetCmd = &cobra.Command{
	Use:   "get <resource-id>",
	Short: "Show all grants on a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'access get': %w", err)
		}
		return accessGetLogic(a, args[0])
	},
}

var accessGrantCmd = &cobra.Command{
	Use:   "grant <resource-id>",
	Short: "Grant a permission level to a user or group",
	Long: `Grants a level (READ, WRITE, or ADMIN) on one resource. Target
exactly one of --user or --group.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'access grant': %w", err)
		}
		target, err := parseTargetFlags(cmd)
		if err != nil {
			return err
		}
		rawLevel, _ := cmd.Flags().GetString("level")
		return accessGrantLogic(a, args[0], target, rawLevel)
	},
}

var accessRevokeCmd = &cobra.Command{
	Use:   "revoke <resource-id>",
	Short: "Revoke a user's or group's grant on a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'access revoke': %w", err)
		}
		target, err := parseTargetFlags(cmd)
		if err != nil {
			return err
		}
		return accessRevokeLogic(a, args[0], target)
	},
}

// grantTarget is a user address xor a group id.
type grantTarget struct {
	userAddress string
	groupID     int
	isGroup     bool
}

// parseTargetFlags enforces the user-xor-group rule shared by the grant
// and revoke commands.
func parseTargetFlags(cmd *cobra.Command) (grantTarget, error) {
	user, _ := cmd.Flags().GetString("user")
	groupSet := cmd.Flags().Changed("group")
	group, _ := cmd.Flags().GetInt("group")

	if user != "" && groupSet {
		return grantTarget{}, fmt.Errorf("--user and --group are mutually exclusive")
	}
	if user == "" && !groupSet {
		return grantTarget{}, fmt.Errorf("one of --user or --group is required")
	}
	if user != "" {
		return grantTarget{userAddress: user}, nil
	}
	return grantTarget{groupID: group, isGroup: true}, nil
}

func accessGetLogic(a *app.App, resourceID string) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	access, err := a.SDK.GetResourceAccess(context.Background(), resourceID)
	if err != nil {
		return fmt.Errorf("fetching grants for %s: %w", resourceID, err)
	}
	ui.DisplayAccess(access)
	return nil
}

func accessGrantLogic(a *app.App, resourceID string, target grantTarget, rawLevel string) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	level := switchboard.PermissionLevel(strings.ToUpper(rawLevel))
	if !level.Valid() {
		return fmt.Errorf("--level must be READ, WRITE, or ADMIN, got %q", rawLevel)
	}

	ctx := context.Background()
	if target.isGroup {
		if err := a.SDK.GrantGroupPermission(ctx, resourceID, target.groupID, level); err != nil {
			return fmt.Errorf("granting %s to group %d: %w", level, target.groupID, err)
		}
		ui.Success(fmt.Sprintf("Granted %s to group %d on %s.", level, target.groupID, resourceID))
		return showAccess(ctx, a, resourceID)
	}
	if err := a.SDK.GrantUserPermission(ctx, resourceID, target.userAddress, level); err != nil {
		return fmt.Errorf("granting %s to %s: %w", level, target.userAddress, err)
	}
	ui.Success(fmt.Sprintf("Granted %s to %s on %s.", level, target.userAddress, resourceID))
	return showAccess(ctx, a, resourceID)
}

func accessRevokeLogic(a *app.App, resourceID string, target grantTarget) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}

	ctx := context.Background()
	if target.isGroup {
		if err := a.SDK.RevokeGroupPermission(ctx, resourceID, target.groupID); err != nil {
			return fmt.Errorf("revoking group %d on %s: %w", target.groupID, resourceID, err)
		}
		ui.Success(fmt.Sprintf("Revoked group %d on %s.", target.groupID, resourceID))
		return showAccess(ctx, a, resourceID)
	}
	if err := a.SDK.RevokeUserPermission(ctx, resourceID, target.userAddress); err != nil {
		return fmt.Errorf("revoking %s on %s: %w", target.userAddress, resourceID, err)
	}
	ui.Success(fmt.Sprintf("Revoked %s on %s.", target.userAddress, resourceID))
	return showAccess(ctx, a, resourceID)
}

// showAccess re-fetches a resource's grant state after a mutation so the
// printed view is the authority's, not an optimistic echo. The mutation
// already succeeded, so a failed re-fetch is only warned about.
func showAccess(ctx context.Context, a *app.App, resourceID string) error {
	access, err := a.SDK.GetResourceAccess(ctx, resourceID)
	if err != nil {
		a.Logger.Warnf("re-fetching grants for %s: %v", resourceID, err)
		return nil
	}
	ui.DisplayAccess(access)
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{accessGrantCmd, accessRevokeCmd} {
		cmd.Flags().String("user", "", "Target user address")
		cmd.Flags().Int("group", 0, "Target group id")
	}
	accessGrantCmd.Flags().String("level", "", "Permission level: READ, WRITE, or ADMIN")
	accessGrantCmd.MarkFlagRequired("level")

	accessCmd.AddCommand(accessGetCmd)
	accessCmd.AddCommand(accessGrantCmd)
	accessCmd.AddCommand(accessRevokeCmd)
	rootCmd.AddCommand(accessCmd)
}
