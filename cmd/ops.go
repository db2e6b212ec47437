// Package cmd (ops.go) defines the per-operation grant commands. Drives
// take their operation names from the observed operation log; typed files
// take them from the document model's declared set.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "View and edit per-operation grants",
	Long: `Operation grants are binary invocation rights scoped to one resource
and one operation type. Unlike resource grants they carry no level.`,
}

var opsListCmd = &cobra.Command{
	Use:   "list <resource-id>",
	Short: "List operation grants for a resource",
	Long: `Discovers the resource's operation-name set and fetches the grant
state for every name. Pass --drive when the resource is a drive so names
come from its operation log instead of a document model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'ops list': %w", err)
		}
		isDrive, _ := cmd.Flags().GetBool("drive")
		return opsListLogic(a, args[0], isDrive)
	},
}

var opsGrantCmd = &cobra.Command{
	Use:   "grant <resource-id> <operation-type>",
	Short: "Grant an operation to a user or group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'ops grant': %w", err)
		}
		target, err := parseTargetFlags(cmd)
		if err != nil {
			return err
		}
		return opsGrantLogic(a, args[0], args[1], target)
	},
}

var opsRevokeCmd = &cobra.Command{
	Use:   "revoke <resource-id> <operation-type>",
	Short: "Revoke an operation from a user or group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'ops revoke': %w", err)
		}
		target, err := parseTargetFlags(cmd)
		if err != nil {
			return err
		}
		return opsRevokeLogic(a, args[0], args[1], target)
	},
}

func opsListLogic(a *app.App, resourceID string, isDrive bool) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	source := a.SDK.OperationSource(isDrive)
	grants, err := a.SDK.FetchOperationGrants(context.Background(), resourceID, source)
	if err != nil {
		return fmt.Errorf("fetching operation grants for %s: %w", resourceID, err)
	}
	ui.DisplayOperationGrants(grants)
	return nil
}

func opsGrantLogic(a *app.App, resourceID, operationType string, target grantTarget) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}

	ctx := context.Background()
	if target.isGroup {
		if err := a.SDK.GrantGroupOperationPermission(ctx, resourceID, operationType, target.groupID); err != nil {
			return fmt.Errorf("granting %s to group %d: %w", operationType, target.groupID, err)
		}
		ui.Success(fmt.Sprintf("Granted %s to group %d on %s.", operationType, target.groupID, resourceID))
		return showOperation(ctx, a, resourceID, operationType)
	}
	if err := a.SDK.GrantOperationPermission(ctx, resourceID, operationType, target.userAddress); err != nil {
		return fmt.Errorf("granting %s to %s: %w", operationType, target.userAddress, err)
	}
	ui.Success(fmt.Sprintf("Granted %s to %s on %s.", operationType, target.userAddress, resourceID))
	return showOperation(ctx, a, resourceID, operationType)
}

func opsRevokeLogic(a *app.App, resourceID, operationType string, target grantTarget) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}

	ctx := context.Background()
	if target.isGroup {
		if err := a.SDK.RevokeGroupOperationPermission(ctx, resourceID, operationType, target.groupID); err != nil {
			return fmt.Errorf("revoking %s from group %d: %w", operationType, target.groupID, err)
		}
		ui.Success(fmt.Sprintf("Revoked %s from group %d on %s.", operationType, target.groupID, resourceID))
		return showOperation(ctx, a, resourceID, operationType)
	}
	if err := a.SDK.RevokeOperationPermission(ctx, resourceID, operationType, target.userAddress); err != nil {
		return fmt.Errorf("revoking %s from %s: %w", operationType, target.userAddress, err)
	}
	ui.Success(fmt.Sprintf("Revoked %s from %s on %s.", operationType, target.userAddress, resourceID))
	return showOperation(ctx, a, resourceID, operationType)
}

// showOperation re-fetches the mutated operation's grant set so the
// printed state is the authority's. The mutation already succeeded, so a
// failed re-fetch is only warned about.
func showOperation(ctx context.Context, a *app.App, resourceID, operationType string) error {
	grants, err := a.SDK.GetOperationPermissions(ctx, resourceID, operationType)
	if err != nil {
		a.Logger.Warnf("re-fetching %s grants for %s: %v", operationType, resourceID, err)
		return nil
	}
	ui.DisplayOperationGrants([]switchboard.OperationGrants{grants})
	return nil
}

func init() {
	opsListCmd.Flags().Bool("drive", false, "Treat the resource as a drive (log-derived operation names)")
	for _, cmd := range []*cobra.Command{opsGrantCmd, opsRevokeCmd} {
		cmd.Flags().String("user", "", "Target user address")
		cmd.Flags().Int("group", 0, "Target group id")
	}

	opsCmd.AddCommand(opsListCmd)
	opsCmd.AddCommand(opsGrantCmd)
	opsCmd.AddCommand(opsRevokeCmd)
	rootCmd.AddCommand(opsCmd)
}
