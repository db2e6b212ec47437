// Package cmd (groups.go) defines the group directory commands: listing,
// creation, deletion, and membership management.
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/ui"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage the group directory",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups with their members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'groups list': %w", err)
		}
		members, _ := cmd.Flags().GetBool("members")
		return groupsListLogic(a, members)
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'groups create': %w", err)
		}
		description, _ := cmd.Flags().GetString("description")
		return groupsCreateLogic(a, args[0], description)
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group by its numeric id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'groups delete': %w", err)
		}
		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}
		return groupsDeleteLogic(a, id)
	},
}

var groupsAddMemberCmd = &cobra.Command{
	Use:   "add-member <group-id> <user-address>",
	Short: "Add a user to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'groups add-member': %w", err)
		}
		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}
		return groupsAddMemberLogic(a, id, args[1])
	},
}

var groupsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <group-id> <user-address>",
	Short: "Remove a user from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'groups remove-member': %w", err)
		}
		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}
		return groupsRemoveMemberLogic(a, id, args[1])
	},
}

func parseGroupID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("group id must be a number, got %q", raw)
	}
	return id, nil
}

func groupsListLogic(a *app.App, withMembers bool) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	groups, err := a.SDK.ListGroups(context.Background())
	if err != nil {
		return fmt.Errorf("listing groups: %w", err)
	}
	if withMembers {
		for _, group := range groups {
			ui.DisplayGroupMembers(group)
		}
		return nil
	}
	ui.DisplayGroups(groups)
	return nil
}

func groupsCreateLogic(a *app.App, name, description string) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	// The switchboard rejects blank names too, but catching it locally
	// gives a clearer message.
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("group name must not be empty")
	}

	ctx := context.Background()
	group, err := a.SDK.CreateGroup(ctx, name, description)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}
	ui.Success(fmt.Sprintf("Created group %d: %s", group.ID, group.Name))
	return showGroupDirectory(ctx, a)
}

func groupsDeleteLogic(a *app.App, id int) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	ctx := context.Background()
	if err := a.SDK.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("deleting group %d: %w", id, err)
	}
	ui.Success(fmt.Sprintf("Deleted group %d.", id))
	return showGroupDirectory(ctx, a)
}

func groupsAddMemberLogic(a *app.App, id int, userAddress string) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	ctx := context.Background()
	if err := a.SDK.AddGroupMember(ctx, userAddress, id); err != nil {
		return fmt.Errorf("adding %s to group %d: %w", userAddress, id, err)
	}
	ui.Success(fmt.Sprintf("Added %s to group %d.", userAddress, id))
	return showGroupMembers(ctx, a, id)
}

func groupsRemoveMemberLogic(a *app.App, id int, userAddress string) error {
	if err := a.RequireEndpoint(); err != nil {
		return err
	}
	ctx := context.Background()
	if err := a.SDK.RemoveGroupMember(ctx, userAddress, id); err != nil {
		return fmt.Errorf("removing %s from group %d: %w", userAddress, id, err)
	}
	ui.Success(fmt.Sprintf("Removed %s from group %d.", userAddress, id))
	return showGroupMembers(ctx, a, id)
}

// showGroupDirectory re-fetches the directory after a mutation so the
// printed state is the authority's. The mutation already succeeded, so a
// failed re-fetch is only warned about.
func showGroupDirectory(ctx context.Context, a *app.App) error {
	groups, err := a.SDK.ListGroups(ctx)
	if err != nil {
		a.Logger.Warnf("re-fetching groups: %v", err)
		return nil
	}
	ui.DisplayGroups(groups)
	return nil
}

// showGroupMembers re-fetches the directory and prints the mutated
// group's member list.
func showGroupMembers(ctx context.Context, a *app.App, id int) error {
	groups, err := a.SDK.ListGroups(ctx)
	if err != nil {
		a.Logger.Warnf("re-fetching groups: %v", err)
		return nil
	}
	for _, group := range groups {
		if group.ID == id {
			ui.DisplayGroupMembers(group)
			return nil
		}
	}
	return nil
}

func init() {
	groupsListCmd.Flags().Bool("members", false, "Print each group's member addresses")
	groupsCreateCmd.Flags().String("description", "", "Optional group description")
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	groupsCmd.AddCommand(groupsAddMemberCmd)
	groupsCmd.AddCommand(groupsRemoveMemberCmd)
	rootCmd.AddCommand(groupsCmd)
}
