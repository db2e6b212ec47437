// Package ui formats switchboard data structures (resource trees, grant
// tables, groups, identities) for the console, and provides helpers for
// progress bars and standardized success/error messages.
package ui

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

// Success prints a simple success message to standard output.
func Success(msg string) {
	fmt.Println(msg)
}

// PrintError prints a formatted error message to the console.
func PrintError(err error) {
	log.Printf("ERROR: %v", err)
}

// DisplayIdentity prints the caller's resolved global role.
func DisplayIdentity(identity switchboard.Identity) {
	fmt.Printf("Address: %s\n", identity.Address)
	fmt.Printf("Role:    %s\n", RoleLabel(identity))
}

// RoleLabel reduces the identity flags to a single display label. Admin
// wins over user; anything else is a guest.
func RoleLabel(identity switchboard.Identity) string {
	switch {
	case identity.IsAdmin:
		return "admin"
	case identity.IsUser:
		return "user"
	default:
		return "guest"
	}
}

// DisplayUserGroups prints the groups an address belongs to.
func DisplayUserGroups(groups []switchboard.Group) {
	fmt.Println("Groups:")
	if len(groups) == 0 {
		fmt.Println("  Not a member of any groups.")
		return
	}
	for _, group := range groups {
		line := fmt.Sprintf("  #%d %s (%d members)", group.ID, group.Name, len(group.Members))
		if group.Description != nil && *group.Description != "" {
			line += " - " + *group.Description
		}
		fmt.Println(line)
	}
}

// DisplayUserDocumentPermissions prints the caller's own grant list.
func DisplayUserDocumentPermissions(grants []switchboard.UserDocumentPermission) {
	fmt.Println("Document grants:")
	if len(grants) == 0 {
		fmt.Println("  No explicit document permissions found.")
		return
	}
	fmt.Printf("  %-40s %-8s %s\n", "Document", "Level", "Granted By")
	for _, grant := range grants {
		fmt.Printf("  %-40.40s %-8s %s\n", grant.DocumentID, grant.Level, grant.GrantedBy)
	}
}

// DisplayDrives prints a table of drive summaries.
func DisplayDrives(drives []switchboard.DriveSummary) {
	if len(drives) == 0 {
		fmt.Println("No drives found.")
		return
	}

	fmt.Printf("%-40s %s\n", "ID", "Name")
	fmt.Println(strings.Repeat("-", 70))
	for _, drive := range drives {
		fmt.Printf("%-40.40s %s\n", drive.ID, drive.Name)
	}
}

// DisplayTree prints the resource hierarchy with indentation, one node
// per line with its kind and id.
func DisplayTree(tree []*switchboard.ResourceNode) {
	if len(tree) == 0 {
		fmt.Println("No drives found.")
		return
	}
	for _, drive := range tree {
		displayNode(drive, 0)
	}
}

func displayNode(node *switchboard.ResourceNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := string(node.Kind)
	if node.Kind == switchboard.KindFile && node.DocumentType != "" {
		label = node.DocumentType
	}
	fmt.Printf("%s%s [%s] (%s)\n", indent, node.Name, label, node.ID)
	for _, child := range node.Children {
		displayNode(child, depth+1)
	}
}

// DisplayGroups prints the group directory with member counts.
func DisplayGroups(groups []switchboard.Group) {
	if len(groups) == 0 {
		fmt.Println("No groups found.")
		return
	}

	fmt.Printf("%-6s %-30s %-8s %s\n", "ID", "Name", "Members", "Description")
	fmt.Println(strings.Repeat("-", 75))
	for _, group := range groups {
		description := ""
		if group.Description != nil {
			description = *group.Description
		}
		fmt.Printf("%-6d %-30.30s %-8d %s\n", group.ID, group.Name, len(group.Members), description)
	}
}

// DisplayGroupMembers prints one group's member addresses.
func DisplayGroupMembers(group switchboard.Group) {
	fmt.Printf("Group %d: %s\n", group.ID, group.Name)
	if len(group.Members) == 0 {
		fmt.Println("  (no members)")
		return
	}
	for _, member := range group.Members {
		fmt.Printf("  %s\n", member)
	}
}

// DisplayAccess prints a resource's user and group grant tables.
func DisplayAccess(access switchboard.AccessView) {
	if len(access.UserGrants) == 0 && len(access.GroupGrants) == 0 {
		fmt.Println("No grants on this resource.")
		return
	}

	if len(access.UserGrants) > 0 {
		fmt.Println("User grants:")
		fmt.Printf("  %-44s %-8s %s\n", "Address", "Level", "Granted By")
		for _, grant := range access.UserGrants {
			fmt.Printf("  %-44.44s %-8s %s\n", grant.UserAddress, grant.Level, grant.GrantedBy)
		}
	}
	if len(access.GroupGrants) > 0 {
		fmt.Println("Group grants:")
		fmt.Printf("  %-6s %-30s %-8s %s\n", "ID", "Name", "Level", "Granted By")
		for _, grant := range access.GroupGrants {
			fmt.Printf("  %-6d %-30.30s %-8s %s\n", grant.GroupID, grant.Group.Name, grant.Level, grant.GrantedBy)
		}
	}
}

// DisplayOperationGrants prints the per-operation grant sets for a
// resource, one block per operation type.
func DisplayOperationGrants(grants []switchboard.OperationGrants) {
	if len(grants) == 0 {
		fmt.Println("No operations found for this resource.")
		return
	}

	for _, grant := range grants {
		fmt.Printf("%s\n", grant.OperationType)
		if len(grant.Users) == 0 && len(grant.Groups) == 0 {
			fmt.Println("  (no grants)")
			continue
		}
		for _, user := range grant.Users {
			fmt.Printf("  user  %s (granted by %s)\n", user.UserAddress, user.GrantedBy)
		}
		for _, group := range grant.Groups {
			fmt.Printf("  group %d %s (granted by %s)\n", group.GroupID, group.Group.Name, group.GrantedBy)
		}
	}
}

// NewDriveFetchProgressBar returns a progress bar for the concurrent
// per-drive detail fetch. It writes to stderr so stdout stays clean for
// the tree output.
func NewDriveFetchProgressBar(driveCount int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		driveCount,
		progressbar.OptionSetDescription("Fetching drives..."),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
