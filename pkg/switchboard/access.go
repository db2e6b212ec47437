package switchboard

import (
	"context"
	"strings"
)

const accessQuery = `query DocAccess($documentId: String!) {
  documentAccess(documentId: $documentId) {
    documentId
    permissions { documentId userAddress permission grantedBy }
    groupPermissions { documentId groupId group { id name } permission grantedBy }
  }
}`

const grantUserMutation = `mutation Grant($documentId: String!, $userAddress: String!, $permission: DocumentPermissionLevel!) {
  grantDocumentPermission(documentId: $documentId, userAddress: $userAddress, permission: $permission) {
    documentId userAddress permission
  }
}`

const revokeUserMutation = `mutation Revoke($documentId: String!, $userAddress: String!) {
  revokeDocumentPermission(documentId: $documentId, userAddress: $userAddress)
}`

const grantGroupMutation = `mutation GrantGroup($documentId: String!, $groupId: Int!, $permission: DocumentPermissionLevel!) {
  grantGroupPermission(documentId: $documentId, groupId: $groupId, permission: $permission) {
    documentId groupId permission
  }
}`

const revokeGroupMutation = `mutation RevokeGroup($documentId: String!, $groupId: Int!) {
  revokeGroupPermission(documentId: $documentId, groupId: $groupId)
}`

const myPermissionsQuery = `{
  userDocumentPermissions {
    documentId permission grantedBy createdAt
  }
}`

// GetResourceAccess retrieves the per-resource grant tables for one
// resource. Grants are independent per node; nothing is inherited from
// ancestors.
func (c *Client) GetResourceAccess(ctx context.Context, resourceID string) (AccessView, error) {
	var out struct {
		DocumentAccess AccessView `json:"documentAccess"`
	}
	err := c.do(ctx, "documentAccess", accessQuery, map[string]any{"documentId": resourceID}, &out)
	if err != nil {
		return AccessView{}, err
	}
	return out.DocumentAccess, nil
}

// UserDocumentPermissions lists the caller's own per-resource grants. The
// caller is identified by the bearer credential, so a login is required.
// A switchboard with no record of the caller fails the query with a
// toLowerCase error server-side; that case means no grants, not failure.
func (c *Client) UserDocumentPermissions(ctx context.Context) ([]UserDocumentPermission, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out struct {
		UserDocumentPermissions []UserDocumentPermission `json:"userDocumentPermissions"`
	}
	if err := c.do(ctx, "userDocumentPermissions", myPermissionsQuery, nil, &out); err != nil {
		if strings.Contains(err.Error(), "toLowerCase") {
			return []UserDocumentPermission{}, nil
		}
		return nil, err
	}
	return out.UserDocumentPermissions, nil
}

// GrantUserPermission grants a privilege level to a user on one resource.
// Granting an already-granted target replaces the level server-side; the
// caller must re-fetch rather than merge locally.
func (c *Client) GrantUserPermission(ctx context.Context, resourceID, userAddress string, level PermissionLevel) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId":  resourceID,
		"userAddress": userAddress,
		"permission":  level,
	}
	return c.do(ctx, "grantDocumentPermission", grantUserMutation, variables, nil)
}

// RevokeUserPermission removes a user's grant on one resource. Revoking a
// target with no grant is a no-op on the authority side.
func (c *Client) RevokeUserPermission(ctx context.Context, resourceID, userAddress string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{"documentId": resourceID, "userAddress": userAddress}
	return c.do(ctx, "revokeDocumentPermission", revokeUserMutation, variables, nil)
}

// GrantGroupPermission grants a privilege level to a group on one resource.
func (c *Client) GrantGroupPermission(ctx context.Context, resourceID string, groupID int, level PermissionLevel) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId": resourceID,
		"groupId":    groupID,
		"permission": level,
	}
	return c.do(ctx, "grantGroupPermission", grantGroupMutation, variables, nil)
}

// RevokeGroupPermission removes a group's grant on one resource.
func (c *Client) RevokeGroupPermission(ctx context.Context, resourceID string, groupID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{"documentId": resourceID, "groupId": groupID}
	return c.do(ctx, "revokeGroupPermission", revokeGroupMutation, variables, nil)
}
