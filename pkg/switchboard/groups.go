package switchboard

import "context"

const groupsQuery = `{
  groups {
    id name description members createdAt
  }
}`

const userGroupsQuery = `query UserGroups($userAddress: String!) {
  userGroups(userAddress: $userAddress) {
    id name description members
  }
}`

const createGroupMutation = `mutation CreateGroup($name: String!, $description: String) {
  createGroup(name: $name, description: $description) {
    id name description members createdAt
  }
}`

const deleteGroupMutation = `mutation DeleteGroup($id: Int!) {
  deleteGroup(id: $id)
}`

const addGroupMemberMutation = `mutation AddUser($userAddress: String!, $groupId: Int!) {
  addUserToGroup(userAddress: $userAddress, groupId: $groupId)
}`

const removeGroupMemberMutation = `mutation RemoveUser($userAddress: String!, $groupId: Int!) {
  removeUserFromGroup(userAddress: $userAddress, groupId: $groupId)
}`

// ListGroups retrieves the full group directory, members included.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var out struct {
		Groups []Group `json:"groups"`
	}
	if err := c.do(ctx, "groups", groupsQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// UserGroups lists the groups the given address is a member of.
func (c *Client) UserGroups(ctx context.Context, address string) ([]Group, error) {
	var out struct {
		UserGroups []Group `json:"userGroups"`
	}
	variables := map[string]any{"userAddress": address}
	if err := c.do(ctx, "userGroups", userGroupsQuery, variables, &out); err != nil {
		return nil, err
	}
	return out.UserGroups, nil
}

// CreateGroup creates a named group. An empty description is sent as null.
func (c *Client) CreateGroup(ctx context.Context, name, description string) (Group, error) {
	var group Group
	if err := c.requireAuth(); err != nil {
		return group, err
	}

	variables := map[string]any{"name": name}
	if description != "" {
		variables["description"] = description
	} else {
		variables["description"] = nil
	}

	var out struct {
		CreateGroup Group `json:"createGroup"`
	}
	if err := c.do(ctx, "createGroup", createGroupMutation, variables, &out); err != nil {
		return group, err
	}
	return out.CreateGroup, nil
}

// DeleteGroup removes a group by its numeric id.
func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.do(ctx, "deleteGroup", deleteGroupMutation, map[string]any{"id": id}, nil)
}

// AddGroupMember adds a user address to a group's member set.
func (c *Client) AddGroupMember(ctx context.Context, userAddress string, groupID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{"userAddress": userAddress, "groupId": groupID}
	return c.do(ctx, "addUserToGroup", addGroupMemberMutation, variables, nil)
}

// RemoveGroupMember removes a user address from a group's member set.
func (c *Client) RemoveGroupMember(ctx context.Context, userAddress string, groupID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{"userAddress": userAddress, "groupId": groupID}
	return c.do(ctx, "removeUserFromGroup", removeGroupMemberMutation, variables, nil)
}
