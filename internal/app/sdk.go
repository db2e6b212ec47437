package app

import (
	"context"

	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

// SDK is the surface of the switchboard API the application uses. It
// exists so commands and the dashboard can be tested against a mock.
type SDK interface {
	WhoAmI(ctx context.Context, address string) (switchboard.Identity, error)
	UserGroups(ctx context.Context, address string) ([]switchboard.Group, error)
	UserDocumentPermissions(ctx context.Context) ([]switchboard.UserDocumentPermission, error)

	ListDrives(ctx context.Context) ([]switchboard.DriveSummary, error)
	FetchTree(ctx context.Context, progress func(completed, total int)) ([]*switchboard.ResourceNode, error)

	ListGroups(ctx context.Context) ([]switchboard.Group, error)
	CreateGroup(ctx context.Context, name, description string) (switchboard.Group, error)
	DeleteGroup(ctx context.Context, id int) error
	AddGroupMember(ctx context.Context, userAddress string, groupID int) error
	RemoveGroupMember(ctx context.Context, userAddress string, groupID int) error

	GetResourceAccess(ctx context.Context, resourceID string) (switchboard.AccessView, error)
	GrantUserPermission(ctx context.Context, resourceID, userAddress string, level switchboard.PermissionLevel) error
	RevokeUserPermission(ctx context.Context, resourceID, userAddress string) error
	GrantGroupPermission(ctx context.Context, resourceID string, groupID int, level switchboard.PermissionLevel) error
	RevokeGroupPermission(ctx context.Context, resourceID string, groupID int) error

	OperationSource(isDrive bool) switchboard.OperationNameSource
	FetchOperationGrants(ctx context.Context, resourceID string, source switchboard.OperationNameSource) ([]switchboard.OperationGrants, error)
	GetOperationPermissions(ctx context.Context, resourceID, operationType string) (switchboard.OperationGrants, error)
	GrantOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error
	RevokeOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error
	GrantGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error
	RevokeGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error
}

// LiveSDK implements SDK against a real switchboard client.
type LiveSDK struct {
	Client *switchboard.Client
}

func (s *LiveSDK) WhoAmI(ctx context.Context, address string) (switchboard.Identity, error) {
	return s.Client.WhoAmI(ctx, address)
}

func (s *LiveSDK) UserGroups(ctx context.Context, address string) ([]switchboard.Group, error) {
	return s.Client.UserGroups(ctx, address)
}

func (s *LiveSDK) UserDocumentPermissions(ctx context.Context) ([]switchboard.UserDocumentPermission, error) {
	return s.Client.UserDocumentPermissions(ctx)
}

func (s *LiveSDK) ListDrives(ctx context.Context) ([]switchboard.DriveSummary, error) {
	return s.Client.ListDrives(ctx)
}

func (s *LiveSDK) FetchTree(ctx context.Context, progress func(completed, total int)) ([]*switchboard.ResourceNode, error) {
	return s.Client.FetchTree(ctx, progress)
}

func (s *LiveSDK) ListGroups(ctx context.Context) ([]switchboard.Group, error) {
	return s.Client.ListGroups(ctx)
}

func (s *LiveSDK) CreateGroup(ctx context.Context, name, description string) (switchboard.Group, error) {
	return s.Client.CreateGroup(ctx, name, description)
}

func (s *LiveSDK) DeleteGroup(ctx context.Context, id int) error {
	return s.Client.DeleteGroup(ctx, id)
}

func (s *LiveSDK) AddGroupMember(ctx context.Context, userAddress string, groupID int) error {
	return s.Client.AddGroupMember(ctx, userAddress, groupID)
}

func (s *LiveSDK) RemoveGroupMember(ctx context.Context, userAddress string, groupID int) error {
	return s.Client.RemoveGroupMember(ctx, userAddress, groupID)
}

func (s *LiveSDK) GetResourceAccess(ctx context.Context, resourceID string) (switchboard.AccessView, error) {
	return s.Client.GetResourceAccess(ctx, resourceID)
}

func (s *LiveSDK) GrantUserPermission(ctx context.Context, resourceID, userAddress string, level switchboard.PermissionLevel) error {
	return s.Client.GrantUserPermission(ctx, resourceID, userAddress, level)
}

func (s *LiveSDK) RevokeUserPermission(ctx context.Context, resourceID, userAddress string) error {
	return s.Client.RevokeUserPermission(ctx, resourceID, userAddress)
}

func (s *LiveSDK) GrantGroupPermission(ctx context.Context, resourceID string, groupID int, level switchboard.PermissionLevel) error {
	return s.Client.GrantGroupPermission(ctx, resourceID, groupID, level)
}

func (s *LiveSDK) RevokeGroupPermission(ctx context.Context, resourceID string, groupID int) error {
	return s.Client.RevokeGroupPermission(ctx, resourceID, groupID)
}

func (s *LiveSDK) OperationSource(isDrive bool) switchboard.OperationNameSource {
	return s.Client.OperationSource(isDrive)
}

func (s *LiveSDK) FetchOperationGrants(ctx context.Context, resourceID string, source switchboard.OperationNameSource) ([]switchboard.OperationGrants, error) {
	return s.Client.FetchOperationGrants(ctx, resourceID, source)
}

func (s *LiveSDK) GetOperationPermissions(ctx context.Context, resourceID, operationType string) (switchboard.OperationGrants, error) {
	return s.Client.GetOperationPermissions(ctx, resourceID, operationType)
}

func (s *LiveSDK) GrantOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	return s.Client.GrantOperationPermission(ctx, resourceID, operationType, userAddress)
}

func (s *LiveSDK) RevokeOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	return s.Client.RevokeOperationPermission(ctx, resourceID, operationType, userAddress)
}

func (s *LiveSDK) GrantGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	return s.Client.GrantGroupOperationPermission(ctx, resourceID, operationType, groupID)
}

func (s *LiveSDK) RevokeGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	return s.Client.RevokeGroupOperationPermission(ctx, resourceID, operationType, groupID)
}
