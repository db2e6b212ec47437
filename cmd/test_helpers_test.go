package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"testing"

	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/internal/config"
	"github.com/powerhouse-inc/auth-editor/internal/logger"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

// MockSDK is a mock implementation of the app.SDK interface for testing
// command logic. Unset function fields return zero values.
type MockSDK struct {
	WhoAmIFunc                         func(address string) (switchboard.Identity, error)
	UserGroupsFunc                     func(address string) ([]switchboard.Group, error)
	UserDocumentPermissionsFunc        func() ([]switchboard.UserDocumentPermission, error)
	ListDrivesFunc                     func() ([]switchboard.DriveSummary, error)
	FetchTreeFunc                      func(progress func(completed, total int)) ([]*switchboard.ResourceNode, error)
	ListGroupsFunc                     func() ([]switchboard.Group, error)
	CreateGroupFunc                    func(name, description string) (switchboard.Group, error)
	DeleteGroupFunc                    func(id int) error
	AddGroupMemberFunc                 func(userAddress string, groupID int) error
	RemoveGroupMemberFunc              func(userAddress string, groupID int) error
	GetResourceAccessFunc              func(resourceID string) (switchboard.AccessView, error)
	GrantUserPermissionFunc            func(resourceID, userAddress string, level switchboard.PermissionLevel) error
	RevokeUserPermissionFunc           func(resourceID, userAddress string) error
	GrantGroupPermissionFunc           func(resourceID string, groupID int, level switchboard.PermissionLevel) error
	RevokeGroupPermissionFunc          func(resourceID string, groupID int) error
	OperationSourceFunc                func(isDrive bool) switchboard.OperationNameSource
	FetchOperationGrantsFunc           func(resourceID string, source switchboard.OperationNameSource) ([]switchboard.OperationGrants, error)
	GetOperationPermissionsFunc        func(resourceID, operationType string) (switchboard.OperationGrants, error)
	GrantOperationPermissionFunc       func(resourceID, operationType, userAddress string) error
	RevokeOperationPermissionFunc      func(resourceID, operationType, userAddress string) error
	GrantGroupOperationPermissionFunc  func(resourceID, operationType string, groupID int) error
	RevokeGroupOperationPermissionFunc func(resourceID, operationType string, groupID int) error
}

func (m *MockSDK) WhoAmI(ctx context.Context, address string) (switchboard.Identity, error) {
	if m.WhoAmIFunc != nil {
		return m.WhoAmIFunc(address)
	}
	return switchboard.Identity{}, nil
}

func (m *MockSDK) UserGroups(ctx context.Context, address string) ([]switchboard.Group, error) {
	if m.UserGroupsFunc != nil {
		return m.UserGroupsFunc(address)
	}
	return nil, nil
}

func (m *MockSDK) UserDocumentPermissions(ctx context.Context) ([]switchboard.UserDocumentPermission, error) {
	if m.UserDocumentPermissionsFunc != nil {
		return m.UserDocumentPermissionsFunc()
	}
	return nil, nil
}

func (m *MockSDK) ListDrives(ctx context.Context) ([]switchboard.DriveSummary, error) {
	if m.ListDrivesFunc != nil {
		return m.ListDrivesFunc()
	}
	return nil, nil
}

func (m *MockSDK) FetchTree(ctx context.Context, progress func(completed, total int)) ([]*switchboard.ResourceNode, error) {
	if m.FetchTreeFunc != nil {
		return m.FetchTreeFunc(progress)
	}
	return nil, nil
}

func (m *MockSDK) ListGroups(ctx context.Context) ([]switchboard.Group, error) {
	if m.ListGroupsFunc != nil {
		return m.ListGroupsFunc()
	}
	return nil, nil
}

func (m *MockSDK) CreateGroup(ctx context.Context, name, description string) (switchboard.Group, error) {
	if m.CreateGroupFunc != nil {
		return m.CreateGroupFunc(name, description)
	}
	return switchboard.Group{}, nil
}

func (m *MockSDK) DeleteGroup(ctx context.Context, id int) error {
	if m.DeleteGroupFunc != nil {
		return m.DeleteGroupFunc(id)
	}
	return nil
}

func (m *MockSDK) AddGroupMember(ctx context.Context, userAddress string, groupID int) error {
	if m.AddGroupMemberFunc != nil {
		return m.AddGroupMemberFunc(userAddress, groupID)
	}
	return nil
}

func (m *MockSDK) RemoveGroupMember(ctx context.Context, userAddress string, groupID int) error {
	if m.RemoveGroupMemberFunc != nil {
		return m.RemoveGroupMemberFunc(userAddress, groupID)
	}
	return nil
}

func (m *MockSDK) GetResourceAccess(ctx context.Context, resourceID string) (switchboard.AccessView, error) {
	if m.GetResourceAccessFunc != nil {
		return m.GetResourceAccessFunc(resourceID)
	}
	return switchboard.AccessView{}, nil
}

func (m *MockSDK) GrantUserPermission(ctx context.Context, resourceID, userAddress string, level switchboard.PermissionLevel) error {
	if m.GrantUserPermissionFunc != nil {
		return m.GrantUserPermissionFunc(resourceID, userAddress, level)
	}
	return nil
}

func (m *MockSDK) RevokeUserPermission(ctx context.Context, resourceID, userAddress string) error {
	if m.RevokeUserPermissionFunc != nil {
		return m.RevokeUserPermissionFunc(resourceID, userAddress)
	}
	return nil
}

func (m *MockSDK) GrantGroupPermission(ctx context.Context, resourceID string, groupID int, level switchboard.PermissionLevel) error {
	if m.GrantGroupPermissionFunc != nil {
		return m.GrantGroupPermissionFunc(resourceID, groupID, level)
	}
	return nil
}

func (m *MockSDK) RevokeGroupPermission(ctx context.Context, resourceID string, groupID int) error {
	if m.RevokeGroupPermissionFunc != nil {
		return m.RevokeGroupPermissionFunc(resourceID, groupID)
	}
	return nil
}

func (m *MockSDK) OperationSource(isDrive bool) switchboard.OperationNameSource {
	if m.OperationSourceFunc != nil {
		return m.OperationSourceFunc(isDrive)
	}
	return nil
}

func (m *MockSDK) FetchOperationGrants(ctx context.Context, resourceID string, source switchboard.OperationNameSource) ([]switchboard.OperationGrants, error) {
	if m.FetchOperationGrantsFunc != nil {
		return m.FetchOperationGrantsFunc(resourceID, source)
	}
	return nil, nil
}

func (m *MockSDK) GetOperationPermissions(ctx context.Context, resourceID, operationType string) (switchboard.OperationGrants, error) {
	if m.GetOperationPermissionsFunc != nil {
		return m.GetOperationPermissionsFunc(resourceID, operationType)
	}
	return switchboard.OperationGrants{}, nil
}

func (m *MockSDK) GrantOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	if m.GrantOperationPermissionFunc != nil {
		return m.GrantOperationPermissionFunc(resourceID, operationType, userAddress)
	}
	return nil
}

func (m *MockSDK) RevokeOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	if m.RevokeOperationPermissionFunc != nil {
		return m.RevokeOperationPermissionFunc(resourceID, operationType, userAddress)
	}
	return nil
}

func (m *MockSDK) GrantGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	if m.GrantGroupOperationPermissionFunc != nil {
		return m.GrantGroupOperationPermissionFunc(resourceID, operationType, groupID)
	}
	return nil
}

func (m *MockSDK) RevokeGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	if m.RevokeGroupOperationPermissionFunc != nil {
		return m.RevokeGroupOperationPermissionFunc(resourceID, operationType, groupID)
	}
	return nil
}

// newTestApp builds an App around a mock SDK with an endpoint configured
// so RequireEndpoint passes.
func newTestApp(sdk app.SDK) *app.App {
	return &app.App{
		Config: &config.Configuration{SwitchboardURL: "https://switchboard.test/graphql"},
		SDK:    sdk,
		Logger: logger.NoopLogger{},
	}
}

// captureOutput captures stdout and stderr, returning them as a string.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	originalLogOutput := log.Writer()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStderr := os.Stderr
	r2, w2, _ := os.Pipe()
	os.Stderr = w2
	log.SetOutput(w2)

	f()

	w.Close()
	w2.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	log.SetOutput(originalLogOutput)

	stdout, _ := io.ReadAll(r)
	stderr, _ := io.ReadAll(r2)
	return string(stdout) + string(stderr)
}
