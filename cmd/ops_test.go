package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

func TestOpsListLogic(t *testing.T) {
	var gotDrive bool
	mockSDK := &MockSDK{
		OperationSourceFunc: func(isDrive bool) switchboard.OperationNameSource {
			gotDrive = isDrive
			return nil
		},
		FetchOperationGrantsFunc: func(resourceID string, source switchboard.OperationNameSource) ([]switchboard.OperationGrants, error) {
			return []switchboard.OperationGrants{
				{
					OperationType: "ADD_FILE",
					Users: []switchboard.OperationUserGrant{
						{UserAddress: "0x1", GrantedBy: "0xroot"},
					},
				},
				{OperationType: "DELETE_NODE"},
			}, nil
		},
	}

	a := newTestApp(mockSDK)
	output := captureOutput(t, func() {
		assert.NoError(t, opsListLogic(a, "drive1", true))
	})

	assert.True(t, gotDrive, "the --drive flag selects the log-derived source")
	assert.Contains(t, output, "ADD_FILE")
	assert.Contains(t, output, "0x1")
	assert.Contains(t, output, "DELETE_NODE")
	assert.Contains(t, output, "(no grants)")
}

func TestOpsGrantLogic(t *testing.T) {
	var gotOpType, gotAddress string
	mockSDK := &MockSDK{
		GrantOperationPermissionFunc: func(resourceID, operationType, userAddress string) error {
			gotOpType = operationType
			gotAddress = userAddress
			return nil
		},
	}

	a := newTestApp(mockSDK)
	captureOutput(t, func() {
		assert.NoError(t, opsGrantLogic(a, "doc1", "SET_TOTAL", grantTarget{userAddress: "0x1"}))
	})
	assert.Equal(t, "SET_TOTAL", gotOpType)
	assert.Equal(t, "0x1", gotAddress)
}

func TestOpsGrantLogicGroup(t *testing.T) {
	var gotGroupID int
	mockSDK := &MockSDK{
		GrantGroupOperationPermissionFunc: func(resourceID, operationType string, groupID int) error {
			gotGroupID = groupID
			return nil
		},
	}

	a := newTestApp(mockSDK)
	captureOutput(t, func() {
		assert.NoError(t, opsGrantLogic(a, "doc1", "SET_TOTAL", grantTarget{groupID: 3, isGroup: true}))
	})
	assert.Equal(t, 3, gotGroupID)
}

func TestOpsGrantLogicShowsRefreshedState(t *testing.T) {
	// Only the mutated operation is re-fetched, and its printed grant set
	// is the authority's, not an optimistic echo.
	var refetchedOp string
	mockSDK := &MockSDK{
		GrantOperationPermissionFunc: func(resourceID, operationType, userAddress string) error {
			return nil
		},
		GetOperationPermissionsFunc: func(resourceID, operationType string) (switchboard.OperationGrants, error) {
			refetchedOp = operationType
			return switchboard.OperationGrants{
				OperationType: "SET_TOTAL",
				Users: []switchboard.OperationUserGrant{
					{UserAddress: "0x1", GrantedBy: "0xroot"},
				},
			}, nil
		},
	}

	a := newTestApp(mockSDK)
	output := captureOutput(t, func() {
		assert.NoError(t, opsGrantLogic(a, "doc1", "SET_TOTAL", grantTarget{userAddress: "0x1"}))
	})

	assert.Equal(t, "SET_TOTAL", refetchedOp)
	assert.Contains(t, output, "user  0x1 (granted by 0xroot)")
}

func TestOpsRevokeLogicRefetchFailureIsNotFatal(t *testing.T) {
	mockSDK := &MockSDK{
		RevokeOperationPermissionFunc: func(resourceID, operationType, userAddress string) error {
			return nil
		},
		GetOperationPermissionsFunc: func(resourceID, operationType string) (switchboard.OperationGrants, error) {
			return switchboard.OperationGrants{}, errors.New("unreachable")
		},
	}

	a := newTestApp(mockSDK)
	output := captureOutput(t, func() {
		assert.NoError(t, opsRevokeLogic(a, "doc1", "SET_TOTAL", grantTarget{userAddress: "0x1"}))
	})
	assert.Contains(t, output, "Revoked SET_TOTAL from 0x1 on doc1.")
}

func TestOpsRevokeLogic(t *testing.T) {
	var revoked bool
	mockSDK := &MockSDK{
		RevokeOperationPermissionFunc: func(resourceID, operationType, userAddress string) error {
			revoked = true
			return nil
		},
	}

	a := newTestApp(mockSDK)
	captureOutput(t, func() {
		assert.NoError(t, opsRevokeLogic(a, "doc1", "SET_TOTAL", grantTarget{userAddress: "0x1"}))
	})
	assert.True(t, revoked)
}
