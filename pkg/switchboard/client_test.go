package switchboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:       5 * time.Second,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 5 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClientWithConfig(context.Background(), server.URL, nil, nil, nil, testHTTPConfig())
	return client, server
}

func decodeRequest(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestClientStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		expectedError error
	}{
		{
			name:          "401 Unauthorized",
			statusCode:    http.StatusUnauthorized,
			expectedError: ErrAuthRequired,
		},
		{
			name:          "403 Forbidden",
			statusCode:    http.StatusForbidden,
			expectedError: ErrAuthRequired,
		},
		{
			name:          "404 Not Found",
			statusCode:    http.StatusNotFound,
			expectedError: ErrRejected,
		},
		{
			name:          "429 Too Many Requests",
			statusCode:    http.StatusTooManyRequests,
			expectedError: ErrRetryLater,
		},
		{
			name:          "500 Internal Server Error",
			statusCode:    http.StatusInternalServerError,
			expectedError: ErrRetryLater,
		},
		{
			name:          "503 Service Unavailable",
			statusCode:    http.StatusServiceUnavailable,
			expectedError: ErrRetryLater,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			_, err := client.WhoAmI(context.Background(), "0x1")
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestClientGraphQLErrorsAreRejections(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": null, "errors": [{"message": "group not found"}, {"message": "access denied"}]}`))
	})

	_, err := client.ListGroups(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	// Authority messages pass through verbatim, joined.
	assert.Contains(t, err.Error(), "group not found; access denied")
}

func TestClientNullDataIsDecodingFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null}`))
	})

	_, err := client.ListDrives(context.Background())
	assert.ErrorIs(t, err, ErrDecodingFailed)
}

func TestClientMalformedJSONIsDecodingFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {`))
	})

	_, err := client.ListDrives(context.Background())
	assert.ErrorIs(t, err, ErrDecodingFailed)
}

func TestClientRetriesServerFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data": {"driveDocuments": [{"id": "d1", "name": "Main"}]}}`))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RetryAttempts = 3
	client := NewClientWithConfig(context.Background(), server.URL, nil, nil, nil, cfg)

	drives, err := client.ListDrives(context.Background())
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "d1", drives[0].ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("malformed query"))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RetryAttempts = 3
	client := NewClientWithConfig(context.Background(), server.URL, nil, nil, nil, cfg)

	_, err := client.ListDrives(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientMutationsRequireCredential(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx := context.Background()
	mutations := map[string]func() error{
		"grant user":      func() error { return client.GrantUserPermission(ctx, "doc1", "0x1", LevelRead) },
		"revoke user":     func() error { return client.RevokeUserPermission(ctx, "doc1", "0x1") },
		"grant group":     func() error { return client.GrantGroupPermission(ctx, "doc1", 1, LevelWrite) },
		"revoke group":    func() error { return client.RevokeGroupPermission(ctx, "doc1", 1) },
		"delete group":    func() error { return client.DeleteGroup(ctx, 1) },
		"add member":      func() error { return client.AddGroupMember(ctx, "0x1", 1) },
		"remove member":   func() error { return client.RemoveGroupMember(ctx, "0x1", 1) },
		"grant op":        func() error { return client.GrantOperationPermission(ctx, "doc1", "ADD_FILE", "0x1") },
		"revoke op":       func() error { return client.RevokeOperationPermission(ctx, "doc1", "ADD_FILE", "0x1") },
		"grant group op":  func() error { return client.GrantGroupOperationPermission(ctx, "doc1", "ADD_FILE", 1) },
		"revoke group op": func() error { return client.RevokeGroupOperationPermission(ctx, "doc1", "ADD_FILE", 1) },
		"self grants":     func() error { _, err := client.UserDocumentPermissions(ctx); return err },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, mutate(), ErrAuthRequired)
		})
	}
	_, err := client.CreateGroup(ctx, "Editors", "")
	assert.ErrorIs(t, err, ErrAuthRequired)

	// Mutations without a credential never reach the network.
	assert.Equal(t, int32(0), calls.Load())
}

func TestClientNoEndpoint(t *testing.T) {
	client := NewClientWithConfig(context.Background(), "", nil, nil, nil, testHTTPConfig())

	_, err := client.ListDrives(context.Background())
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestWhoAmI(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "whoami")
		assert.Equal(t, "0xabc", req.Variables["address"])
		w.Write([]byte(`{"data": {"whoami": {"address": "0xabc", "isAdmin": true, "isUser": true, "isGuest": false}}}`))
	})

	identity, err := client.WhoAmI(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", identity.Address)
	assert.True(t, identity.IsAdmin)
	assert.False(t, identity.IsGuest)
}

func TestGetResourceAccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "doc1", req.Variables["documentId"])
		w.Write([]byte(`{"data": {"documentAccess": {
			"documentId": "doc1",
			"permissions": [{"userAddress": "0x1", "permission": "WRITE", "grantedBy": "0xroot"}],
			"groupPermissions": [{"groupId": 7, "group": {"id": 7, "name": "Editors"}, "permission": "READ", "grantedBy": "0xroot"}]
		}}}`))
	})

	access, err := client.GetResourceAccess(context.Background(), "doc1")
	require.NoError(t, err)
	require.Len(t, access.UserGrants, 1)
	assert.Equal(t, LevelWrite, access.UserGrants[0].Level)
	require.Len(t, access.GroupGrants, 1)
	assert.Equal(t, 7, access.GroupGrants[0].GroupID)
	assert.Equal(t, "Editors", access.GroupGrants[0].Group.Name)
}

func TestUserGroups(t *testing.T) {
	description := "Content editors"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "userGroups")
		assert.Equal(t, "0xabc", req.Variables["userAddress"])
		w.Write([]byte(`{"data": {"userGroups": [
			{"id": 7, "name": "Editors", "description": "` + description + `", "members": ["0xabc", "0x2"]}
		]}}`))
	})

	groups, err := client.UserGroups(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 7, groups[0].ID)
	assert.Equal(t, "Editors", groups[0].Name)
	assert.Equal(t, []string{"0xabc", "0x2"}, groups[0].Members)
}

func TestUserDocumentPermissions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Contains(t, req.Query, "userDocumentPermissions")
		w.Write([]byte(`{"data": {"userDocumentPermissions": [
			{"documentId": "doc1", "permission": "WRITE", "grantedBy": "0xroot", "createdAt": "2026-01-01"}
		]}}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(context.Background(), server.URL,
		&Token{AccessToken: "tok"}, nil, nil, testHTTPConfig())

	grants, err := client.UserDocumentPermissions(context.Background())
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "doc1", grants[0].DocumentID)
	assert.Equal(t, LevelWrite, grants[0].Level)
}

func TestUserDocumentPermissionsUnknownCallerMeansEmpty(t *testing.T) {
	// A switchboard with no record of the caller fails the self lookup
	// with a toLowerCase error; that reads as "no grants", not a failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null, "errors": [{"message": "Cannot read properties of null (reading 'toLowerCase')"}]}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(context.Background(), server.URL,
		&Token{AccessToken: "tok"}, nil, nil, testHTTPConfig())

	grants, err := client.UserDocumentPermissions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestCreateGroupSendsNullForEmptyDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		json.NewDecoder(r.Body).Decode(&req)
		description, present := req.Variables["description"]
		assert.True(t, present)
		assert.Nil(t, description)
		w.Write([]byte(`{"data": {"createGroup": {"id": 1, "name": "Editors", "members": [], "createdAt": "2026-01-01"}}}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(context.Background(), server.URL,
		&Token{AccessToken: "tok"}, nil, nil, testHTTPConfig())

	group, err := client.CreateGroup(context.Background(), "Editors", "")
	require.NoError(t, err)
	assert.Equal(t, 1, group.ID)
}

func TestPermissionLevelOrdering(t *testing.T) {
	assert.True(t, LevelAdmin.AtLeast(LevelWrite))
	assert.True(t, LevelWrite.AtLeast(LevelRead))
	assert.True(t, LevelRead.AtLeast(LevelRead))
	assert.False(t, LevelRead.AtLeast(LevelWrite))
	assert.False(t, LevelWrite.AtLeast(LevelAdmin))

	assert.True(t, LevelAdmin.Valid())
	assert.False(t, PermissionLevel("OWNER").Valid())
	assert.False(t, PermissionLevel("").Valid())
}
