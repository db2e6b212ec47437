package switchboard

import (
	"context"
	"sort"
	"sync"
)

// operationLogPrefix bounds how much of a drive's operation history is
// scanned for operation type names. It is a prefix, not the full log.
const operationLogPrefix = 200

const driveOpsQuery = `query DriveOps($idOrSlug: String!) {
  driveDocument(idOrSlug: $idOrSlug) {
    operations(skip: 0, first: 200) { type }
  }
}`

const documentOpsQuery = `query DocOps($documentId: String!) {
  documentOperations(documentId: $documentId) {
    documentId
    documentType
    operations { name module scope }
  }
}`

const opPermsQuery = `query OpPerms($documentId: String!, $operationType: String!) {
  operationPermissions(documentId: $documentId, operationType: $operationType) {
    operationType
    userPermissions { userAddress grantedBy }
    groupPermissions { groupId group { id name } grantedBy }
  }
}`

const grantOpUserMutation = `mutation GrantOp($documentId: String!, $operationType: String!, $userAddress: String!) {
  grantOperationPermission(documentId: $documentId, operationType: $operationType, userAddress: $userAddress) {
    documentId operationType userAddress
  }
}`

const revokeOpUserMutation = `mutation RevokeOp($documentId: String!, $operationType: String!, $userAddress: String!) {
  revokeOperationPermission(documentId: $documentId, operationType: $operationType, userAddress: $userAddress)
}`

const grantOpGroupMutation = `mutation GrantGroupOp($documentId: String!, $operationType: String!, $groupId: Int!) {
  grantGroupOperationPermission(documentId: $documentId, operationType: $operationType, groupId: $groupId) {
    documentId operationType groupId
  }
}`

const revokeOpGroupMutation = `mutation RevokeGroupOp($documentId: String!, $operationType: String!, $groupId: Int!) {
  revokeGroupOperationPermission(documentId: $documentId, operationType: $operationType, groupId: $groupId)
}`

// OperationNameSource discovers the set of operation names that can be
// permission-gated on a resource. Drives harvest names from their
// operation log; typed documents use their model's declared operation
// set. Callers pick a source once instead of branching on resource kind
// at each call site.
type OperationNameSource interface {
	OperationNames(ctx context.Context, resourceID string) ([]string, error)
}

// DriveLogSource derives operation names from the observed operation log
// of a drive (bounded to the first operationLogPrefix entries).
type DriveLogSource struct {
	client *Client
}

// OperationNames returns the deduplicated, sorted operation type names
// seen in the drive's log prefix.
func (s *DriveLogSource) OperationNames(ctx context.Context, driveID string) ([]string, error) {
	var out struct {
		DriveDocument struct {
			Operations []struct {
				Type string `json:"type"`
			} `json:"operations"`
		} `json:"driveDocument"`
	}
	err := s.client.do(ctx, "driveOperations", driveOpsQuery, map[string]any{"idOrSlug": driveID}, &out)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, op := range out.DriveDocument.Operations {
		if op.Type == "" || seen[op.Type] {
			continue
		}
		seen[op.Type] = true
		names = append(names, op.Type)
	}
	sort.Strings(names)
	return names, nil
}

// DocumentModelSource derives operation names from the declared operation
// set of the document's type.
type DocumentModelSource struct {
	client *Client
}

// OperationNames returns the sorted declared operation names of the
// document's model.
func (s *DocumentModelSource) OperationNames(ctx context.Context, documentID string) ([]string, error) {
	var out struct {
		DocumentOperations struct {
			DocumentType string `json:"documentType"`
			Operations   []struct {
				Name   string `json:"name"`
				Module string `json:"module"`
				Scope  string `json:"scope"`
			} `json:"operations"`
		} `json:"documentOperations"`
	}
	err := s.client.do(ctx, "documentOperations", documentOpsQuery, map[string]any{"documentId": documentID}, &out)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, op := range out.DocumentOperations.Operations {
		if op.Name != "" {
			names = append(names, op.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// OperationSource returns the appropriate name source for a resource:
// log-derived for drives, model-derived for everything else.
func (c *Client) OperationSource(isDrive bool) OperationNameSource {
	if isDrive {
		return &DriveLogSource{client: c}
	}
	return &DocumentModelSource{client: c}
}

// GetOperationPermissions retrieves the grant state for one operation
// type on one resource.
func (c *Client) GetOperationPermissions(ctx context.Context, resourceID, operationType string) (OperationGrants, error) {
	var out struct {
		OperationPermissions OperationGrants `json:"operationPermissions"`
	}
	variables := map[string]any{"documentId": resourceID, "operationType": operationType}
	if err := c.do(ctx, "operationPermissions", opPermsQuery, variables, &out); err != nil {
		return OperationGrants{}, err
	}
	return out.OperationPermissions, nil
}

// FetchOperationGrants discovers the operation-name set via source and
// fetches the grant state for every name concurrently. A failed per-name
// fetch degrades to an empty grant set for that name instead of failing
// the listing. Results follow the discovered name order.
func (c *Client) FetchOperationGrants(ctx context.Context, resourceID string, source OperationNameSource) ([]OperationGrants, error) {
	names, err := source.OperationNames(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	grants := make([]OperationGrants, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			g, err := c.GetOperationPermissions(ctx, resourceID, name)
			if err != nil {
				c.logger.Warn("operation permission fetch failed", "operation", name, "error", err)
				g = OperationGrants{OperationType: name}
			}
			grants[i] = g
		}(i, name)
	}
	wg.Wait()

	return grants, nil
}

// GrantOperationPermission allows a user to invoke one operation on one
// resource.
func (c *Client) GrantOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId":    resourceID,
		"operationType": operationType,
		"userAddress":   userAddress,
	}
	return c.do(ctx, "grantOperationPermission", grantOpUserMutation, variables, nil)
}

// RevokeOperationPermission removes a user's invocation right.
func (c *Client) RevokeOperationPermission(ctx context.Context, resourceID, operationType, userAddress string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId":    resourceID,
		"operationType": operationType,
		"userAddress":   userAddress,
	}
	return c.do(ctx, "revokeOperationPermission", revokeOpUserMutation, variables, nil)
}

// GrantGroupOperationPermission allows a group to invoke one operation on
// one resource.
func (c *Client) GrantGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId":    resourceID,
		"operationType": operationType,
		"groupId":       groupID,
	}
	return c.do(ctx, "grantGroupOperationPermission", grantOpGroupMutation, variables, nil)
}

// RevokeGroupOperationPermission removes a group's invocation right.
func (c *Client) RevokeGroupOperationPermission(ctx context.Context, resourceID, operationType string, groupID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	variables := map[string]any{
		"documentId":    resourceID,
		"operationType": operationType,
		"groupId":       groupID,
	}
	return c.do(ctx, "revokeGroupOperationPermission", revokeOpGroupMutation, variables, nil)
}
