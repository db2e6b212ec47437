package switchboard

// PermissionLevel is the ordered privilege attached to a resource grant.
// READ < WRITE < ADMIN; there are no compound levels.
type PermissionLevel string

const (
	LevelRead  PermissionLevel = "READ"
	LevelWrite PermissionLevel = "WRITE"
	LevelAdmin PermissionLevel = "ADMIN"
)

var levelRank = map[PermissionLevel]int{
	LevelRead:  1,
	LevelWrite: 2,
	LevelAdmin: 3,
}

// Valid reports whether l is one of the three defined levels.
func (l PermissionLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l grants at least the privilege of other.
func (l PermissionLevel) AtLeast(other PermissionLevel) bool {
	return levelRank[l] >= levelRank[other]
}

// NodeKind discriminates the three resource kinds in the managed hierarchy.
type NodeKind string

const (
	KindDrive  NodeKind = "drive"
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
)

// DriveSummary is the shallow drive record returned by the drive list query.
type DriveSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawNode is the flat node record inside a drive's state, exactly as the
// authority returns it. ParentFolder is nil for root-level nodes.
type RawNode struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	DocumentType string  `json:"documentType"`
	ParentFolder *string `json:"parentFolder"`
}

// DriveDetail carries a drive's identity plus its flat node list.
// A drive whose detail fetch failed is represented with an empty Nodes
// slice so it still appears in the reconstructed tree.
type DriveDetail struct {
	ID    string
	Name  string
	Nodes []RawNode
}

// ResourceNode is one node of the reconstructed resource tree. Identity is
// carried by ID only; the whole tree is rebuilt on every refresh.
type ResourceNode struct {
	ID           string
	Name         string
	Kind         NodeKind
	DocumentType string // file nodes only
	ParentID     string // empty for drives and root-level nodes
	Children     []*ResourceNode
}

// IsContainer reports whether the node can hold children.
func (n *ResourceNode) IsContainer() bool {
	return n.Kind == KindDrive || n.Kind == KindFolder
}

// Group is a named set of user addresses in the authority's directory.
type Group struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Members     []string `json:"members"`
	CreatedAt   string   `json:"createdAt"`
}

// UserGrant is a per-resource privilege grant targeting a single user.
type UserGrant struct {
	UserAddress string          `json:"userAddress"`
	Level       PermissionLevel `json:"permission"`
	GrantedBy   string          `json:"grantedBy"`
}

// GroupGrant is a per-resource privilege grant targeting a group.
type GroupGrant struct {
	GroupID int `json:"groupId"`
	Group   struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"group"`
	Level     PermissionLevel `json:"permission"`
	GrantedBy string          `json:"grantedBy"`
}

// AccessView is the full per-resource grant state: the user and group
// tables are independent, and at most one grant exists per target.
type AccessView struct {
	ResourceID  string       `json:"documentId"`
	UserGrants  []UserGrant  `json:"permissions"`
	GroupGrants []GroupGrant `json:"groupPermissions"`
}

// OperationUserGrant marks a user as allowed to invoke one operation.
// Operation grants are binary; there is no level.
type OperationUserGrant struct {
	UserAddress string `json:"userAddress"`
	GrantedBy   string `json:"grantedBy"`
}

// OperationGroupGrant marks a group as allowed to invoke one operation.
type OperationGroupGrant struct {
	GroupID int `json:"groupId"`
	Group   struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"group"`
	GrantedBy string `json:"grantedBy"`
}

// OperationGrants is the invocation-rights state for one operation type
// on one resource.
type OperationGrants struct {
	OperationType string                `json:"operationType"`
	Users         []OperationUserGrant  `json:"userPermissions"`
	Groups        []OperationGroupGrant `json:"groupPermissions"`
}

// UserDocumentPermission is one of the caller's own per-resource grants,
// as returned by the self-lookup query. The target is implied by the
// bearer credential.
type UserDocumentPermission struct {
	DocumentID string          `json:"documentId"`
	Level      PermissionLevel `json:"permission"`
	GrantedBy  string          `json:"grantedBy"`
	CreatedAt  string          `json:"createdAt"`
}

// Identity is the caller's system-wide role as the authority reports it.
// The flags are advisory display context only; enforcement stays remote.
type Identity struct {
	Address string `json:"address"`
	IsAdmin bool   `json:"isAdmin"`
	IsUser  bool   `json:"isUser"`
	IsGuest bool   `json:"isGuest"`
}
