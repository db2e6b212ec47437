// Package dashboard is the interactive permission editor: a resource
// tree on the left, the selected resource's grant state on the right,
// kept in sync with the switchboard by periodic polling. All state
// changes flow through the bubbletea update loop; fetched results are
// whole-snapshot replacements, never local merges.
package dashboard

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/powerhouse-inc/auth-editor/internal/app"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

// pollInterval is how often the dashboard re-synchronizes with the
// switchboard while idle.
const pollInterval = 10 * time.Second

// formKind identifies what the text input at the bottom of the screen is
// collecting.
type formKind int

const (
	formNone formKind = iota
	// formGrant collects "<address> <level>" or "#<groupId> <level>".
	formGrant
	// formRevoke collects "<address>" or "#<groupId>".
	formRevoke
	// formOpGrant collects "<operationType> <address>" or
	// "<operationType> #<groupId>".
	formOpGrant
	// formOpRevoke has the same shape as formOpGrant.
	formOpRevoke
)

// row is one visible line of the flattened tree pane.
type row struct {
	node  *switchboard.ResourceNode
	depth int
}

// treeMsg delivers a full tree snapshot.
type treeMsg struct {
	tree []*switchboard.ResourceNode
	err  error
}

// groupsMsg delivers the group directory. Failure degrades to the
// previous snapshot.
type groupsMsg struct {
	groups []switchboard.Group
	err    error
}

// identityMsg delivers the caller's resolved role. Failure falls back to
// a guest posture.
type identityMsg struct {
	identity switchboard.Identity
	err      error
}

// accessMsg delivers the per-resource grants for one selection
// generation. Results from a superseded generation are dropped.
type accessMsg struct {
	gen    int
	access switchboard.AccessView
	err    error
}

// opGrantsMsg delivers the per-operation grants for one selection
// generation.
type opGrantsMsg struct {
	gen    int
	grants []switchboard.OperationGrants
	err    error
}

// mutationMsg reports an asynchronous grant/revoke completion. A
// successful mutation triggers a targeted re-fetch; the fetched state is
// the only source of truth for what changed.
type mutationMsg struct {
	err error
}

// pollTickMsg drives the periodic re-synchronization.
type pollTickMsg struct{}

// Model is the dashboard's complete state.
type Model struct {
	sdk         app.SDK
	userAddress string

	tree     []*switchboard.ResourceNode
	rows     []row
	cursor   int
	expanded map[string]bool

	groups   []switchboard.Group
	identity switchboard.Identity

	selectedID string
	selGen     int
	access     *switchboard.AccessView
	opGrants   []switchboard.OperationGrants

	form  formKind
	input textinput.Model

	loadingTree bool
	loadingPane bool
	status      string

	width  int
	height int
}

// NewModel creates a dashboard over the given SDK. userAddress is the
// caller's address for role resolution; empty resolves to guest.
func NewModel(sdk app.SDK, userAddress string) Model {
	input := textinput.New()
	input.CharLimit = 120
	return Model{
		sdk:         sdk,
		userAddress: userAddress,
		expanded:    make(map[string]bool),
		input:       input,
		loadingTree: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchTree(),
		m.fetchGroups(),
		m.fetchIdentity(),
		schedulePoll(),
	)
}

func schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m Model) fetchTree() tea.Cmd {
	sdk := m.sdk
	return func() tea.Msg {
		tree, err := sdk.FetchTree(context.Background(), nil)
		return treeMsg{tree: tree, err: err}
	}
}

func (m Model) fetchGroups() tea.Cmd {
	sdk := m.sdk
	return func() tea.Msg {
		groups, err := sdk.ListGroups(context.Background())
		return groupsMsg{groups: groups, err: err}
	}
}

func (m Model) fetchIdentity() tea.Cmd {
	sdk := m.sdk
	address := m.userAddress
	return func() tea.Msg {
		identity, err := sdk.WhoAmI(context.Background(), address)
		return identityMsg{identity: identity, err: err}
	}
}

// fetchPanes re-fetches both permission panes for the current selection,
// stamped with the current generation.
func (m Model) fetchPanes() tea.Cmd {
	if m.selectedID == "" {
		return nil
	}
	sdk := m.sdk
	gen := m.selGen
	resourceID := m.selectedID
	isDrive := false
	if node := switchboard.FindNode(m.tree, resourceID); node != nil {
		isDrive = node.Kind == switchboard.KindDrive
	}

	fetchAccess := func() tea.Msg {
		access, err := sdk.GetResourceAccess(context.Background(), resourceID)
		return accessMsg{gen: gen, access: access, err: err}
	}
	fetchOps := func() tea.Msg {
		grants, err := sdk.FetchOperationGrants(context.Background(), resourceID, sdk.OperationSource(isDrive))
		return opGrantsMsg{gen: gen, grants: grants, err: err}
	}
	return tea.Batch(fetchAccess, fetchOps)
}

func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case treeMsg:
		m.loadingTree = false
		if msg.err != nil {
			m.status = "tree refresh failed: " + msg.err.Error()
			return m, nil
		}
		firstLoad := m.tree == nil
		m.tree = msg.tree
		if firstLoad {
			// Drives start expanded, everything below starts collapsed.
			for _, drive := range m.tree {
				m.expanded[drive.ID] = true
			}
		}
		// The selected node may have disappeared from the new snapshot.
		if m.selectedID != "" && switchboard.FindNode(m.tree, m.selectedID) == nil {
			m.clearSelection()
		}
		m.rebuildRows()
		return m, nil

	case groupsMsg:
		// Best-effort lookup: keep the previous snapshot on failure.
		if msg.err == nil {
			m.groups = msg.groups
		}
		return m, nil

	case identityMsg:
		if msg.err != nil {
			// Least-privilege fallback: a failed role lookup renders the
			// guest layout, never an elevated one.
			m.identity = switchboard.Identity{Address: m.userAddress, IsGuest: true}
			return m, nil
		}
		m.identity = msg.identity
		return m, nil

	case accessMsg:
		if msg.gen != m.selGen {
			return m, nil
		}
		if msg.err != nil {
			m.loadingPane = false
			m.status = "access fetch failed: " + msg.err.Error()
			return m, nil
		}
		m.loadingPane = false
		access := msg.access
		m.access = &access
		return m, nil

	case opGrantsMsg:
		if msg.gen != m.selGen {
			return m, nil
		}
		if msg.err != nil {
			m.status = "operation fetch failed: " + msg.err.Error()
			return m, nil
		}
		m.opGrants = msg.grants
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			// The pane keeps showing the last fetched state; nothing was
			// applied locally.
			m.status = "mutation failed: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.selGen++
		return m, tea.Batch(m.fetchPanes(), m.fetchGroups())

	case pollTickMsg:
		m.selGen++
		return m, tea.Batch(
			m.fetchTree(),
			m.fetchGroups(),
			m.fetchPanes(),
			schedulePoll(),
		)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != formNone {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case "right", "l":
		if node := m.cursorNode(); node != nil && node.IsContainer() {
			m.expanded[node.ID] = true
			m.rebuildRows()
		}
		return m, nil

	case "left", "h":
		if node := m.cursorNode(); node != nil && node.IsContainer() {
			delete(m.expanded, node.ID)
			m.rebuildRows()
		}
		return m, nil

	case "enter", " ":
		return m.toggleSelection()

	case "g":
		if m.selectedID != "" {
			return m.openForm(formGrant, "address LEVEL, or #groupId LEVEL"), nil
		}
		return m, nil

	case "r":
		if m.selectedID != "" {
			return m.openForm(formRevoke, "address, or #groupId"), nil
		}
		return m, nil

	case "o":
		if m.selectedID != "" {
			return m.openForm(formOpGrant, "OP_TYPE address, or OP_TYPE #groupId"), nil
		}
		return m, nil

	case "O":
		if m.selectedID != "" {
			return m.openForm(formOpRevoke, "OP_TYPE address, or OP_TYPE #groupId"), nil
		}
		return m, nil

	case "G":
		return m, m.fetchGroups()

	case "R":
		m.selGen++
		return m, tea.Batch(m.fetchTree(), m.fetchGroups(), m.fetchPanes())
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = formNone
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case "enter":
		cmd := m.submitForm()
		m.form = formNone
		m.input.Reset()
		m.input.Blur()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openForm(kind formKind, placeholder string) Model {
	m.form = kind
	m.status = ""
	m.input.Placeholder = placeholder
	m.input.Focus()
	return *m
}

// toggleSelection selects the cursor node, or deselects when it is
// already selected. Either way both permission panes are cleared
// immediately; stale content never survives a selection change.
func (m Model) toggleSelection() (tea.Model, tea.Cmd) {
	node := m.cursorNode()
	if node == nil {
		return m, nil
	}

	if m.selectedID == node.ID {
		m.clearSelection()
		return m, nil
	}

	m.selectedID = node.ID
	m.selGen++
	m.access = nil
	m.opGrants = nil
	m.loadingPane = true
	m.status = ""
	return m, m.fetchPanes()
}

func (m *Model) clearSelection() {
	m.selectedID = ""
	m.selGen++
	m.access = nil
	m.opGrants = nil
	m.loadingPane = false
}

// submitForm parses the input line and launches the matching mutation.
// Parse failures surface in the status bar without any network call.
func (m *Model) submitForm() tea.Cmd {
	fields := strings.Fields(m.input.Value())
	sdk := m.sdk
	resourceID := m.selectedID

	switch m.form {
	case formGrant:
		if len(fields) != 2 {
			m.status = "expected: address LEVEL, or #groupId LEVEL"
			return nil
		}
		level := switchboard.PermissionLevel(strings.ToUpper(fields[1]))
		if !level.Valid() {
			m.status = "level must be READ, WRITE, or ADMIN"
			return nil
		}
		if groupID, ok := parseGroupRef(fields[0]); ok {
			return func() tea.Msg {
				return mutationMsg{err: sdk.GrantGroupPermission(context.Background(), resourceID, groupID, level)}
			}
		}
		address := fields[0]
		return func() tea.Msg {
			return mutationMsg{err: sdk.GrantUserPermission(context.Background(), resourceID, address, level)}
		}

	case formRevoke:
		if len(fields) != 1 {
			m.status = "expected: address, or #groupId"
			return nil
		}
		if groupID, ok := parseGroupRef(fields[0]); ok {
			return func() tea.Msg {
				return mutationMsg{err: sdk.RevokeGroupPermission(context.Background(), resourceID, groupID)}
			}
		}
		address := fields[0]
		return func() tea.Msg {
			return mutationMsg{err: sdk.RevokeUserPermission(context.Background(), resourceID, address)}
		}

	case formOpGrant, formOpRevoke:
		if len(fields) != 2 {
			m.status = "expected: OP_TYPE address, or OP_TYPE #groupId"
			return nil
		}
		opType := fields[0]
		grant := m.form == formOpGrant
		if groupID, ok := parseGroupRef(fields[1]); ok {
			return func() tea.Msg {
				if grant {
					return mutationMsg{err: sdk.GrantGroupOperationPermission(context.Background(), resourceID, opType, groupID)}
				}
				return mutationMsg{err: sdk.RevokeGroupOperationPermission(context.Background(), resourceID, opType, groupID)}
			}
		}
		address := fields[1]
		return func() tea.Msg {
			if grant {
				return mutationMsg{err: sdk.GrantOperationPermission(context.Background(), resourceID, opType, address)}
			}
			return mutationMsg{err: sdk.RevokeOperationPermission(context.Background(), resourceID, opType, address)}
		}
	}

	return nil
}

// parseGroupRef recognizes the "#<id>" group target syntax.
func parseGroupRef(field string) (int, bool) {
	if !strings.HasPrefix(field, "#") {
		return 0, false
	}
	id, err := strconv.Atoi(field[1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

func (m *Model) cursorNode() *switchboard.ResourceNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// rebuildRows re-flattens the tree according to the expanded set and
// clamps the cursor to the new row count.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	for _, drive := range m.tree {
		m.appendRows(drive, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) appendRows(node *switchboard.ResourceNode, depth int) {
	m.rows = append(m.rows, row{node: node, depth: depth})
	if !m.expanded[node.ID] {
		return
	}
	for _, child := range node.Children {
		m.appendRows(child, depth+1)
	}
}
