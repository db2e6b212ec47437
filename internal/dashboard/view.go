package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/powerhouse-inc/auth-editor/internal/ui"
	"github.com/powerhouse-inc/auth-editor/pkg/switchboard"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	paneStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	left := paneStyle.Render(m.viewTree())
	right := paneStyle.Render(m.viewDetail())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	if m.form != formNone {
		b.WriteString(m.viewForm())
		b.WriteString("\n")
	}
	b.WriteString(m.viewStatus())

	return b.String()
}

func (m Model) viewHeader() string {
	role := ui.RoleLabel(m.identity)
	title := headerStyle.Render("Access Control Dashboard")
	who := dimStyle.Render(fmt.Sprintf("%s (%s)", m.identity.Address, role))
	return title + "  " + who
}

func (m Model) viewTree() string {
	if m.loadingTree {
		return dimStyle.Render("Loading drives...")
	}
	if len(m.rows) == 0 {
		return dimStyle.Render("No drives.")
	}

	var b strings.Builder
	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + nodeLabel(r.node)
		switch {
		case i == m.cursor && r.node.ID == m.selectedID:
			line = cursorStyle.Render("> ") + selectedStyle.Render(line)
		case i == m.cursor:
			line = cursorStyle.Render("> ") + line
		case r.node.ID == m.selectedID:
			line = "  " + selectedStyle.Render(line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func nodeLabel(node *switchboard.ResourceNode) string {
	switch node.Kind {
	case switchboard.KindDrive:
		return "▣ " + node.Name
	case switchboard.KindFolder:
		return "▸ " + node.Name
	default:
		return "  " + node.Name
	}
}

// viewDetail renders the right pane: grants for the selection, plus the
// group directory. Guests see the directory only.
func (m Model) viewDetail() string {
	var b strings.Builder

	if m.selectedID == "" {
		b.WriteString(dimStyle.Render("Select a resource to view its grants."))
	} else if m.loadingPane && m.access == nil {
		b.WriteString(dimStyle.Render("Loading grants..."))
	} else {
		b.WriteString(m.viewGrants())
	}

	b.WriteString("\n\n")
	b.WriteString(m.viewGroups())
	return b.String()
}

func (m Model) viewGrants() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Grants"))
	b.WriteString("\n")
	if m.access == nil || (len(m.access.UserGrants) == 0 && len(m.access.GroupGrants) == 0) {
		b.WriteString(dimStyle.Render("  none"))
		b.WriteString("\n")
	} else {
		for _, grant := range m.access.UserGrants {
			b.WriteString(fmt.Sprintf("  %s  %s\n", grant.UserAddress, grant.Level))
		}
		for _, grant := range m.access.GroupGrants {
			b.WriteString(fmt.Sprintf("  #%d %s  %s\n", grant.GroupID, grant.Group.Name, grant.Level))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Operations"))
	b.WriteString("\n")
	if len(m.opGrants) == 0 {
		b.WriteString(dimStyle.Render("  none"))
		return b.String()
	}
	for _, grant := range m.opGrants {
		b.WriteString("  " + grant.OperationType + "\n")
		for _, user := range grant.Users {
			b.WriteString("    " + user.UserAddress + "\n")
		}
		for _, group := range grant.Groups {
			b.WriteString(fmt.Sprintf("    #%d %s\n", group.GroupID, group.Group.Name))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewGroups() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Groups"))
	b.WriteString("\n")
	if len(m.groups) == 0 {
		b.WriteString(dimStyle.Render("  none"))
		return b.String()
	}
	for _, group := range m.groups {
		b.WriteString(fmt.Sprintf("  #%d %s (%d members)\n", group.ID, group.Name, len(group.Members)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewForm() string {
	var label string
	switch m.form {
	case formGrant:
		label = "grant"
	case formRevoke:
		label = "revoke"
	case formOpGrant:
		label = "grant operation"
	case formOpRevoke:
		label = "revoke operation"
	}
	return sectionStyle.Render(label+": ") + m.input.View()
}

func (m Model) viewStatus() string {
	if m.status != "" {
		return errorStyle.Render(m.status)
	}
	return dimStyle.Render("enter: select  g: grant  r: revoke  o/O: op grant/revoke  G: groups  R: refresh  q: quit")
}
