package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDashboard renders the landing view with the signed-in profile
func (m Model) renderDashboard() string {
	var b strings.Builder

	title := m.styles.Title.Render("Opsdeck Console")
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.session.User != nil {
		nameLabel := m.styles.Muted.Render("Signed in as: ")
		nameText := m.styles.Status.Render(m.session.User.Name)
		b.WriteString(nameLabel + nameText)
		b.WriteString("\n")

		roleLabel := m.styles.Muted.Render("Role: ")
		roleText := m.styles.Subtitle.Render(string(m.session.User.Role))
		b.WriteString(roleLabel + roleText)
		b.WriteString("\n\n")
	}

	var lines []string
	for i, s := range m.screens {
		key := m.styles.Key.Render(fmt.Sprintf("%d", i+1))
		desc := m.styles.KeyDesc.Render(" " + s.Title())
		lines = append(lines, key+desc)
	}
	if len(lines) > 0 {
		box := m.styles.Border.Render("Screens\n\n" + strings.Join(lines, "\n"))
		b.WriteString(box)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderHelpLine())
	return b.String()
}

// renderList renders the active resource screen
func (m Model) renderList() string {
	screen := m.activeScreen()
	if screen == nil {
		return m.renderDashboard()
	}

	var b strings.Builder

	title := m.styles.Title.Render(screen.Title())
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	q := screen.Query()
	status := fmt.Sprintf("sort: %s %s", q.SortKey, q.SortOrder)
	if q.Search != "" {
		status += fmt.Sprintf("  search: %q", q.Search)
	}
	if q.RoleFilter != "" {
		status += fmt.Sprintf("  role: %s", q.RoleFilter)
	}
	b.WriteString(m.styles.Muted.Render(status))
	if m.loading {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	if m.view == ViewSearch {
		b.WriteString(m.styles.Status.Render("Search: "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}

	if msg := screen.ErrorMessage(); msg != "" {
		errorBox := m.styles.Border.
			BorderForeground(lipgloss.Color("196")). // Red border
			Render(m.styles.Error.Render("✗ ") + msg)
		b.WriteString(errorBox)
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.renderTable(screen))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString(m.styles.Error.Render("✗ " + m.lastError))
		b.WriteString("\n")
	}

	current, total := screen.Pagination()
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Page %d of %d", current, total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderHelpLine())
	return b.String()
}

// renderTable renders the rows of the active screen
func (m Model) renderTable(screen Screen) string {
	var b strings.Builder

	header := make([]string, 0, len(screen.Columns()))
	for _, col := range screen.Columns() {
		header = append(header, fmt.Sprintf("%-24s", col))
	}
	b.WriteString(m.styles.Subtitle.Render(strings.Join(header, "")))
	b.WriteString("\n")

	rows := screen.Rows()
	if len(rows) == 0 {
		b.WriteString(m.styles.Muted.Render("No entries"))
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, fmt.Sprintf("%-24s", truncate(cell, 22)))
		}
		line := strings.Join(cells, "")
		if i == m.selected {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// renderConfirm renders the yes/no prompt for a pending action
func (m Model) renderConfirm() string {
	var b strings.Builder

	b.WriteString(m.styles.Warning.Render("Confirm"))
	b.WriteString("\n\n")

	box := m.styles.Border.
		BorderForeground(lipgloss.Color("226")). // Yellow border
		Render(m.pendingPrompt)
	b.WriteString(box)
	b.WriteString("\n\n")

	yes := m.styles.Key.Render("y") + m.styles.KeyDesc.Render(" confirm")
	no := m.styles.Key.Render("n") + m.styles.KeyDesc.Render(" cancel")
	b.WriteString(yes + "   " + no)
	b.WriteString("\n")

	return b.String()
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	bindings := []struct {
		key  string
		desc string
	}{
		{"tab / shift+tab", "switch screen"},
		{"0-9", "jump to screen"},
		{"j / k", "move selection"},
		{"n / p", "next / previous page"},
		{"s", "cycle sort key (again to flip order)"},
		{"/", "search"},
		{"f", "cycle role filter"},
		{"r", "refresh"},
		{"esc", "back to dashboard"},
		{"q", "quit"},
	}

	for _, binding := range bindings {
		key := m.styles.Key.Render(fmt.Sprintf("%-18s", binding.key))
		b.WriteString(key + m.styles.KeyDesc.Render(binding.desc))
		b.WriteString("\n")
	}

	if screen := m.activeScreen(); screen != nil {
		rows := screen.Rows()
		if m.selected < len(rows) {
			actions := screen.Actions(rows[m.selected])
			if len(actions) > 0 {
				b.WriteString("\n")
				b.WriteString(m.styles.Subtitle.Render("Row actions"))
				b.WriteString("\n")
				for _, action := range actions {
					key := m.styles.Key.Render(fmt.Sprintf("%-18s", action.Key))
					b.WriteString(key + m.styles.KeyDesc.Render(action.Label))
					b.WriteString("\n")
				}
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("Press ? to close help"))
	return b.String()
}

// renderGoodbye renders the final frame before the program exits
func (m Model) renderGoodbye() string {
	if !m.session.IsAuthenticated {
		return m.styles.Warning.Render("Session ended. Run `opsdeck auth login` to sign in again.") + "\n"
	}
	return m.styles.Muted.Render("Bye.") + "\n"
}

// renderTabs renders the tab bar with the active tab highlighted
func (m Model) renderTabs() string {
	tabs := []string{"Dashboard"}
	for _, s := range m.screens {
		tabs = append(tabs, s.Title())
	}

	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if i == m.activeTab {
			rendered = append(rendered, m.styles.Selected.Render(tab))
		} else {
			rendered = append(rendered, m.styles.Muted.Render(tab))
		}
	}

	return strings.Join(rendered, "  ")
}

// renderHelpLine renders the one-line key hint footer
func (m Model) renderHelpLine() string {
	return m.styles.Help.Render("tab: switch • /: search • s: sort • ?: help • q: quit")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
