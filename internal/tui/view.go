package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironboard/internal/model"
)

const sidebarWidth = 24

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeHelp {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHelp(), m.renderStatusBar())
	}

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderBoard())

	switch m.mode {
	case ModeAddTask, ModeAddProject, ModeEditTask, ModeInvite, ModeConfirmDelete:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("IronBoard") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4)) + "\n\n")

	if m.loading {
		b.WriteString(HelpStyle.Render("Loading..."))
	} else if len(m.projects) == 0 {
		b.WriteString(HelpStyle.Render("No projects yet"))
	}

	for i, p := range m.projects {
		cursor := "  "
		style := ProjectItemStyle
		if i == m.projCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = ProjectItemSelectedStyle
			}
		}
		owner := " "
		if p.IsOwner(m.userID) {
			owner = "★"
		}
		line := fmt.Sprintf("%s%s %-12s %3d", cursor, owner, truncate(p.Name, 12), p.TaskCount)
		b.WriteString(style.Render(line) + "\n")
	}

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4)) + "\n")
	b.WriteString(HelpStyle.Render("p new  ★ owner"))

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(b.String())
}

// columnWidth is the inner width of one board column
func (m Model) columnWidth() int {
	w := (m.width-sidebarWidth-2)/len(model.Statuses) - 4
	if w < 12 {
		w = 12
	}
	return w
}

func (m Model) renderBoard() string {
	width := m.width - sidebarWidth - 2
	if m.currentProject() == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(HelpStyle.Render("No project selected. Press 'p' to create one."))
	}
	if m.project == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(HelpStyle.Render("Loading board..."))
	}

	p := m.project
	header := HeaderStyle.Render(p.Name)
	members := fmt.Sprintf("owner %s", p.Owner.Email)
	if n := len(p.Memberships); n > 0 {
		members += fmt.Sprintf(" · %d members", n)
	}
	header += HelpStyle.Render(members)

	colWidth := m.columnWidth()
	// leave room for header, analytics and borders
	colHeight := m.height - 9
	if colHeight < 3 {
		colHeight = 3
	}

	cols := make([]string, 0, len(model.Statuses))
	for i, st := range model.Statuses {
		cols = append(cols, m.renderColumn(i, st, colWidth, colHeight))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return lipgloss.NewStyle().Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, board, m.renderAnalytics()),
	)
}

func (m Model) renderColumn(i int, st model.Status, width, height int) string {
	tasks := m.columns[i]
	focused := m.pane == PaneBoard && m.col == i

	var b strings.Builder
	b.WriteString(StatusTitle(st, len(tasks)) + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(StatusColor(st)).Render(strings.Repeat("─", width)) + "\n")

	if len(tasks) == 0 {
		b.WriteString(HelpStyle.Render("(empty)"))
	}

	// scroll so the selected row stays visible
	visible := height - 2
	start := 0
	if m.rows[i] >= visible {
		start = m.rows[i] - visible + 1
	}

	for j := start; j < len(tasks) && j-start < visible; j++ {
		t := tasks[j]
		style := TaskItemStyle
		cursor := "  "
		if focused && j == m.rows[i] {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}
		line := style.Render(cursor + truncate(t.Title, width-2))
		if t.Assignee != nil {
			line += "\n" + AssigneeStyle.Render("    @"+truncate(t.Assignee.Email, width-5))
		}
		b.WriteString(line + "\n")
	}

	style := ColumnStyle
	if focused {
		style = ColumnFocusedStyle
	}
	return style.Width(width).Height(height).Render(b.String())
}

// renderAnalytics shows the share of tasks in each column
func (m Model) renderAnalytics() string {
	if m.project == nil {
		return ""
	}
	summary := model.Summarize(m.project.Tasks)
	parts := make([]string, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		pct := summary.Percent(st)
		parts = append(parts, fmt.Sprintf("%s %s %3d%%",
			lipgloss.NewStyle().Foreground(StatusColor(st)).Render(st.Label()),
			lipgloss.NewStyle().Foreground(StatusColor(st)).Render(progressBar(pct, 10)),
			pct))
	}
	return " " + strings.Join(parts, "   ") + HelpStyle.Render(fmt.Sprintf("   %d tasks", summary.Total))
}

func (m Model) renderStatusBar() string {
	help := "a:add  e:edit  H/L:move  x:done  d:del  i:invite  r:refresh  ?:help  q:quit"
	if m.message != "" {
		help = m.message
		if strings.HasPrefix(help, "Error:") {
			help = ErrorStyle.Render(help)
		}
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	var title string
	switch m.mode {
	case ModeAddTask:
		title = "Add Task"
		if p := m.currentProject(); p != nil {
			title = fmt.Sprintf("Add Task to: %s", p.Name)
		}
	case ModeAddProject:
		title = "New Project"
	case ModeEditTask:
		title = "Edit Task"
	case ModeInvite:
		title = "Invite Member"
		if p := m.currentProject(); p != nil {
			title = fmt.Sprintf("Invite to: %s", p.Name)
		}
	case ModeConfirmDelete:
		t := m.currentTask()
		if t == nil {
			return ""
		}
		content := lipgloss.NewStyle().Bold(true).Render("Delete Task") + "\n\n"
		content += truncate(t.Title, 50) + "\n\n"
		content += HelpStyle.Render("y:delete  any other key:cancel")
		return ModalStyle.Render(content)
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───────╮
│                              │
│  Navigation                  │
│  ──────────                  │
│  j/k    Move down / up       │
│  h/l    Previous / next col  │
│  Tab    Switch pane          │
│                              │
│  Tasks                       │
│  ─────                       │
│  a      Add task             │
│  e      Edit title           │
│  H/L    Move task left/right │
│  x      Mark done            │
│  d      Delete               │
│                              │
│  Projects                    │
│  ────────                    │
│  p      New project          │
│  i      Invite member        │
│  r      Refresh              │
│                              │
│  ?      Toggle help          │
│  q      Quit                 │
│                              │
╰──────────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
