package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironboard/internal/model"
)

// Color palette
var (
	// Column colors
	TodoColor       = lipgloss.Color("#4ECDC4")
	InProgressColor = lipgloss.Color("#FFB347")
	DoneColor       = lipgloss.Color("#95E1A3")

	ErrorColor = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	ProjectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	ProjectItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Board columns
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ColumnFocusedStyle = ColumnStyle.
				BorderForeground(Primary)

	TaskItemStyle = lipgloss.NewStyle()

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Background(Surface).
				Bold(true)

	AssigneeStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// StatusColor returns the accent color of a column
func StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusInProgress:
		return InProgressColor
	case model.StatusDone:
		return DoneColor
	default:
		return TodoColor
	}
}

// StatusTitle renders a column heading with its task count
func StatusTitle(s model.Status, count int) string {
	return lipgloss.NewStyle().Bold(true).Foreground(StatusColor(s)).
		Render(s.Label()) + HelpStyle.Render(fmt.Sprintf(" (%d)", count))
}
