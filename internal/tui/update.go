package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
)

// Init loads the sidebar
func (m Model) Init() tea.Cmd {
	return loadProjects(m.backend)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.setProjects(msg.projects)
		if p := m.currentProject(); p != nil {
			return m, loadBoard(m.backend, p.ID)
		}
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.setBoard(msg.project)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.message = msg.status
		}
		if msg.selectID != "" {
			m.preferred = msg.selectID
		}
		return m, loadProjects(m.backend)

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask, ModeAddProject, ModeEditTask, ModeInvite:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneBoard
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Enter):
		if m.pane == PaneSidebar {
			m.pane = PaneBoard
		}

	case key.Matches(msg, keys.Up):
		return m.handleUp()

	case key.Matches(msg, keys.Down):
		return m.handleDown()

	case key.Matches(msg, keys.Left):
		if m.pane == PaneBoard {
			if m.col == 0 {
				m.pane = PaneSidebar
			} else {
				m.col--
			}
		}

	case key.Matches(msg, keys.Right):
		if m.pane == PaneSidebar {
			m.pane = PaneBoard
		} else if m.col < len(model.Statuses)-1 {
			m.col++
		}

	case key.Matches(msg, keys.MoveLeft):
		return m.shiftTask(model.Status.Prev)

	case key.Matches(msg, keys.MoveRight):
		return m.shiftTask(model.Status.Next)

	case key.Matches(msg, keys.Done):
		if t := m.boardTask(); t != nil && t.Status != model.StatusDone {
			m.col = statusIndex(model.StatusDone)
			m.focusTask = t.ID
			return m, moveTask(m.backend, *t, model.StatusDone)
		}

	case key.Matches(msg, keys.Add):
		if m.currentProject() == nil {
			m.message = "Create a project first (p)"
			return m, nil
		}
		return m.startInput(ModeAddTask, "Enter task...", "")

	case key.Matches(msg, keys.Edit):
		if t := m.boardTask(); t != nil {
			return m.startInput(ModeEditTask, "Edit task...", t.Title)
		}

	case key.Matches(msg, keys.Project):
		return m.startInput(ModeAddProject, "Enter project name...", "")

	case key.Matches(msg, keys.Invite):
		p := m.currentProject()
		if p == nil {
			return m, nil
		}
		if !p.IsOwner(m.userID) {
			m.message = "Only the owner can invite members"
			return m, nil
		}
		return m.startInput(ModeInvite, "email@example.com", "")

	case key.Matches(msg, keys.Delete):
		if m.boardTask() != nil {
			m.mode = ModeConfirmDelete
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		m.message = "Refreshing..."
		return m, loadProjects(m.backend)
	}

	return m, nil
}

// boardTask returns the selected task when the board has focus
func (m *Model) boardTask() *model.Task {
	if m.pane != PaneBoard {
		return nil
	}
	return m.currentTask()
}

func (m Model) handleUp() (tea.Model, tea.Cmd) {
	if m.pane == PaneSidebar {
		if m.projCursor > 0 {
			m.projCursor--
			return m.selectProject()
		}
		return m, nil
	}
	if m.rows[m.col] > 0 {
		m.rows[m.col]--
	}
	return m, nil
}

func (m Model) handleDown() (tea.Model, tea.Cmd) {
	if m.pane == PaneSidebar {
		if m.projCursor < len(m.projects)-1 {
			m.projCursor++
			return m.selectProject()
		}
		return m, nil
	}
	if m.rows[m.col] < len(m.columns[m.col])-1 {
		m.rows[m.col]++
	}
	return m, nil
}

// selectProject clears the board and fetches the newly selected project
func (m Model) selectProject() (tea.Model, tea.Cmd) {
	m.project = nil
	m.columns = [3][]model.Task{}
	m.rows = [3]int{}
	m.col = 0
	p := m.currentProject()
	if p == nil {
		return m, nil
	}
	logger.Debug("Selected project", logger.F("project_id", p.ID))
	return m, loadBoard(m.backend, p.ID)
}

// shiftTask moves the selected task one column and follows it
func (m Model) shiftTask(step func(model.Status) model.Status) (tea.Model, tea.Cmd) {
	t := m.boardTask()
	if t == nil {
		return m, nil
	}
	next := step(t.Status)
	if next == t.Status {
		return m, nil
	}
	task := *t
	m.col = statusIndex(next)
	m.focusTask = task.ID
	return m, moveTask(m.backend, task, next)
}

func (m Model) startInput(mode Mode, placeholder, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		if value == "" {
			return m, nil
		}

		switch mode {
		case ModeAddTask:
			if p := m.currentProject(); p != nil {
				m.col = 0
				m.rows[0] = len(m.columns[0])
				return m, createTask(m.backend, p.ID, value)
			}
		case ModeAddProject:
			return m, createProject(m.backend, value)
		case ModeEditTask:
			if t := m.currentTask(); t != nil && t.Title != value {
				return m, renameTask(m.backend, t.ID, value)
			}
		case ModeInvite:
			if p := m.currentProject(); p != nil {
				return m, inviteMember(m.backend, p.ID, value)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if msg.String() != "y" && msg.String() != "Y" {
		m.message = "Cancelled"
		return m, nil
	}
	t := m.currentTask()
	if t == nil {
		return m, nil
	}
	return m, deleteTask(m.backend, *t)
}
