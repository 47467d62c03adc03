package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/ironboard/internal/client"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneBoard
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeAddProject
	ModeEditTask
	ModeInvite
	ModeConfirmDelete
	ModeHelp
)

// Backend is the subset of the API client the board needs
type Backend interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	CreateProject(ctx context.Context, name string, description *string) (*model.Project, error)
	CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error)
	MoveTask(ctx context.Context, taskID string, status model.Status) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	InviteMember(ctx context.Context, projectID, email string) (*model.Membership, error)
}

var _ Backend = (*client.Client)(nil)

// Model is the main TUI model
type Model struct {
	backend Backend
	userID  string

	projects []model.Project
	project  *model.Project // loaded board of the selected project
	columns  [3][]model.Task

	// preferred is selected once the next project list arrives
	preferred string
	// focusTask is selected once the next board arrives
	focusTask string

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	projCursor int
	col        int
	rows       [3]int

	// Input
	input textinput.Model

	loading bool
	message string
}

// NewModel creates a new TUI model. currentProject, if set, is selected
// once projects are loaded.
func NewModel(backend Backend, userID, currentProject string) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task..."
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		backend:   backend,
		userID:    userID,
		preferred: currentProject,
		pane:      PaneSidebar,
		mode:      ModeNormal,
		input:     ti,
		loading:   true,
	}
}

// SelectedProject returns the id of the project shown on the board
func (m Model) SelectedProject() string {
	if p := m.currentProject(); p != nil {
		return p.ID
	}
	return ""
}

func (m *Model) currentProject() *model.Project {
	if m.projCursor >= 0 && m.projCursor < len(m.projects) {
		return &m.projects[m.projCursor]
	}
	return nil
}

func (m *Model) currentTask() *model.Task {
	tasks := m.columns[m.col]
	row := m.rows[m.col]
	if row >= 0 && row < len(tasks) {
		return &tasks[row]
	}
	return nil
}

// setProjects replaces the sidebar and keeps the cursor on the same
// project when it still exists.
func (m *Model) setProjects(projects []model.Project) {
	selected := m.preferred
	if selected == "" {
		selected = m.SelectedProject()
	}
	m.preferred = ""

	m.projects = projects
	m.projCursor = 0
	for i, p := range projects {
		if p.ID == selected {
			m.projCursor = i
			break
		}
	}
	if m.project != nil && m.project.ID != m.SelectedProject() {
		m.project = nil
		m.columns = [3][]model.Task{}
		m.rows = [3]int{}
		m.col = 0
	}
}

// setBoard loads a project's tasks into the three columns
func (m *Model) setBoard(p *model.Project) {
	if cur := m.currentProject(); cur == nil || cur.ID != p.ID {
		return
	}
	m.project = p
	m.columns = splitColumns(p.Tasks)
	for i := range m.rows {
		m.rows[i] = clamp(m.rows[i], 0, len(m.columns[i])-1)
	}
	if m.focusTask != "" {
		for i, col := range m.columns {
			for j, t := range col {
				if t.ID == m.focusTask {
					m.col, m.rows[i] = i, j
				}
			}
		}
		m.focusTask = ""
	}
}

// splitColumns buckets tasks by status in board order
func splitColumns(tasks []model.Task) [3][]model.Task {
	var cols [3][]model.Task
	for _, t := range tasks {
		for i, st := range model.Statuses {
			if t.Status == st {
				cols[i] = append(cols[i], t)
				break
			}
		}
	}
	return cols
}
