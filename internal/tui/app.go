package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
)

// requestTimeout bounds every call the board makes to the server
const requestTimeout = 10 * time.Second

// projectsLoadedMsg carries the sidebar contents
type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

// boardLoadedMsg carries one project with its tasks
type boardLoadedMsg struct {
	project *model.Project
	err     error
}

// actionDoneMsg reports a finished mutation. The board reloads after it.
type actionDoneMsg struct {
	status string
	err    error
	// selectID, when set, is focused after the reload
	selectID string
}

// Run starts the board and returns the project that was selected on exit
func Run(backend Backend, userID, currentProject string) (string, error) {
	p := tea.NewProgram(NewModel(backend, userID, currentProject), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", logger.Err(err))
		return "", err
	}
	if fm, ok := final.(Model); ok {
		return fm.SelectedProject(), nil
	}
	return "", nil
}

func loadProjects(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		projects, err := b.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func loadBoard(b Backend, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := b.GetProject(ctx, projectID)
		return boardLoadedMsg{project: p, err: err}
	}
}

// action runs fn against the backend and reports status on success
func action(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Warn("Board action failed", logger.F("action", status), logger.Err(err))
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: status}
	}
}

func createTask(b Backend, projectID, title string) tea.Cmd {
	return action(fmt.Sprintf("Added: %s", title), func(ctx context.Context) error {
		_, err := b.CreateTask(ctx, model.NewTaskInput{ProjectID: projectID, Title: title})
		return err
	})
}

func createProject(b Backend, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := b.CreateProject(ctx, name, nil)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Created project: %s", p.Name), selectID: p.ID}
	}
}

func renameTask(b Backend, taskID, title string) tea.Cmd {
	return action(fmt.Sprintf("Updated: %s", title), func(ctx context.Context) error {
		_, err := b.UpdateTask(ctx, taskID, model.TaskPatch{Title: model.Some(title)})
		return err
	})
}

func moveTask(b Backend, t model.Task, status model.Status) tea.Cmd {
	return action(fmt.Sprintf("%s → %s", truncate(t.Title, 30), status.Label()), func(ctx context.Context) error {
		_, err := b.MoveTask(ctx, t.ID, status)
		return err
	})
}

func deleteTask(b Backend, t model.Task) tea.Cmd {
	return action(fmt.Sprintf("Deleted: %s", truncate(t.Title, 30)), func(ctx context.Context) error {
		return b.DeleteTask(ctx, t.ID)
	})
}

func inviteMember(b Backend, projectID, email string) tea.Cmd {
	return action(fmt.Sprintf("Invited %s", email), func(ctx context.Context) error {
		_, err := b.InviteMember(ctx, projectID, email)
		return err
	})
}
