package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend keeps projects in memory
type fakeBackend struct {
	projects []*model.Project
	nextID   int
	failNext error
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) fail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeBackend) find(projectID string) *model.Project {
	for _, p := range f.projects {
		if p.ID == projectID {
			return p
		}
	}
	return nil
}

func (f *fakeBackend) findTask(taskID string) *model.Task {
	for _, p := range f.projects {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				return &p.Tasks[i]
			}
		}
	}
	return nil
}

func (f *fakeBackend) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(f.projects))
	for _, p := range f.projects {
		cp := *p
		cp.TaskCount = len(p.Tasks)
		cp.Tasks = nil
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeBackend) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	p := f.find(projectID)
	if p == nil {
		return nil, fmt.Errorf("project not found")
	}
	cp := *p
	cp.Tasks = append([]model.Task(nil), p.Tasks...)
	return &cp, nil
}

func (f *fakeBackend) CreateProject(ctx context.Context, name string, description *string) (*model.Project, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	p := &model.Project{ID: f.id("p"), Name: name, OwnerID: "me"}
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error) {
	p := f.find(in.ProjectID)
	if p == nil {
		return nil, fmt.Errorf("project not found")
	}
	t := model.Task{ID: f.id("t"), ProjectID: p.ID, Title: in.Title, Status: model.StatusTodo}
	p.Tasks = append(p.Tasks, t)
	return &t, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	t := f.findTask(taskID)
	if t == nil {
		return nil, fmt.Errorf("task not found")
	}
	if patch.Title.Set {
		t.Title = patch.Title.Value
	}
	if patch.Status.Set {
		t.Status = patch.Status.Value
	}
	return t, nil
}

func (f *fakeBackend) MoveTask(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	return f.UpdateTask(ctx, taskID, model.TaskPatch{Status: model.Some(status)})
}

func (f *fakeBackend) DeleteTask(ctx context.Context, taskID string) error {
	for _, p := range f.projects {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("task not found")
}

func (f *fakeBackend) InviteMember(ctx context.Context, projectID, email string) (*model.Membership, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	p := f.find(projectID)
	m := model.Membership{ID: f.id("m"), ProjectID: projectID, User: model.UserRef{ID: f.id("u"), Email: email}}
	p.Memberships = append(p.Memberships, m)
	return &m, nil
}

// settle feeds the results of backend commands back into the model
// until no more backend work is pending.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		switch msg.(type) {
		case projectsLoadedMsg, boardLoadedMsg, actionDoneMsg:
		default:
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = settle(t, next.(Model), cmd)
	}
	return m
}

func newBoard(t *testing.T, f *fakeBackend, current string) Model {
	t.Helper()
	m := NewModel(f, "me", current)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return settle(t, next.(Model), m.Init())
}

func seeded() *fakeBackend {
	f := &fakeBackend{}
	f.projects = []*model.Project{
		{ID: "p-a", Name: "Alpha", OwnerID: "me", Tasks: []model.Task{
			{ID: "t-1", ProjectID: "p-a", Title: "first", Status: model.StatusTodo},
			{ID: "t-2", ProjectID: "p-a", Title: "second", Status: model.StatusTodo},
			{ID: "t-3", ProjectID: "p-a", Title: "third", Status: model.StatusDone},
		}},
		{ID: "p-b", Name: "Beta", OwnerID: "someone-else"},
	}
	return f
}

func TestSplitColumns(t *testing.T) {
	cols := splitColumns([]model.Task{
		{ID: "1", Status: model.StatusDone},
		{ID: "2", Status: model.StatusTodo},
		{ID: "3", Status: model.StatusInProgress},
		{ID: "4", Status: model.StatusTodo},
	})

	require.Len(t, cols[0], 2)
	assert.Equal(t, "2", cols[0][0].ID)
	assert.Equal(t, "4", cols[0][1].ID)
	require.Len(t, cols[1], 1)
	require.Len(t, cols[2], 1)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello w...", truncate("hello world!", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	assert.Equal(t, 0, clamp(-1, 0, 5))
	assert.Equal(t, 5, clamp(9, 0, 5))
	assert.Equal(t, 0, clamp(3, 0, -1))

	assert.Equal(t, "█████░░░░░", progressBar(50, 10))
	assert.Equal(t, "██████████", progressBar(150, 10))
	assert.Equal(t, "", progressBar(50, 0))
}

func TestModel_LoadsPreferredProject(t *testing.T) {
	m := newBoard(t, seeded(), "p-b")

	assert.Len(t, m.projects, 2)
	assert.Equal(t, "p-b", m.SelectedProject())
	require.NotNil(t, m.project)
	assert.Equal(t, "Beta", m.project.Name)
}

func TestModel_BoardColumns(t *testing.T) {
	m := newBoard(t, seeded(), "")

	assert.Equal(t, "p-a", m.SelectedProject())
	assert.Len(t, m.columns[0], 2)
	assert.Len(t, m.columns[1], 0)
	assert.Len(t, m.columns[2], 1)
	assert.Contains(t, m.View(), "Alpha")
}

func TestModel_SwitchProject(t *testing.T) {
	m := newBoard(t, seeded(), "")

	m = press(t, m, "j")
	assert.Equal(t, "p-b", m.SelectedProject())
	require.NotNil(t, m.project)
	assert.Equal(t, "p-b", m.project.ID)
	assert.Empty(t, m.columns[0])

	m = press(t, m, "k")
	assert.Equal(t, "p-a", m.SelectedProject())
}

func TestModel_MoveTask(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "tab", "j", "L")
	assert.Equal(t, model.StatusInProgress, f.findTask("t-2").Status)
	assert.Equal(t, 1, m.col)
	require.NotNil(t, m.currentTask())
	assert.Equal(t, "t-2", m.currentTask().ID)

	m = press(t, m, "L")
	assert.Equal(t, model.StatusDone, f.findTask("t-2").Status)
	assert.Len(t, m.columns[2], 2)

	// already at the last column
	m = press(t, m, "L")
	assert.Equal(t, model.StatusDone, f.findTask("t-2").Status)

	press(t, m, "H")
	assert.Equal(t, model.StatusInProgress, f.findTask("t-2").Status)
}

func TestModel_MarkDone(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "tab", "x")
	assert.Equal(t, model.StatusDone, f.findTask("t-1").Status)
	assert.Equal(t, 2, m.col)
}

func TestModel_AddAndEditTask(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "a")
	assert.Equal(t, ModeAddTask, m.mode)
	m = press(t, m, "write docs", "enter")
	assert.Equal(t, ModeNormal, m.mode)
	require.Len(t, m.columns[0], 3)
	assert.Equal(t, "write docs", m.columns[0][2].Title)
	assert.Equal(t, "Added: write docs", m.message)

	m = press(t, m, "tab", "e")
	require.Equal(t, ModeEditTask, m.mode)
	m.input.SetValue("renamed")
	m = press(t, m, "enter")
	assert.Equal(t, "renamed", f.findTask(m.currentTask().ID).Title)
}

func TestModel_InputEscape(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "a", "ignored", "esc")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Len(t, f.projects[0].Tasks, 3)
}

func TestModel_DeleteTask(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "tab", "d", "n")
	assert.Equal(t, "Cancelled", m.message)
	assert.Len(t, f.projects[0].Tasks, 3)

	m = press(t, m, "d", "y")
	assert.Len(t, f.projects[0].Tasks, 2)
	assert.Len(t, m.columns[0], 1)
	assert.Equal(t, "t-2", m.columns[0][0].ID)
}

func TestModel_CreateProjectSelectsIt(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	m = press(t, m, "p", "Gamma", "enter")
	assert.Len(t, m.projects, 3)
	require.NotNil(t, m.currentProject())
	assert.Equal(t, "Gamma", m.currentProject().Name)
}

func TestModel_InviteOnlyForOwner(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "p-b")

	m = press(t, m, "i")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "Only the owner can invite members", m.message)

	m = press(t, m, "k", "i")
	require.Equal(t, ModeInvite, m.mode)
	m = press(t, m, "bob@example.com", "enter")
	assert.Equal(t, "Invited bob@example.com", m.message)
	assert.Len(t, f.projects[0].Memberships, 1)
}

func TestModel_ErrorShownInStatusBar(t *testing.T) {
	f := seeded()
	m := newBoard(t, f, "")

	f.failNext = fmt.Errorf("user not found")
	m = press(t, m, "i", "ghost@example.com", "enter")
	assert.Equal(t, "Error: user not found", m.message)
	assert.Contains(t, m.View(), "user not found")
}

func TestModel_EmptyState(t *testing.T) {
	m := newBoard(t, &fakeBackend{}, "")

	assert.Empty(t, m.projects)
	assert.Equal(t, "", m.SelectedProject())
	m = press(t, m, "a")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Contains(t, m.View(), "No project selected")
}
