package cli

import (
	"bufio"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/ironboard/internal/client"
	"github.com/existflow/ironboard/internal/config"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/service"
	"github.com/existflow/ironboard/internal/store"
	"github.com/existflow/ironboard/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startServer(t *testing.T) string {
	t.Helper()

	st, err := store.OpenMemory(context.Background())
	require.NoError(t, err)

	srv, err := server.NewWithStore(st, server.Options{
		Service: service.Options{BcryptCost: bcrypt.MinCost},
	}, logger.Discard())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts.URL
}

func run(t *testing.T, input string, args ...string) error {
	t.Helper()
	stdin = bufio.NewReader(strings.NewReader(input))
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestCommands_BoardLifecycle(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	t.Setenv("IRONBOARD_HOME", home)
	url := startServer(t)

	isTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdinIsTerminal = isTerminal
		stdin = bufio.NewReader(os.Stdin)
	})

	// commands refuse to run before login
	err := run(t, "", "--server", url, "project", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	require.NoError(t, run(t, "Owner@Example.com\nlong password\nlong password\n",
		"--server", url, "auth", "register", "--name", "Olive"))
	cfg := loadConfig(t)
	require.True(t, cfg.LoggedIn())
	assert.Equal(t, "owner@example.com", cfg.Email)
	assert.Equal(t, url, cfg.ServerURL)

	bob := client.New(url, "")
	_, err = bob.Register(ctx, "bob@example.com", "long password", nil)
	require.NoError(t, err)

	require.NoError(t, run(t, "", "project", "new", "Roadmap"))
	cfg = loadConfig(t)
	require.NotEmpty(t, cfg.CurrentProject, "first project becomes current")

	api := client.FromConfig(cfg)
	require.NoError(t, run(t, "", "task", "add", "Write", "docs"))
	p, err := api.GetProject(ctx, cfg.CurrentProject)
	require.NoError(t, err)
	require.Len(t, p.Tasks, 1)
	task := p.Tasks[0]
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, model.StatusTodo, task.Status)

	require.NoError(t, run(t, "", "task", "move", task.ID[:8], "next"))
	require.NoError(t, run(t, "", "project", "invite", "bob@example.com"))
	require.NoError(t, run(t, "", "task", "assign", task.ID[:8], "bob@example.com"))

	p, err = api.GetProject(ctx, cfg.CurrentProject)
	require.NoError(t, err)
	require.Len(t, p.Memberships, 1)
	assert.Equal(t, model.StatusInProgress, p.Tasks[0].Status)
	require.NotNil(t, p.Tasks[0].Assignee)
	assert.Equal(t, "bob@example.com", p.Tasks[0].Assignee.Email)

	// inviting twice surfaces the server's conflict
	err = run(t, "", "project", "invite", "bob@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already a member")

	require.NoError(t, run(t, "", "task", "done", task.ID[:8]))
	summary, err := api.ProjectAnalytics(ctx, cfg.CurrentProject)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Done)

	out := filepath.Join(home, "export.json")
	require.NoError(t, run(t, "", "project", "export", "-o", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Roadmap"`)
	assert.Contains(t, string(data), "bob@example.com")

	require.NoError(t, run(t, "", "project", "kick", "bob@example.com"))
	p, err = api.GetProject(ctx, cfg.CurrentProject)
	require.NoError(t, err)
	assert.Empty(t, p.Memberships)

	// declined confirmation keeps the task
	require.NoError(t, run(t, "n\n", "task", "rm", task.ID[:8]))
	p, err = api.GetProject(ctx, cfg.CurrentProject)
	require.NoError(t, err)
	assert.Len(t, p.Tasks, 1)

	require.NoError(t, run(t, "y\n", "project", "delete"))
	projects, err := api.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Empty(t, loadConfig(t).CurrentProject)

	require.NoError(t, run(t, "", "auth", "logout"))
	assert.False(t, loadConfig(t).LoggedIn())
}
