package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

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
		ExposeMagicTokens: true,
		Service:           service.Options{BcryptCost: bcrypt.MinCost},
	}, logger.Discard())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts.URL
}

func TestAPIError(t *testing.T) {
	err := error(&APIError{Status: http.StatusConflict, Message: "user is already a member"})
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "user is already a member (409)", err.Error())
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)

	owner := New(url+"/", "")
	require.NoError(t, owner.Health(ctx))

	_, err := owner.Me(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	res, err := owner.Register(ctx, "owner@example.com", "long password", nil)
	require.NoError(t, err)
	assert.Equal(t, res.Token, owner.Token())

	member := New(url, "")
	_, err = member.Register(ctx, "member@example.com", "long password", nil)
	require.NoError(t, err)

	me, err := owner.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", me.Email)

	desc := "Q3 plans"
	p, err := owner.CreateProject(ctx, "Roadmap", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Q3 plans", *p.Description)

	users, err := owner.SearchUsers(ctx, "member")
	require.NoError(t, err)
	require.Len(t, users, 1)

	m, err := owner.InviteMember(ctx, p.ID, users[0].Email)
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, m.UserID)

	_, err = owner.InviteMember(ctx, p.ID, users[0].Email)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "user is already a member", apiErr.Message)

	task, err := member.CreateTask(ctx, model.NewTaskInput{ProjectID: p.ID, Title: "Design schema"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, task.Status)

	task, err = member.MoveTask(ctx, task.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, task.Status)

	task, err = owner.UpdateTask(ctx, task.ID, model.TaskPatch{AssigneeID: model.Some(m.UserID)})
	require.NoError(t, err)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, model.StatusInProgress, task.Status)

	task, err = owner.UpdateTask(ctx, task.ID, model.TaskPatch{AssigneeID: model.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, task.AssigneeID)

	summary, err := member.ProjectAnalytics(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.InProgress)

	export, err := member.ExportProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, export.Tasks, 1)

	projects, err := member.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].TaskCount)

	err = member.DeleteProject(ctx, p.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	require.NoError(t, member.DeleteTask(ctx, task.ID))
	require.NoError(t, owner.RemoveMember(ctx, p.ID, m.UserID))
	_, err = member.GetProject(ctx, p.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	require.NoError(t, owner.DeleteProject(ctx, p.ID))
	projects, err = owner.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	require.NoError(t, owner.Logout(ctx))
	assert.Empty(t, owner.Token())
}

func TestClient_MagicLink(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)

	c := New(url, "")
	_, err := c.Register(ctx, "magic@example.com", "long password", nil)
	require.NoError(t, err)

	anon := New(url, "")
	msg, token, err := anon.RequestMagicLink(ctx, "magic@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	require.NotEmpty(t, token)

	res, err := anon.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "magic@example.com", res.User.Email)
	assert.Equal(t, res.Token, anon.Token())
}
