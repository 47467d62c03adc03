package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/service"
	"github.com/existflow/ironboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t   *testing.T
	srv *Server
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.OpenMemory(context.Background())
	require.NoError(t, err)

	srv, err := NewWithStore(st, Options{
		ExposeMagicTokens: true,
		Service:           service.Options{BcryptCost: bcrypt.MinCost},
	}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	return &testServer{t: t, srv: srv}
}

// do sends a request and decodes the JSON response into a generic map
func (ts *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (ts *testServer) register(email string) (token, userID string) {
	ts.t.Helper()
	code, body := ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	require.Equal(ts.t, http.StatusOK, code, body)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func obj(t *testing.T, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	v, ok := body[key].(map[string]interface{})
	require.True(t, ok, "missing %q in %v", key, body)
	return v
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	code, body := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	ts := setupServer(t)
	code, body := ts.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, body["error"])
}

func TestAuthFlow(t *testing.T) {
	ts := setupServer(t)

	token, userID := ts.register("ada@example.com")

	code, body := ts.do(http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userID, obj(t, body, "user")["id"])
	assert.NotContains(t, obj(t, body, "user"), "passwordHash")

	code, _ = ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "ADA@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body = ts.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["error"])

	code, _ = ts.do(http.MethodPost, "/auth/login", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body["error"])
}

func TestUnauthenticated(t *testing.T) {
	ts := setupServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/projects"},
		{http.MethodPost, "/projects"},
		{http.MethodGet, "/projects/x"},
		{http.MethodDelete, "/projects/x"},
		{http.MethodPost, "/projects/x/members"},
		{http.MethodGet, "/users/search?q=a"},
		{http.MethodPost, "/tasks"},
		{http.MethodPatch, "/tasks/x"},
		{http.MethodDelete, "/tasks/x"},
	} {
		code, _ := ts.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", tc.method, tc.path)

		code, _ = ts.do(tc.method, tc.path, "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", tc.method, tc.path)
	}
}

func TestMagicLinkFlow(t *testing.T) {
	ts := setupServer(t)
	_, userID := ts.register("m@example.com")

	code, body := ts.do(http.MethodPost, "/auth/magic-link", "", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "token")
	message := body["message"]

	code, body = ts.do(http.MethodPost, "/auth/magic-link", "", map[string]string{"email": "m@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, message, body["message"])
	magic := body["token"].(string)

	code, body = ts.do(http.MethodGet, "/auth/magic-link/"+magic, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userID, obj(t, body, "user")["id"])

	code, _ = ts.do(http.MethodGet, "/auth/magic-link/"+magic, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// TestBoardScenario walks the main user journey end to end
func TestBoardScenario(t *testing.T) {
	ts := setupServer(t)
	tokenA, userA := ts.register("a@example.com")
	tokenB, userB := ts.register("b@example.com")
	tokenC, _ := ts.register("c@example.com")

	// A creates Roadmap
	code, body := ts.do(http.MethodPost, "/projects", tokenA, map[string]string{"name": "Roadmap"})
	require.Equal(t, http.StatusOK, code, body)
	project := obj(t, body, "project")
	projectID := project["id"].(string)
	assert.Equal(t, userA, obj(t, project, "owner")["id"])

	code, body = ts.do(http.MethodGet, "/projects", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	projects := body["projects"].([]interface{})
	require.Len(t, projects, 1)
	first := projects[0].(map[string]interface{})
	assert.Equal(t, "Roadmap", first["name"])
	assert.Equal(t, float64(0), first["taskCount"])
	assert.Empty(t, first["memberships"])

	// C has no access and cannot tell the project exists
	code, body = ts.do(http.MethodGet, "/projects/"+projectID, tokenC, nil)
	assert.Equal(t, http.StatusNotFound, code)
	codeMissing, bodyMissing := ts.do(http.MethodGet, "/projects/missing", tokenC, nil)
	assert.Equal(t, code, codeMissing)
	assert.Equal(t, body["error"], bodyMissing["error"])

	// A invites B
	code, body = ts.do(http.MethodPost, "/projects/"+projectID+"/members", tokenA, map[string]string{"email": "b@example.com"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, userB, obj(t, body, "member")["userId"])

	code, _ = ts.do(http.MethodPost, "/projects/"+projectID+"/members", tokenA, map[string]string{"email": "b@example.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ts.do(http.MethodPost, "/projects/"+projectID+"/members", tokenA, map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(http.MethodPost, "/projects/"+projectID+"/members", tokenA, map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = ts.do(http.MethodGet, "/projects", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["projects"], 1)

	// B is not the owner: invite and delete are hidden
	code, _ = ts.do(http.MethodPost, "/projects/"+projectID+"/members", tokenB, map[string]string{"email": "c@example.com"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = ts.do(http.MethodDelete, "/projects/"+projectID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = ts.do(http.MethodGet, "/projects/"+projectID, tokenB, nil)
	assert.Equal(t, http.StatusOK, code, "project survives a member's delete attempt")

	// A creates a task; a supplied status is ignored
	code, body = ts.do(http.MethodPost, "/tasks", tokenA, map[string]interface{}{
		"projectId": projectID,
		"title":     "Design schema",
		"status":    "DONE",
	})
	require.Equal(t, http.StatusOK, code, body)
	task := obj(t, body, "task")
	taskID := task["id"].(string)
	assert.Equal(t, "TODO", task["status"])
	assert.Nil(t, task["assigneeId"])

	code, _ = ts.do(http.MethodPost, "/tasks", tokenA, map[string]interface{}{"projectId": projectID})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = ts.do(http.MethodPost, "/tasks", tokenC, map[string]interface{}{"projectId": projectID, "title": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	// B moves it across the board
	code, body = ts.do(http.MethodPatch, "/tasks/"+taskID, tokenB, map[string]string{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "IN_PROGRESS", obj(t, body, "task")["status"])
	assert.Equal(t, "Design schema", obj(t, body, "task")["title"])

	code, _ = ts.do(http.MethodPatch, "/tasks/"+taskID, tokenB, map[string]string{"status": "BLOCKED"})
	assert.Equal(t, http.StatusBadRequest, code)

	// Assign, then clear with null
	code, body = ts.do(http.MethodPatch, "/tasks/"+taskID, tokenA, map[string]string{"assigneeId": userB})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "b@example.com", obj(t, obj(t, body, "task"), "assignee")["email"])

	code, body = ts.do(http.MethodPatch, "/tasks/"+taskID, tokenA, map[string]string{"title": "Design schema v2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userB, obj(t, body, "task")["assigneeId"], "omitted assignee is untouched")

	code, body = ts.do(http.MethodPatch, "/tasks/"+taskID, tokenA, `{"assigneeId": null}`)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, obj(t, body, "task")["assigneeId"])

	// The board reflects the new column on the next fetch
	code, body = ts.do(http.MethodGet, "/projects/"+projectID, tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	tasks := obj(t, body, "project")["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	assert.Equal(t, "IN_PROGRESS", tasks[0].(map[string]interface{})["status"])

	code, body = ts.do(http.MethodGet, "/projects/"+projectID+"/analytics", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	analytics := obj(t, body, "analytics")
	assert.Equal(t, float64(1), analytics["inProgress"])
	assert.Equal(t, float64(1), analytics["total"])

	code, body = ts.do(http.MethodGet, "/projects/"+projectID+"/export", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, obj(t, body, "project")["members"], 1)

	// Search excludes the caller
	code, body = ts.do(http.MethodGet, "/users/search?q=EXAMPLE", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 2)

	code, body = ts.do(http.MethodGet, "/users/search", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["users"])

	// Members can delete tasks; strangers cannot see them
	code, _ = ts.do(http.MethodDelete, "/tasks/"+taskID, tokenC, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, body = ts.do(http.MethodDelete, "/tasks/"+taskID, tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	// Owner removes B, then deletes the project
	code, _ = ts.do(http.MethodDelete, "/projects/"+projectID+"/members/"+userB, tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.do(http.MethodGet, "/projects/"+projectID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(http.MethodDelete, "/projects/"+projectID, tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = ts.do(http.MethodGet, "/projects", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["projects"])
}

func TestBearerToken(t *testing.T) {
	tok, err := bearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "abc", "Basic abc", "Bearer "} {
		_, err := bearerToken(h)
		assert.Error(t, err, h)
	}
}
