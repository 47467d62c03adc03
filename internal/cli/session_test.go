package cli

import (
	"testing"

	"github.com/existflow/ironboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchProject(t *testing.T) {
	projects := []model.Project{
		{ID: "aaaa1111", Name: "Roadmap"},
		{ID: "aaaa2222", Name: "Launch"},
		{ID: "bbbb3333", Name: "launch"},
		{ID: "cccc4444", Name: "cccc"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{ref: "aaaa2222", want: "aaaa2222"},
		{ref: "roadmap", want: "aaaa1111"},
		{ref: "bbbb", want: "bbbb3333"},
		{ref: "cccc", want: "cccc4444"}, // name wins over prefix
		{ref: "LAUNCH", wantErr: "2 projects are named"},
		{ref: "aaaa", wantErr: "ambiguous"},
		{ref: "zzz", wantErr: "project not found"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p, err := matchProject(projects, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.ID)
		})
	}
}

func TestMatchTask(t *testing.T) {
	tasks := []model.Task{
		{ID: "abc123", Title: "one"},
		{ID: "abd456", Title: "two"},
		{ID: "ab", Title: "short"},
	}

	task, err := matchTask(tasks, "abc")
	require.NoError(t, err)
	assert.Equal(t, "one", task.Title)

	// exact id beats the prefix matches
	task, err = matchTask(tasks, "ab")
	require.NoError(t, err)
	assert.Equal(t, "short", task.Title)

	_, err = matchTask(tasks, "a")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = matchTask(tasks, "zz")
	assert.ErrorContains(t, err, "task not found")
}

func TestMatchMember(t *testing.T) {
	p := &model.Project{
		Name:    "Roadmap",
		OwnerID: "u-owner",
		Owner:   model.UserRef{ID: "u-owner", Email: "owner@example.com"},
		Memberships: []model.Membership{
			{UserID: "u-bob", User: model.UserRef{ID: "u-bob", Email: "bob@example.com"}},
		},
	}

	u, err := matchMember(p, " Bob@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u-bob", u.ID)

	u, err = matchMember(p, "u-owner")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", u.Email)

	_, err = matchMember(p, "eve@example.com")
	assert.ErrorContains(t, err, "not a member of Roadmap")
}

func TestTargetStatus(t *testing.T) {
	st, err := targetStatus(model.StatusTodo, "next")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, st)

	st, err = targetStatus(model.StatusTodo, "prev")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, st)

	st, err = targetStatus(model.StatusTodo, "done")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, st)

	_, err = targetStatus(model.StatusTodo, "blocked")
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefgh-1234"))
	assert.Equal(t, "abc", shortID("abc"))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "très l...", truncate("très longue", 9))

	assert.Equal(t, "██████████", bar(100, 10))
	assert.Equal(t, "░░░░░░░░░░", bar(-5, 10))
	assert.Equal(t, "███░░░░░░░", bar(33, 10))
}
