package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/ironboard/internal/model"
)

// ListProjects returns the projects visible to the user
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var res struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &res); err != nil {
		return nil, err
	}
	return res.Projects, nil
}

// CreateProject creates a project owned by the user
func (c *Client) CreateProject(ctx context.Context, name string, description *string) (*model.Project, error) {
	body := map[string]interface{}{"name": name}
	if description != nil {
		body["description"] = *description
	}

	var res struct {
		Project model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects", body, &res); err != nil {
		return nil, err
	}
	return &res.Project, nil
}

// GetProject returns a project with members and tasks
func (c *Client) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var res struct {
		Project model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, &res); err != nil {
		return nil, err
	}
	return &res.Project, nil
}

// DeleteProject deletes a project the user owns
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
}

// ProjectAnalytics returns task counts per status
func (c *Client) ProjectAnalytics(ctx context.Context, projectID string) (model.StatusSummary, error) {
	var res struct {
		Analytics model.StatusSummary `json:"analytics"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/analytics", nil, &res); err != nil {
		return model.StatusSummary{}, err
	}
	return res.Analytics, nil
}

// ExportProject downloads the project snapshot
func (c *Client) ExportProject(ctx context.Context, projectID string) (*model.Export, error) {
	var res struct {
		Project model.Export `json:"project"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/export", nil, &res); err != nil {
		return nil, err
	}
	return &res.Project, nil
}

// InviteMember adds a registered user to a project the caller owns
func (c *Client) InviteMember(ctx context.Context, projectID, email string) (*model.Membership, error) {
	var res struct {
		Member model.Membership `json:"member"`
	}
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/members", body, &res); err != nil {
		return nil, err
	}
	return &res.Member, nil
}

// RemoveMember revokes a user's membership
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) error {
	path := projectPath(projectID) + "/members/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateTask adds a task to a project's TODO column
func (c *Client) CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error) {
	var res struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &res); err != nil {
		return nil, err
	}
	return &res.Task, nil
}

// UpdateTask sends only the fields set in the patch
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	var res struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPatch, taskPath(taskID), patch, &res); err != nil {
		return nil, err
	}
	return &res.Task, nil
}

// MoveTask changes a task's column
func (c *Client) MoveTask(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	return c.UpdateTask(ctx, taskID, model.TaskPatch{Status: model.Some(status)})
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, taskPath(taskID), nil, nil)
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
