package service

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/ironboard/internal/access"
	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/store"
)

const taskNotFound = "task not found or unauthorized"

// CreateTask adds a task to the TODO column. A status in the input is ignored.
func (s *Service) CreateTask(ctx context.Context, userID string, in model.NewTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.ProjectID == "" {
		return nil, apperr.Validation("projectId is required")
	}

	if _, err := s.access.Authorize(ctx, userID, in.ProjectID, access.TaskCreate); err != nil {
		return nil, err
	}

	assigneeID := in.AssigneeID
	if assigneeID != nil && *assigneeID == "" {
		assigneeID = nil
	}
	if assigneeID != nil {
		if err := s.checkAssignee(ctx, in.ProjectID, *assigneeID); err != nil {
			return nil, err
		}
	}

	task, err := s.repo.CreateTask(ctx, in.ProjectID, title, in.Description, assigneeID)
	if err != nil {
		return nil, translate(err, projectNotFound)
	}

	s.log.Debug("Task created", logger.F("task_id", task.ID), logger.F("project_id", task.ProjectID))
	return task, nil
}

// UpdateTask applies a partial update. Any status may move to any other.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	projectID, _, err := s.access.AuthorizeTask(ctx, userID, taskID, access.TaskUpdate)
	if err != nil {
		return nil, err
	}

	if patch.Title.Set {
		if patch.Title.Null || strings.TrimSpace(patch.Title.Value) == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}

	if patch.Status.Set {
		if patch.Status.Null {
			return nil, apperr.Validation("status cannot be null")
		}
		status, err := model.ParseStatus(string(patch.Status.Value))
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		patch.Status.Value = status
	}

	if patch.AssigneeID.Set && !patch.AssigneeID.Null {
		if patch.AssigneeID.Value == "" {
			patch.AssigneeID = model.Null[string]()
		} else if err := s.checkAssignee(ctx, projectID, patch.AssigneeID.Value); err != nil {
			return nil, err
		}
	}

	if patch.IsEmpty() {
		task, err := s.repo.GetTask(ctx, taskID)
		if err != nil {
			return nil, translate(err, taskNotFound)
		}
		return task, nil
	}

	task, err := s.repo.UpdateTask(ctx, taskID, patch)
	switch {
	case errors.Is(err, store.ErrMissingReference):
		return nil, apperr.Validation("assignee not found")
	case err != nil:
		return nil, translate(err, taskNotFound)
	}

	s.log.Debug("Task updated", logger.F("task_id", task.ID), logger.F("status", task.Status))
	return task, nil
}

// DeleteTask removes a task
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, _, err := s.access.AuthorizeTask(ctx, userID, taskID, access.TaskDelete); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return translate(err, taskNotFound)
	}

	s.log.Debug("Task deleted", logger.F("task_id", taskID))
	return nil
}

// checkAssignee requires the assignee to be the owner or a member right now
func (s *Service) checkAssignee(ctx context.Context, projectID, assigneeID string) error {
	role, err := s.access.HasAccess(ctx, assigneeID, projectID)
	if err != nil {
		return err
	}
	if !role.HasAccess() {
		return apperr.Validation("assignee must be the project owner or a member")
	}
	return nil
}
