package service

import (
	"context"
	"strings"

	"github.com/existflow/ironboard/internal/access"
	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
)

const projectNotFound = "project not found or unauthorized"

// ListProjects returns every project the user owns or belongs to
func (s *Service) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.repo.ListProjectsFor(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return projects, nil
}

// CreateProject creates a project owned by the caller
func (s *Service) CreateProject(ctx context.Context, userID, name string, description *string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	p, err := s.repo.CreateProject(ctx, userID, name, description)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	s.log.Info("Project created", logger.F("project_id", p.ID), logger.F("owner_id", userID))
	return p, nil
}

// GetProject returns the project with members and tasks
func (s *Service) GetProject(ctx context.Context, userID, projectID string) (*model.Project, error) {
	if _, err := s.access.Authorize(ctx, userID, projectID, access.ProjectRead); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, translate(err, projectNotFound)
	}
	return p, nil
}

// DeleteProject removes a project with its tasks and memberships. Owner only.
func (s *Service) DeleteProject(ctx context.Context, userID, projectID string) error {
	if _, err := s.access.Authorize(ctx, userID, projectID, access.ProjectDelete); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, projectID); err != nil {
		return translate(err, projectNotFound)
	}

	s.log.Info("Project deleted", logger.F("project_id", projectID), logger.F("owner_id", userID))
	return nil
}

// ProjectAnalytics counts the project's tasks per status
func (s *Service) ProjectAnalytics(ctx context.Context, userID, projectID string) (model.StatusSummary, error) {
	if _, err := s.access.Authorize(ctx, userID, projectID, access.AnalyticsRead); err != nil {
		return model.StatusSummary{}, err
	}

	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return model.StatusSummary{}, apperr.Internal(err)
	}
	return model.Summarize(tasks), nil
}

// ExportProject returns a snapshot of the project for download
func (s *Service) ExportProject(ctx context.Context, userID, projectID string) (*model.Export, error) {
	if _, err := s.access.Authorize(ctx, userID, projectID, access.ProjectExport); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, translate(err, projectNotFound)
	}

	export := model.NewExport(p, s.repo.Now())
	return &export, nil
}
