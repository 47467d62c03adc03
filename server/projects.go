package server

import (
	"fmt"
	"net/http"

	"github.com/existflow/ironboard/internal/model"
	"github.com/labstack/echo/v4"
)

type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type projectResponse struct {
	Project *model.Project `json:"project"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.svc.ListProjects(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"projects": projects})
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := s.svc.CreateProject(c.Request().Context(), currentUser(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectResponse{Project: p})
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, err := s.svc.GetProject(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectResponse{Project: p})
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.svc.DeleteProject(c.Request().Context(), currentUser(c), c.Param("id")); err != nil {
		return err
	}
	return success(c)
}

func (s *Server) handleProjectAnalytics(c echo.Context) error {
	summary, err := s.svc.ProjectAnalytics(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"analytics": summary})
}

// handleExportProject returns the project snapshot as a downloadable file
func (s *Server) handleExportProject(c echo.Context) error {
	export, err := s.svc.ExportProject(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "project-"+export.ID+".json"))
	return c.JSON(http.StatusOK, map[string]interface{}{"project": export})
}
