package server

import (
	"net/http"

	"github.com/existflow/ironboard/internal/model"
	"github.com/labstack/echo/v4"
)

type taskResponse struct {
	Task *model.Task `json:"task"`
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req model.NewTaskInput
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := s.svc.CreateTask(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskResponse{Task: task})
}

// handleUpdateTask applies a partial update; absent fields are untouched
func (s *Server) handleUpdateTask(c echo.Context) error {
	var patch model.TaskPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	task, err := s.svc.UpdateTask(c.Request().Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskResponse{Task: task})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.svc.DeleteTask(c.Request().Context(), currentUser(c), c.Param("id")); err != nil {
		return err
	}
	return success(c)
}
