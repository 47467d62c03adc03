package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type inviteRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleInviteMember(c echo.Context) error {
	var req inviteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	m, err := s.svc.InviteMember(c.Request().Context(), currentUser(c), c.Param("id"), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"member": m})
}

func (s *Server) handleRemoveMember(c echo.Context) error {
	err := s.svc.RemoveMember(c.Request().Context(), currentUser(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		return err
	}
	return success(c)
}

func (s *Server) handleSearchUsers(c echo.Context) error {
	users, err := s.svc.SearchUsers(c.Request().Context(), currentUser(c), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}
