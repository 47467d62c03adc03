package server

import (
	"net/http"

	"github.com/existflow/ironboard/internal/logger"
	"github.com/labstack/echo/v4"
)

const magicLinkMessage = "if the email exists, a magic link will be sent"

type magicLinkRequest struct {
	Email string `json:"email"`
}

type magicLinkResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// handleMagicLink creates a magic link for passwordless login. The response
// is the same whether or not the email is registered.
func (s *Server) handleMagicLink(c echo.Context) error {
	var req magicLinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := s.svc.RequestMagicLink(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	res := magicLinkResponse{Message: magicLinkMessage}
	if token != "" {
		// No mailer yet: the link is only logged, or returned in development
		s.log.Debug("Magic link ready", logger.F("path", "/auth/magic-link/"+token))
		if s.opts.ExposeMagicTokens {
			res.Token = token
		}
	}
	return c.JSON(http.StatusOK, res)
}

// handleMagicLinkVerify verifies a magic link and creates a session
func (s *Server) handleMagicLinkVerify(c echo.Context) error {
	res, err := s.svc.VerifyMagicLink(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
