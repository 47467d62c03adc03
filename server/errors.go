package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError renders every error as {"error": "..."}
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := s.describe(err, c)

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Error: msg})
	}
	if err != nil {
		s.log.Error("Failed to write error response", logger.Err(err))
	}
}

func (s *Server) describe(err error, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		// Routing errors, bad bodies and panics recovered by echo
		if he.Code >= 500 {
			s.logInternal(c, err)
			return he.Code, "internal server error"
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.logInternal(c, err)
	}
	return kind.HTTPStatus(), apperr.Message(err)
}

func (s *Server) logInternal(c echo.Context, err error) {
	s.log.Error("Internal error",
		logger.Err(err),
		logger.F("method", c.Request().Method),
		logger.F("uri", c.Request().RequestURI),
		logger.F("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
	)
}

// bind decodes the request body, reporting any failure as a validation error
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

type successResponse struct {
	Success bool `json:"success"`
}

func success(c echo.Context) error {
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
