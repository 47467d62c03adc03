package server

import (
	"strings"
	"time"

	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxToken  = "session_token"
)

// requestLogger logs every request once it has been answered
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			// Render now so the logged status is the one sent
			c.Error(err)
		}

		res := c.Response()
		fields := []logger.Field{
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if userID, ok := c.Get(ctxUserID).(string); ok {
			fields = append(fields, logger.F("user_id", userID))
		}

		switch {
		case res.Status >= 500:
			s.log.Error("HTTP Response", fields...)
		case res.Status >= 400:
			s.log.Warn("HTTP Response", fields...)
		default:
			s.log.Info("HTTP Response", fields...)
		}
		return nil
	}
}

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}

		userID, err := s.svc.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxToken, token)
		return next(c)
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Unauthorized("authorization required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperr.Unauthorized("invalid authorization format")
	}
	return strings.TrimSpace(token), nil
}

// currentUser returns the id set by authMiddleware
func currentUser(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}
