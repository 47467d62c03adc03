// Package server exposes the board over HTTP with echo.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/existflow/ironboard/internal/config"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/service"
	"github.com/existflow/ironboard/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options controls server behaviour not owned by the service
type Options struct {
	// ExposeMagicTokens returns magic link tokens in the response body
	// instead of only logging that one was created. Development only.
	ExposeMagicTokens bool
	Service           service.Options
}

// Server is the board API server
type Server struct {
	store *store.Store
	svc   *service.Service
	echo  *echo.Echo
	opts  Options
	log   *logger.Logger
}

// New opens the configured database, runs migrations and builds the server
func New(ctx context.Context, cfg *config.ServerConfig, log *logger.Logger) (*Server, error) {
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	srv, err := NewWithStore(st, Options{
		ExposeMagicTokens: cfg.Auth.ExposeMagicTokens,
		Service: service.Options{
			SessionTTL:   cfg.Auth.SessionTTL,
			MagicLinkTTL: cfg.Auth.MagicLinkTTL,
			BcryptCost:   cfg.Auth.BcryptCost,
		},
	}, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore builds a server on an open, migrated store
func NewWithStore(st *store.Store, opts Options, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Default()
	}

	svc, err := service.New(st, opts.Service, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store: st,
		svc:   svc,
		opts:  opts,
		log:   log.WithFields(logger.F("component", "http")),
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	e.GET("/health", s.handleHealth)

	// Auth endpoints (public)
	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/magic-link", s.handleMagicLink)
	e.GET("/auth/magic-link/:token", s.handleMagicLinkVerify)

	// Protected endpoints
	auth := s.authMiddleware
	e.POST("/auth/logout", s.handleLogout, auth)
	e.GET("/me", s.handleMe, auth)

	e.GET("/projects", s.handleListProjects, auth)
	e.POST("/projects", s.handleCreateProject, auth)
	e.GET("/projects/:id", s.handleGetProject, auth)
	e.DELETE("/projects/:id", s.handleDeleteProject, auth)
	e.GET("/projects/:id/analytics", s.handleProjectAnalytics, auth)
	e.GET("/projects/:id/export", s.handleExportProject, auth)
	e.POST("/projects/:id/members", s.handleInviteMember, auth)
	e.DELETE("/projects/:id/members/:userId", s.handleRemoveMember, auth)

	e.GET("/users/search", s.handleSearchUsers, auth)

	e.POST("/tasks", s.handleCreateTask, auth)
	e.PATCH("/tasks/:id", s.handleUpdateTask, auth)
	e.DELETE("/tasks/:id", s.handleDeleteTask, auth)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Service returns the application service behind the handlers
func (s *Server) Service() *service.Service {
	return s.svc
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.log.Error("Health check failed", logger.Err(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
