// Package service implements the board operations on top of the store:
// identity, projects, memberships and tasks. Every project-scoped operation
// goes through the access evaluator first.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironboard/internal/access"
	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// SearchLimit caps the number of users returned by SearchUsers
const SearchLimit = 10

// Repository is the persistence the service needs. *store.Store implements it.
type Repository interface {
	access.RoleSource

	Now() time.Time

	CreateUser(ctx context.Context, email string, name *string, passwordHash string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]model.UserRef, error)

	CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) (*model.Session, error)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	CreateMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error
	ConsumeMagicLink(ctx context.Context, token string) (*model.MagicLink, error)

	CreateProject(ctx context.Context, ownerID, name string, description *string) (*model.Project, error)
	ListProjectsFor(ctx context.Context, userID string) ([]model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	AddMembership(ctx context.Context, projectID string, user model.UserRef) (*model.Membership, error)
	RemoveMembership(ctx context.Context, projectID, userID string) error

	CreateTask(ctx context.Context, projectID, title string, description, assigneeID *string) (*model.Task, error)
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

var _ Repository = (*store.Store)(nil)

// Options tune the identity gateway
type Options struct {
	SessionTTL   time.Duration
	MagicLinkTTL time.Duration
	BcryptCost   int
}

// DefaultOptions returns 30-day sessions and 15-minute magic links
func DefaultOptions() Options {
	return Options{
		SessionTTL:   30 * 24 * time.Hour,
		MagicLinkTTL: 15 * time.Minute,
		BcryptCost:   bcrypt.DefaultCost,
	}
}

// Service is the application core used by the HTTP server
type Service struct {
	repo   Repository
	access *access.Evaluator
	opts   Options
	log    *logger.Logger
}

// New creates a service. A nil logger logs through the global logger.
func New(repo Repository, opts Options, log *logger.Logger) (*Service, error) {
	evaluator, err := access.New(repo)
	if err != nil {
		return nil, err
	}

	defaults := DefaultOptions()
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaults.SessionTTL
	}
	if opts.MagicLinkTTL <= 0 {
		opts.MagicLinkTTL = defaults.MagicLinkTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = defaults.BcryptCost
	}
	if log == nil {
		log = logger.Default()
	}

	return &Service{
		repo:   repo,
		access: evaluator,
		opts:   opts,
		log:    log.WithFields(logger.F("component", "service")),
	}, nil
}

// Access exposes the evaluator
func (s *Service) Access() *access.Evaluator {
	return s.access
}

// translate converts store sentinels into caller-facing errors. Errors that
// already carry a kind pass through unchanged.
func translate(err error, notFound string) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrMissingReference):
		return apperr.NotFound(notFound)
	default:
		return apperr.Internal(err)
	}
}

// newToken returns 32 random bytes, hex encoded
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
