// Package access decides what a user may do on a project.
//
// The user's role comes from the store (owner, member or none) and a casbin
// RBAC policy decides which actions that role allows. A denied action and a
// missing project are indistinguishable to the caller.
package access

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/store"
)

//go:embed model.conf
var casbinModelContent string

// Action is something a user does to a project or its contents
type Action string

const (
	ProjectRead   Action = "project:read"
	ProjectDelete Action = "project:delete"
	ProjectExport Action = "project:export"
	AnalyticsRead Action = "analytics:read"
	TaskCreate    Action = "task:create"
	TaskUpdate    Action = "task:update"
	TaskDelete    Action = "task:delete"
	MemberInvite  Action = "member:invite"
	MemberRemove  Action = "member:remove"
)

const projectObject = "project"

var memberActions = []Action{
	ProjectRead, ProjectExport, AnalyticsRead,
	TaskCreate, TaskUpdate, TaskDelete,
}

var ownerActions = []Action{
	ProjectDelete, MemberInvite, MemberRemove,
}

// errDenied is returned for every project-level denial
var errDenied = apperr.NotFound("project not found or unauthorized")

// RoleSource resolves relations between users, projects and tasks
type RoleSource interface {
	ProjectRole(ctx context.Context, userID, projectID string) (model.Role, error)
	TaskProjectID(ctx context.Context, taskID string) (string, error)
}

// Evaluator answers access questions for the service layer
type Evaluator struct {
	roles    RoleSource
	enforcer casbin.IEnforcer
}

// New creates an evaluator with the built-in role policy
func New(roles RoleSource) (*Evaluator, error) {
	m, err := casbinmodel.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	for _, act := range memberActions {
		if _, err := enforcer.AddPolicy(string(model.RoleMember), projectObject, string(act)); err != nil {
			return nil, fmt.Errorf("add member policy: %w", err)
		}
	}
	for _, act := range ownerActions {
		if _, err := enforcer.AddPolicy(string(model.RoleOwner), projectObject, string(act)); err != nil {
			return nil, fmt.Errorf("add owner policy: %w", err)
		}
	}
	// Owners can do everything members can
	if _, err := enforcer.AddGroupingPolicy(string(model.RoleOwner), string(model.RoleMember)); err != nil {
		return nil, fmt.Errorf("add role inheritance: %w", err)
	}

	return &Evaluator{roles: roles, enforcer: enforcer}, nil
}

// HasAccess returns the user's role on the project, RoleNone if the project
// does not exist or the user has no relation to it.
func (e *Evaluator) HasAccess(ctx context.Context, userID, projectID string) (model.Role, error) {
	if userID == "" || projectID == "" {
		return model.RoleNone, nil
	}
	role, err := e.roles.ProjectRole(ctx, userID, projectID)
	if err != nil {
		return model.RoleNone, apperr.Internal(err)
	}
	return role, nil
}

// Allowed reports whether role may perform act
func (e *Evaluator) Allowed(role model.Role, act Action) (bool, error) {
	if !role.HasAccess() {
		return false, nil
	}
	ok, err := e.enforcer.Enforce(string(role), projectObject, string(act))
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("enforce %s for %s: %w", act, role, err))
	}
	return ok, nil
}

// Authorize checks that the user may perform act on the project and returns
// their role. Any denial is reported as NotFound.
func (e *Evaluator) Authorize(ctx context.Context, userID, projectID string, act Action) (model.Role, error) {
	role, err := e.HasAccess(ctx, userID, projectID)
	if err != nil {
		return model.RoleNone, err
	}

	ok, err := e.Allowed(role, act)
	if err != nil {
		return model.RoleNone, err
	}
	if !ok {
		return role, errDenied
	}
	return role, nil
}

// AuthorizeTask resolves the task's project, then applies Authorize
func (e *Evaluator) AuthorizeTask(ctx context.Context, userID, taskID string, act Action) (string, model.Role, error) {
	projectID, err := e.roles.TaskProjectID(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return "", model.RoleNone, apperr.NotFound("task not found or unauthorized")
	}
	if err != nil {
		return "", model.RoleNone, apperr.Internal(err)
	}

	role, err := e.Authorize(ctx, userID, projectID, act)
	if apperr.Is(err, apperr.KindNotFound) {
		return "", role, apperr.NotFound("task not found or unauthorized")
	}
	if err != nil {
		return "", role, err
	}
	return projectID, role, nil
}
